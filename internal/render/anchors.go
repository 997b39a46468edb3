package render

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// headingAnchors gives every heading an id slugged from its text and wraps
// the heading content in a link to that id. Headings that already contain
// a link get an empty class="anchor" self-link prepended instead.
type headingAnchors struct{}

func (t *headingAnchors) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	src := reader.Source()

	// Collect first; the tree is rewritten below.
	var headings []*ast.Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			headings = append(headings, h)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	slugs := NewSlugger()
	for _, h := range headings {
		var buf bytes.Buffer
		plainText(h, src, &buf)
		id := slugs.Slug(buf.String())
		h.SetAttributeString("id", []byte(id))

		link := ast.NewLink()
		link.Destination = []byte("#" + id)

		// Links cannot nest, so a heading that already holds one gets an
		// empty self-link in front instead of around its content.
		if containsLink(h, src) {
			link.SetAttributeString("class", []byte("anchor"))
			h.InsertBefore(h, h.FirstChild(), link)
			continue
		}
		for c := h.FirstChild(); c != nil; {
			next := c.NextSibling()
			link.AppendChild(link, c)
			c = next
		}
		h.AppendChild(h, link)
	}
}

var rawAnchor = regexp.MustCompile(`(?i)<a[\s>]`)

func containsLink(n ast.Node, src []byte) bool {
	found := false
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Link, *ast.AutoLink:
			found = true
		case *ast.RawHTML:
			for i := 0; i < v.Segments.Len(); i++ {
				seg := v.Segments.At(i)
				if rawAnchor.Match(seg.Value(src)) {
					found = true
				}
			}
		}
		if found {
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}

func plainText(n ast.Node, src []byte, buf *bytes.Buffer) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			buf.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(v.Value)
		case *ast.AutoLink:
			buf.Write(v.Label(src))
		case *ast.RawHTML:
			// markup contributes nothing to the slug
		default:
			plainText(c, src, buf)
		}
	}
}

// Slugger derives heading ids and keeps them unique within one document.
// Repeats get "-1", "-2", ... appended.
type Slugger struct {
	seen map[string]int
}

func NewSlugger() *Slugger {
	return &Slugger{seen: make(map[string]int)}
}

func (s *Slugger) Slug(heading string) string {
	base := Slugify(heading)
	if base == "" {
		base = "section"
	}
	id := base
	for {
		if _, taken := s.seen[id]; !taken {
			break
		}
		s.seen[base]++
		id = base + "-" + strconv.Itoa(s.seen[base])
	}
	s.seen[id] = 0
	return id
}

// Slugify lowercases text, turns each whitespace character into a hyphen
// and drops everything that is not a letter, digit, mark, underscore or
// hyphen.
func Slugify(text string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r):
			sb.WriteByte('-')
		case r == '-' || r == '_':
			sb.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r):
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
