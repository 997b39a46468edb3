package aggregate

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docbundle/internal/docerr"
	"github.com/dgallion1/docbundle/internal/doctree"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonWord       = regexp.MustCompile(`[^\w]`)
)

// CategoryAnchor lowercases label and replaces whitespace runs with one hyphen.
func CategoryAnchor(label string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(label), "-")
}

// DocumentAnchor replaces every character outside [A-Za-z0-9_] in path with
// a hyphen. It is not injective: "a/b.md" and "a-b.md" collide.
func DocumentAnchor(path string) string {
	return nonWord.ReplaceAllString(path, "-")
}

// CheckAnchors fails on the first pair of distinct documents or categories
// whose anchors coincide, and on any id inside a rendered fragment that
// shadows a category or document anchor. Fragments may repeat each other's
// heading ids.
func CheckAnchors(categories []doctree.Category) error {
	catSeen := make(map[string]string, len(categories))
	docSeen := make(map[string]string)
	for _, c := range categories {
		if prev, ok := catSeen[c.AnchorID]; ok {
			return fmt.Errorf("%w: categories %q and %q both map to #%s", docerr.ErrAnchorCollision, prev, c.Label, c.AnchorID)
		}
		catSeen[c.AnchorID] = c.Label
		for _, d := range c.Docs {
			if prev, ok := docSeen[d.AnchorID]; ok {
				return fmt.Errorf("%w: %q and %q both map to #%s", docerr.ErrAnchorCollision, prev, d.Path, d.AnchorID)
			}
			docSeen[d.AnchorID] = d.Path
		}
	}

	for _, c := range categories {
		for _, d := range c.Docs {
			for _, id := range fragmentIDs(d.RenderedHTML) {
				if label, ok := catSeen[id]; ok {
					return fmt.Errorf("%w: #%s in %q shadows category %q", docerr.ErrAnchorCollision, id, d.Path, label)
				}
				if path, ok := docSeen[id]; ok {
					return fmt.Errorf("%w: #%s in %q shadows document %q", docerr.ErrAnchorCollision, id, d.Path, path)
				}
			}
		}
	}
	return nil
}

// fragmentIDs lists the id attributes of every element in fragment.
func fragmentIDs(fragment string) []string {
	if !strings.Contains(fragment, "id") {
		return nil
	}
	var ids []string
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ids
		case html.StartTagToken, html.SelfClosingTagToken:
			for {
				key, val, more := z.TagAttr()
				if string(key) == "id" && len(val) > 0 {
					ids = append(ids, string(val))
				}
				if !more {
					break
				}
			}
		}
	}
}
