// Package render converts one markdown document into an HTML fragment whose
// headings carry stable, unique ids and link to themselves.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Renderer turns markdown text into an HTML fragment. Implementations must
// be deterministic and safe for concurrent use.
type Renderer interface {
	Render(markdown string) (string, error)
}

// Markdown is the goldmark-backed Renderer.
type Markdown struct {
	md goldmark.Markdown
}

func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				meta.Meta,
			),
			goldmark.WithParserOptions(
				parser.WithASTTransformers(
					util.Prioritized(&headingAnchors{}, 100),
				),
			),
			goldmark.WithRendererOptions(
				// Raw HTML in sources is trusted and passed through.
				goldmarkhtml.WithUnsafe(),
			),
		),
	}
}

func (m *Markdown) Render(markdown string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer panic: %v", r)
		}
	}()

	var buf bytes.Buffer
	if err := m.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
