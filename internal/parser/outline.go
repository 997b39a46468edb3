package parser

import (
	"strings"

	"github.com/dgallion1/docbundle/internal/doctree"
)

// outline nests headings by level and attaches body text to the most
// recent heading.
type outline struct {
	root  *doctree.DocNode
	stack []outlineEntry
	text  strings.Builder
}

type outlineEntry struct {
	node  *doctree.DocNode
	level int
}

func newOutline() *outline {
	root := &doctree.DocNode{}
	return &outline{
		root:  root,
		stack: []outlineEntry{{node: root, level: 0}},
	}
}

func (o *outline) heading(level int, title string) {
	o.flush()
	node := &doctree.DocNode{Title: title}
	for len(o.stack) > 1 && o.stack[len(o.stack)-1].level >= level {
		o.stack = o.stack[:len(o.stack)-1]
	}
	parent := o.stack[len(o.stack)-1].node
	parent.Children = append(parent.Children, node)
	o.stack = append(o.stack, outlineEntry{node: node, level: level})
}

func (o *outline) paragraph(t string) {
	if t == "" {
		return
	}
	if o.text.Len() > 0 {
		o.text.WriteString("\n\n")
	}
	o.text.WriteString(t)
}

func (o *outline) flush() {
	t := strings.TrimSpace(o.text.String())
	o.text.Reset()
	if t == "" {
		return
	}
	top := o.stack[len(o.stack)-1].node
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
}

// tree finishes the outline. Text seen before the first heading is kept
// as a leading untitled node.
func (o *outline) tree(title string) *doctree.DocTree {
	o.flush()
	t := &doctree.DocTree{Title: title}
	if o.root.Text != "" {
		t.Children = append(t.Children, &doctree.DocNode{Text: o.root.Text})
	}
	t.Children = append(t.Children, o.root.Children...)
	return t
}

func headingLevel(tag string) int {
	if len(tag) == 2 && (tag[0] == 'h' || tag[0] == 'H') && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func trimExt(filename string, exts ...string) string {
	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(filename), ext) {
			return filename[:len(filename)-len(ext)]
		}
	}
	return filename
}
