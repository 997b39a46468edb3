package doctree

import "strings"

// DocumentFile is one discovered documentation source.
type DocumentFile struct {
	Path       string // Root-relative, slash-separated; unique within a run
	RawContent string // Markup as read from disk (or converted to markdown for extra formats)
	Category   string // Assigned by the classifier
}

// ProcessedDocument is a DocumentFile after classification and rendering.
type ProcessedDocument struct {
	DocumentFile
	RenderedHTML string
	AnchorID     string
}

// Category is a label with its documents in encounter order.
type Category struct {
	Label    string
	AnchorID string
	Docs     []ProcessedDocument
}

// DocTree is the root of a parsed non-markdown source.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Text     string     // Text content of this node (may be empty for container nodes)
	Page     int        // Source page (0 if N/A)
	Children []*DocNode // Subsections
}

// Markdown flattens the tree into markdown: titles become ATX headings by
// depth (capped at h6) and text becomes paragraphs.
func (t *DocTree) Markdown() string {
	var sb strings.Builder
	var walk func(nodes []*DocNode, depth int)
	walk = func(nodes []*DocNode, depth int) {
		for _, n := range nodes {
			if n.Title != "" {
				level := depth
				if level > 6 {
					level = 6
				}
				writeBlock(&sb, strings.Repeat("#", level)+" "+escapeInline(n.Title))
			}
			if text := strings.TrimSpace(n.Text); text != "" {
				writeBlock(&sb, text)
			}
			walk(n.Children, depth+1)
		}
	}
	walk(t.Children, 1)
	return sb.String()
}

func writeBlock(sb *strings.Builder, block string) {
	if sb.Len() > 0 {
		sb.WriteString("\n\n")
	}
	sb.WriteString(block)
}

// escapeInline keeps a heading title from being read as markup.
func escapeInline(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", `\<`, "#", `\#`)
	return r.Replace(s)
}
