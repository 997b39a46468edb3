// Package aggregate groups processed documents by category and assembles
// the single HTML page: head and inline style, navigation, one section per
// category, then the tail.
package aggregate

import (
	"html"
	"strings"

	"github.com/dgallion1/docbundle/internal/doctree"
)

// DefaultTitle is used when Options.Title is empty.
const DefaultTitle = "Project Documentation"

// Options controls page assembly.
type Options struct {
	Title        string
	CheckAnchors bool // fail on anchor collisions instead of emitting duplicate ids
}

// Group buckets docs by category in first-seen order, keeping encounter
// order within each bucket. Document anchors are filled in.
func Group(docs []doctree.ProcessedDocument) []doctree.Category {
	var categories []doctree.Category
	index := make(map[string]int)
	for _, d := range docs {
		d.AnchorID = DocumentAnchor(d.Path)
		i, ok := index[d.Category]
		if !ok {
			i = len(categories)
			index[d.Category] = i
			categories = append(categories, doctree.Category{
				Label:    d.Category,
				AnchorID: CategoryAnchor(d.Category),
			})
		}
		categories[i].Docs = append(categories[i].Docs, d)
	}
	return categories
}

// Aggregate groups docs and returns the complete HTML document.
func Aggregate(docs []doctree.ProcessedDocument, opts Options) (string, error) {
	categories := Group(docs)
	if opts.CheckAnchors {
		if err := CheckAnchors(categories); err != nil {
			return "", err
		}
	}
	return Assemble(categories, opts.Title), nil
}

// Assemble concatenates the page from already grouped categories.
func Assemble(categories []doctree.Category, title string) string {
	if title == "" {
		title = DefaultTitle
	}
	var sb strings.Builder
	writeHead(&sb, title)
	writeNav(&sb, categories, title)
	writeContent(&sb, categories)
	sb.WriteString(pageTail)
	return sb.String()
}

func writeHead(sb *strings.Builder, title string) {
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"UTF-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	sb.WriteString(pageStyle)
	sb.WriteString("</head>\n<body>\n")
}

func writeNav(sb *strings.Builder, categories []doctree.Category, title string) {
	sb.WriteString("<nav>\n")
	sb.WriteString("<h1>" + html.EscapeString(title) + "</h1>\n")
	sb.WriteString("<h2>Contents</h2>\n")
	for _, c := range categories {
		sb.WriteString(`<h3><a href="#` + html.EscapeString(c.AnchorID) + `">` + html.EscapeString(c.Label) + "</a></h3>\n")
		sb.WriteString("<ul>\n")
		for _, d := range c.Docs {
			sb.WriteString(`<li><a href="#` + d.AnchorID + `">` + html.EscapeString(d.Path) + "</a></li>\n")
		}
		sb.WriteString("</ul>\n")
	}
	sb.WriteString("</nav>\n")
}

func writeContent(sb *strings.Builder, categories []doctree.Category) {
	for _, c := range categories {
		sb.WriteString(`<div class="category" id="` + html.EscapeString(c.AnchorID) + "\">\n")
		sb.WriteString("<h2>" + html.EscapeString(c.Label) + "</h2>\n")
		for _, d := range c.Docs {
			sb.WriteString(`<div class="file" id="` + d.AnchorID + "\">\n")
			sb.WriteString("<h3>" + html.EscapeString(d.Path) + "</h3>\n")
			sb.WriteString(d.RenderedHTML)
			sb.WriteString("\n</div>\n")
		}
		sb.WriteString("</div>\n")
	}
}

const pageStyle = `<style>
body {
  font-family: system-ui, -apple-system, sans-serif;
  line-height: 1.5;
  max-width: 80ch;
  margin: 0 auto;
  padding: 2rem;
}
nav {
  position: sticky;
  top: 0;
  background: white;
  padding: 1rem 0;
  border-bottom: 1px solid #eee;
}
.category {
  margin-top: 2rem;
}
.file {
  margin: 2rem 0;
  padding: 1rem;
  border: 1px solid #eee;
  border-radius: 4px;
}
h1, h2, h3 {
  scroll-margin-top: 4rem;
}
a {
  color: #0066cc;
  text-decoration: none;
}
a:hover {
  text-decoration: underline;
}
code {
  background: #f5f5f5;
  padding: 0.2em 0.4em;
  border-radius: 3px;
  font-size: 0.9em;
}
pre code {
  display: block;
  padding: 1rem;
  overflow-x: auto;
}
table {
  border-collapse: collapse;
}
th, td {
  border: 1px solid #eee;
  padding: 0.3em 0.6em;
}
</style>
`

const pageTail = "</body>\n</html>\n"
