package aggregate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/dgallion1/docbundle/internal/docerr"
	"github.com/dgallion1/docbundle/internal/doctree"
)

func doc(path, category, rendered string) doctree.ProcessedDocument {
	return doctree.ProcessedDocument{
		DocumentFile: doctree.DocumentFile{Path: path, Category: category},
		RenderedHTML: rendered,
	}
}

// page is the structure of an assembled document as seen by a browser.
type page struct {
	navHrefs    []string
	categoryIDs []string
	fileIDs     map[string][]string // category id -> file ids in order
}

func parsePage(t *testing.T, out string) page {
	t.Helper()
	root, err := html.Parse(strings.NewReader(out))
	require.NoError(t, err)

	p := page{fileIDs: map[string][]string{}}
	var walk func(n *html.Node, inNav bool, category string)
	walk = func(n *html.Node, inNav bool, category string) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "nav":
				inNav = true
			case n.Data == "a" && inNav:
				p.navHrefs = append(p.navHrefs, attr(n, "href"))
			case n.Data == "div" && attr(n, "class") == "category":
				category = attr(n, "id")
				p.categoryIDs = append(p.categoryIDs, category)
			case n.Data == "div" && attr(n, "class") == "file":
				p.fileIDs[category] = append(p.fileIDs[category], attr(n, "id"))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inNav, category)
		}
	}
	walk(root, false, "")
	return p
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func TestAggregate_Scenario(t *testing.T) {
	docs := []doctree.ProcessedDocument{
		doc("README.md", "Getting Started", `<h1 id="hi"><a href="#hi">Hi</a></h1>`),
		doc("docs/a.md", "Documentation", `<h1 id="a"><a href="#a">A</a></h1>`),
		doc("blog/post.md", "Blog Posts", `<h1 id="p"><a href="#p">P</a></h1>`),
	}

	out, err := Aggregate(docs, Options{CheckAnchors: true})
	require.NoError(t, err)

	p := parsePage(t, out)
	assert.Equal(t, []string{
		"#getting-started", "#README-md",
		"#documentation", "#docs-a-md",
		"#blog-posts", "#blog-post-md",
	}, p.navHrefs)
	assert.Equal(t, []string{"getting-started", "documentation", "blog-posts"}, p.categoryIDs)
	assert.Equal(t, []string{"README-md"}, p.fileIDs["getting-started"])
	assert.Equal(t, []string{"docs-a-md"}, p.fileIDs["documentation"])
	assert.Equal(t, []string{"blog-post-md"}, p.fileIDs["blog-posts"])

	for _, d := range docs {
		assert.Equal(t, 1, strings.Count(out, d.RenderedHTML), "fragment for %s", d.Path)
	}
	assert.Contains(t, out, "<title>Project Documentation</title>")
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.True(t, strings.HasSuffix(out, "</html>\n"))
}

func TestGroup_FirstSeenOrder(t *testing.T) {
	docs := []doctree.ProcessedDocument{
		doc("docs/b.md", "Documentation", "b"),
		doc("README.md", "Getting Started", "r"),
		doc("docs/a.md", "Documentation", "a"),
		doc("src/x.md", "Other", "x"),
		doc("pkg/README.md", "Getting Started", "r2"),
	}

	cats := Group(docs)
	require.Len(t, cats, 3)
	assert.Equal(t, "Documentation", cats[0].Label)
	assert.Equal(t, "Getting Started", cats[1].Label)
	assert.Equal(t, "Other", cats[2].Label)

	var got []string
	for _, d := range cats[0].Docs {
		got = append(got, d.Path)
	}
	assert.Equal(t, []string{"docs/b.md", "docs/a.md"}, got)
	assert.Equal(t, "pkg-README-md", cats[1].Docs[1].AnchorID)
}

func TestAggregate_CategoriesAreContiguous(t *testing.T) {
	docs := []doctree.ProcessedDocument{
		doc("docs/1.md", "Documentation", "<p>one</p>"),
		doc("blog/1.md", "Blog Posts", "<p>two</p>"),
		doc("docs/2.md", "Documentation", "<p>three</p>"),
	}
	out, err := Aggregate(docs, Options{})
	require.NoError(t, err)

	p := parsePage(t, out)
	assert.Equal(t, []string{"documentation", "blog-posts"}, p.categoryIDs)
	assert.Equal(t, []string{"docs-1-md", "docs-2-md"}, p.fileIDs["documentation"])

	// Document order inside the page follows input order within the group.
	assert.Less(t, strings.Index(out, "<p>one</p>"), strings.Index(out, "<p>three</p>"))
	assert.Less(t, strings.Index(out, "<p>three</p>"), strings.Index(out, "<p>two</p>"))
}

func TestAggregate_EscapesLabelsAndPathsButNotFragments(t *testing.T) {
	docs := []doctree.ProcessedDocument{
		doc("docs/<b>.md", "R&D  Notes", "<p><b>raw</b></p>"),
	}
	out, err := Aggregate(docs, Options{Title: "Acme & Co"})
	require.NoError(t, err)

	assert.Contains(t, out, "<title>Acme &amp; Co</title>")
	assert.Contains(t, out, "<h3>docs/&lt;b&gt;.md</h3>")
	assert.Contains(t, out, `<div class="category" id="r&amp;d-notes">`)
	assert.Contains(t, out, `<div class="file" id="docs--b--md">`)
	assert.Contains(t, out, "<p><b>raw</b></p>")
}

func TestAggregate_Empty(t *testing.T) {
	out, err := Aggregate(nil, Options{CheckAnchors: true})
	require.NoError(t, err)

	p := parsePage(t, out)
	assert.Empty(t, p.navHrefs)
	assert.Empty(t, p.categoryIDs)
	assert.Contains(t, out, "<nav>")
}

func TestAggregate_AnchorCollision(t *testing.T) {
	docs := []doctree.ProcessedDocument{
		doc("a/b.md", "Other", "<p>1</p>"),
		doc("a-b.md", "Other", "<p>2</p>"),
	}

	_, err := Aggregate(docs, Options{CheckAnchors: true})
	require.ErrorIs(t, err, docerr.ErrAnchorCollision)
	assert.Contains(t, err.Error(), "a/b.md")
	assert.Contains(t, err.Error(), "a-b.md")

	// With the check disabled the page is produced with duplicate ids.
	out, err := Aggregate(docs, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, `id="a-b-md"`))
}

func TestCheckAnchors_CategoryCollision(t *testing.T) {
	cats := Group([]doctree.ProcessedDocument{
		doc("x.md", "Blog Posts", ""),
		doc("y.md", "blog  posts", ""),
	})
	err := CheckAnchors(cats)
	assert.ErrorIs(t, err, docerr.ErrAnchorCollision)
}

func TestAggregate_HeadingShadowsCategory(t *testing.T) {
	docs := []doctree.ProcessedDocument{
		doc("README.md", "Getting Started", `<h2 id="documentation"><a href="#documentation">Documentation</a></h2>`),
		doc("docs/a.md", "Documentation", `<h1 id="a">A</h1>`),
	}

	_, err := Aggregate(docs, Options{CheckAnchors: true})
	require.ErrorIs(t, err, docerr.ErrAnchorCollision)
	assert.Contains(t, err.Error(), "README.md")
	assert.Contains(t, err.Error(), `category "Documentation"`)

	_, err = Aggregate(docs, Options{})
	require.NoError(t, err)
}

func TestCheckAnchors_HeadingShadowsDocument(t *testing.T) {
	cats := Group([]doctree.ProcessedDocument{
		doc("README.md", "Getting Started", `<p>x</p><h3 id="docs-a-md">Docs a md</h3>`),
		doc("docs/a.md", "Documentation", ""),
	})
	err := CheckAnchors(cats)
	require.ErrorIs(t, err, docerr.ErrAnchorCollision)
	assert.Contains(t, err.Error(), `document "docs/a.md"`)
}

func TestCheckAnchors_RepeatedHeadingIDsAcrossDocumentsAllowed(t *testing.T) {
	cats := Group([]doctree.ProcessedDocument{
		doc("docs/a.md", "Documentation", `<h2 id="usage">Usage</h2>`),
		doc("docs/b.md", "Documentation", `<h2 id="usage">Usage</h2>`),
	})
	assert.NoError(t, CheckAnchors(cats))
}

func TestAnchors(t *testing.T) {
	assert.Equal(t, "getting-started", CategoryAnchor("Getting Started"))
	assert.Equal(t, "blog-posts", CategoryAnchor("Blog \t Posts"))
	assert.Equal(t, "legal", CategoryAnchor("Legal"))

	assert.Equal(t, "README-md", DocumentAnchor("README.md"))
	assert.Equal(t, "docs-guide_v2-md", DocumentAnchor("docs/guide_v2.md"))
	assert.Equal(t, "caf--md", DocumentAnchor("café.md"))
}
