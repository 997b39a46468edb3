// Package parser converts non-markdown documentation sources (plain text,
// CSV, HTML, PDF, DOCX) into markdown so they can join a bundle through
// the same renderer as native markdown files.
package parser

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgallion1/docbundle/internal/doctree"
)

// Parser converts raw document bytes into a DocTree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.DocTree, error)
}

// SupportedFormats lists the extra formats this package can convert,
// keyed by the format name used in configuration.
var SupportedFormats = map[string][]string{
	"txt":  {".txt"},
	"csv":  {".csv"},
	"html": {".html", ".htm"},
	"pdf":  {".pdf"},
	"docx": {".docx"},
}

// FormatNames returns the supported format names, sorted.
func FormatNames() []string {
	names := make([]string, 0, len(SupportedFormats))
	for name := range SupportedFormats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsSupportedFormat reports whether name is a known extra format.
func IsSupportedFormat(name string) bool {
	_, ok := SupportedFormats[strings.ToLower(name)]
	return ok
}

// Extensions returns the file extensions enabled by the given format names.
func Extensions(formats []string) map[string]bool {
	exts := make(map[string]bool)
	for _, f := range formats {
		for _, ext := range SupportedFormats[strings.ToLower(f)] {
			exts[ext] = true
		}
	}
	return exts
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// ToMarkdown parses data with the parser for filename and flattens the
// result into markdown.
func ToMarkdown(filename string, data []byte) (string, error) {
	p, err := ForFile(filename)
	if err != nil {
		return "", err
	}
	tree, err := p.Parse(bytes.NewReader(data), filepath.Base(filename))
	if err != nil {
		return "", err
	}
	return tree.Markdown(), nil
}
