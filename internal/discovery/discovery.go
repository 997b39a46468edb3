package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dgallion1/docbundle/internal/docerr"
	"github.com/dgallion1/docbundle/internal/doctree"
	"github.com/dgallion1/docbundle/internal/parser"
)

// IncludePattern selects markdown sources anywhere under the root.
const IncludePattern = "**/*.{md,mdx}"

// DefaultExcludes are matched as plain substrings of the relative path,
// so "build" also excludes "docs/building.md".
var DefaultExcludes = []string{"node_modules", "dist", "build", ".next"}

// Options tunes a Discoverer.
type Options struct {
	IncludeHidden bool     // match dot-prefixed files and directories
	Exclude       []string // substrings excluded in addition to DefaultExcludes
	ExtraFormats  []string // parser format names converted to markdown
	Skip          []string // files never returned, such as the output page
}

// Discoverer finds documentation files under a root directory.
type Discoverer struct {
	root     string
	excludes []string
	extraExt map[string]bool
	hidden   bool
	skip     map[string]bool
	log      *slog.Logger
}

func New(root string, opts Options, log *slog.Logger) *Discoverer {
	excludes := append([]string(nil), DefaultExcludes...)
	for _, e := range opts.Exclude {
		if e != "" {
			excludes = append(excludes, e)
		}
	}
	return &Discoverer{
		root:     root,
		excludes: excludes,
		extraExt: parser.Extensions(opts.ExtraFormats),
		hidden:   opts.IncludeHidden,
		skip:     absSet(opts.Skip),
		log:      log,
	}
}

func absSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			set[abs] = true
		}
	}
	return set
}

// Discover walks the root and returns every matching file with its content
// loaded, in walk order. Any unreadable entry aborts the whole discovery.
func (d *Discoverer) Discover(ctx context.Context) ([]doctree.DocumentFile, error) {
	info, err := os.Stat(d.root)
	if err != nil {
		return nil, &docerr.FilesystemError{Op: "stat", Path: d.root, Err: err}
	}
	if !info.IsDir() {
		return nil, &docerr.FilesystemError{Op: "stat", Path: d.root, Err: docerr.ErrRootNotDir}
	}

	var files []doctree.DocumentFile
	err = filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &docerr.FilesystemError{Op: "walk", Path: p, Err: walkErr}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == d.root {
			return nil
		}

		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return &docerr.FilesystemError{Op: "walk", Path: p, Err: err}
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if (!d.hidden && isHidden(entry.Name())) || Excluded(rel, d.excludes) {
				d.log.Debug("skipping directory", "path", rel)
				return filepath.SkipDir
			}
			return nil
		}

		convert, ok := d.match(rel, entry.Name())
		if !ok {
			return nil
		}
		if abs, err := filepath.Abs(p); err == nil && d.skip[abs] {
			d.log.Debug("skipping file", "path", rel)
			return nil
		}

		raw, err := os.ReadFile(p)
		if err != nil {
			return &docerr.FilesystemError{Op: "read", Path: p, Err: err}
		}
		var content string
		if convert {
			content, err = parser.ToMarkdown(rel, raw)
			if err != nil {
				return &docerr.FilesystemError{Op: "convert", Path: p, Err: err}
			}
		} else {
			content, err = decodeText(raw)
			if err != nil {
				return &docerr.FilesystemError{Op: "read", Path: p, Err: err}
			}
		}

		files = append(files, doctree.DocumentFile{Path: rel, RawContent: content})
		d.log.Debug("discovered file", "path", rel, "bytes", len(content), "converted", convert)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// match reports whether the file is a candidate and whether it needs
// conversion to markdown first.
func (d *Discoverer) match(rel, name string) (convert bool, ok bool) {
	if !d.hidden && isHidden(name) {
		return false, false
	}
	if Excluded(rel, d.excludes) {
		return false, false
	}
	if matched, _ := doublestar.Match(IncludePattern, rel); matched {
		return false, true
	}
	if d.extraExt[strings.ToLower(path.Ext(name))] {
		return true, true
	}
	return false, false
}

// Excluded reports whether any of the substrings occurs in rel.
func Excluded(rel string, substrings []string) bool {
	for _, s := range substrings {
		if strings.Contains(rel, s) {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// decodeText returns raw as UTF-8 text. A UTF-8 byte order mark is dropped
// and UTF-16 content with a BOM is transcoded.
func decodeText(raw []byte) (string, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	return string(decoded), nil
}
