package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docbundle/internal/docerr"
)

func init() {
	color.NoColor = true
}

// project writes files into a fresh root and isolates the environment so
// neither DOCBUNDLE_* variables nor a stray .env leak into the test.
func project(t *testing.T, files map[string]string) string {
	t.Helper()
	for _, k := range []string{
		"DOCBUNDLE_ROOT", "DOCBUNDLE_OUTPUT", "DOCBUNDLE_CONFIG", "DOCBUNDLE_TITLE",
		"DOCBUNDLE_CONCURRENCY", "DOCBUNDLE_EXTRA_FORMATS", "DOCBUNDLE_CHECK_ANCHORS",
		"DOCBUNDLE_REQUIRE_DOCS", "DOCBUNDLE_LOG_LEVEL", "DOCBUNDLE_INCLUDE_HIDDEN",
	} {
		t.Setenv(k, "")
	}
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(root))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return root
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRoot_BuildsInWorkingDirectory(t *testing.T) {
	root := project(t, map[string]string{
		"README.md":    "# Hi",
		"docs/a.md":    "# A",
		"blog/post.md": "# P",
	})

	stdout, stderr, err := execute(t)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "docs", "documentation.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `id="getting-started"`)
	assert.Contains(t, stdout, "Wrote ")
	assert.Contains(t, stdout, "(3 documents, 3 categories)")

	// Phase transitions are logged as JSON off a terminal.
	for _, msg := range []string{"discovery started", "files found", "rendering started", "write completed"} {
		assert.Contains(t, stderr, `"msg":"`+msg+`"`)
	}
	assert.Contains(t, stderr, `"run_id":`)
}

func TestBuild_Flags(t *testing.T) {
	root := project(t, map[string]string{"README.md": "# Hi"})
	other := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(other, "CHANGELOG.md"), []byte("## 1.0"), 0o644))

	_, _, err := execute(t, "build", "--root", other, "--output", "site/index.html", "--title", "Release Notes", "--concurrency", "1")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(other, "site", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<title>Release Notes</title>")
	assert.Contains(t, string(data), `id="changelog"`)

	_, err = os.Stat(filepath.Join(root, "docs", "documentation.html"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuild_VerboseLogsPerFile(t *testing.T) {
	project(t, map[string]string{"README.md": "# Hi"})
	_, stderr, err := execute(t, "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"rendered document"`)
}

func TestBuild_ConfigurationError(t *testing.T) {
	project(t, map[string]string{"README.md": "# Hi"})

	_, _, err := execute(t, "--concurrency", "-2")
	var cfgErr *docerr.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, docerr.ExitConfig, docerr.ExitCode(err))

	_, _, err = execute(t, "--extra-formats", "rtf")
	assert.Equal(t, docerr.ExitConfig, docerr.ExitCode(err))
}

func TestBuild_OutputIsDirectory(t *testing.T) {
	project(t, map[string]string{"README.md": "# Hi", "docs/documentation.html/keep": "x"})
	_, _, err := execute(t)
	assert.ErrorIs(t, err, docerr.ErrOutputIsDir)
	assert.Equal(t, docerr.ExitConfig, docerr.ExitCode(err))
}

func TestBuild_AnchorCollisionFlag(t *testing.T) {
	root := project(t, map[string]string{"a/b.md": "# One", "a-b.md": "# Two"})

	_, _, err := execute(t)
	require.ErrorIs(t, err, docerr.ErrAnchorCollision)
	assert.Equal(t, docerr.ExitFailure, docerr.ExitCode(err))
	assert.Contains(t, err.Error(), "a/b.md")
	assert.Contains(t, err.Error(), "a-b.md")

	_, _, err = execute(t, "--check-anchors=false")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "docs", "documentation.html"))
	assert.NoError(t, err)
}

func TestBuild_RequireDocs(t *testing.T) {
	project(t, nil)
	_, _, err := execute(t, "--require-docs")
	assert.ErrorIs(t, err, docerr.ErrNoDocuments)
	assert.Equal(t, docerr.ExitFilesystem, docerr.ExitCode(err))
}

func TestBuild_YAMLConfig(t *testing.T) {
	root := project(t, map[string]string{
		"docs/adr/0001.md": "# Use Go",
		"docs/setup.md":    "# Setup",
		"docbundle.yaml": `title: Architecture
categories:
  - match: adr/
    label: Decisions
  - match: docs
    label: Guides
`,
	})

	_, _, err := execute(t)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(root, "docs", "documentation.html"))
	require.NoError(t, err)
	page := string(data)
	assert.Contains(t, page, "<title>Architecture</title>")
	assert.Less(t, strings.Index(page, `id="decisions"`), strings.Index(page, `id="guides"`))
}

func TestBuild_ExtraFormats(t *testing.T) {
	root := project(t, map[string]string{
		"docs/runbook.html": "<h1>Runbook</h1><p>Restart the service.</p>",
	})

	_, _, err := execute(t, "--extra-formats", "html")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(root, "docs", "documentation.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `<h1 id="runbook"><a href="#runbook">Runbook</a></h1>`)
	assert.Contains(t, string(data), "<p>Restart the service.</p>")
}

func TestCategories_DryRun(t *testing.T) {
	root := project(t, map[string]string{
		"README.md":                  "# Hi",
		"docs/guide.md":              "# Guide",
		"node_modules/pkg/README.md": "# dep",
	})

	stdout, _, err := execute(t, "categories")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Rules (first match wins):")
	assert.Contains(t, stdout, `"README"`)
	assert.Contains(t, stdout, "Files (2):")
	assert.Regexp(t, `README\.md\s+Getting Started`, stdout)
	assert.Regexp(t, `docs/guide\.md\s+Documentation`, stdout)
	assert.NotContains(t, stdout, "node_modules")

	_, err = os.Stat(filepath.Join(root, "docs", "documentation.html"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestServe_BuildFailureReturnsBeforeListening(t *testing.T) {
	project(t, map[string]string{"a/b.md": "# One", "a-b.md": "# Two"})
	_, _, err := execute(t, "serve", "--addr", "127.0.0.1:0")
	assert.ErrorIs(t, err, docerr.ErrAnchorCollision)
}

func TestRoot_RejectsArguments(t *testing.T) {
	project(t, nil)
	_, _, err := execute(t, "docs")
	assert.Error(t, err)
}

func TestBuild_ExtraFormatsDoNotReadOwnOutput(t *testing.T) {
	project(t, map[string]string{"docs/runbook.html": "<h1>Runbook</h1>"})

	stdout, _, err := execute(t, "--extra-formats", "html")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(1 documents, 1 categories)")

	stdout, _, err = execute(t, "--extra-formats", "html")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(1 documents, 1 categories)")
}
