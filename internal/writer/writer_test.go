package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docbundle/internal/docerr"
)

func TestWrite_CreatesParentsAndReturnsAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "docs", "documentation.html")

	got, err := Write("<html></html>", dest)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, dest, got)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWrite_OverwritesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.html")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

	_, err := Write("new", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "out.html")
}

func TestWrite_LockFileOutlivesWrite(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.html")

	_, err := Write("one", dest)
	require.NoError(t, err)
	_, err = os.Stat(dest + ".lock")
	require.NoError(t, err)

	_, err = Write("two", dest)
	require.NoError(t, err)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestWrite_RelativePathResolved(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	got, err := Write("x", filepath.Join("docs", "documentation.html"))
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(filepath.Join(dir, "docs", "documentation.html"))
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, want, resolved)
}

func TestWrite_DestinationIsDirectory(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "taken")
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "child"), 0o755))

	_, err := Write("x", dest)
	var fsErr *docerr.FilesystemError
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, "write", fsErr.Op)

	// The directory survives and no temp files are left behind.
	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), e.Name())
	}
}

func TestWrite_ParentIsFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "docs")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0o644))

	_, err := Write("x", filepath.Join(blocker, "documentation.html"))
	var fsErr *docerr.FilesystemError
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, "mkdir", fsErr.Op)
}

func TestWrite_ConcurrentWritersNeverInterleave(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.html")

	const writers = 8
	contents := make([]string, writers)
	for i := range contents {
		contents[i] = strings.Repeat(fmt.Sprintf("%d", i), 64*1024)
	}

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := Write(contents[i], dest)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, contents, string(data))
}
