// Package writer persists the assembled page. Writes are atomic: readers
// see either the previous file or the complete new one.
package writer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/dgallion1/docbundle/internal/docerr"
)

// Write stores content at dest and returns the absolute destination path.
//
// The process:
//  1. Take an exclusive lock on dest + ".lock" so concurrent runs queue up
//  2. Write to a temporary file in the destination directory and sync it
//  3. Rename the temporary file over dest
//
// If any step fails, dest is left untouched and a *docerr.FilesystemError
// is returned.
func Write(content, dest string) (string, error) {
	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", &docerr.FilesystemError{Op: "resolve", Path: dest, Err: err}
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &docerr.FilesystemError{Op: "mkdir", Path: dir, Err: err}
	}

	lockPath := abs + ".lock"
	lock := flock.New(lockPath)
	if err := lock.Lock(); err != nil {
		return "", &docerr.FilesystemError{Op: "lock", Path: lockPath, Err: err}
	}
	// The lock file stays behind: removing it would let a waiter that
	// already opened the old inode run alongside one that creates a new one.
	defer lock.Unlock()

	if err := atomicWrite(abs, []byte(content)); err != nil {
		return "", &docerr.FilesystemError{Op: "write", Path: abs, Err: err}
	}
	return abs, nil
}

func atomicWrite(path string, data []byte) error {
	// Same directory as the target, so the rename stays on one filesystem.
	tempFile, err := os.CreateTemp(filepath.Dir(path), ".docbundle-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0o644); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	tempFile = nil
	return nil
}
