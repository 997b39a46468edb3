// Package docerr defines the error taxonomy for a documentation build.
// Every fatal condition in a run surfaces as one of these types so the
// entry point can name the offending path and pick an exit code.
package docerr

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPath indicates a required path setting was blank.
	ErrEmptyPath = errors.New("path is empty")

	// ErrRootNotDir indicates the discovery root exists but is not a directory.
	ErrRootNotDir = errors.New("root is not a directory")

	// ErrOutputIsDir indicates the output path names an existing directory.
	ErrOutputIsDir = errors.New("output path is a directory")

	// ErrAnchorCollision indicates two distinct inputs sanitized to the same
	// anchor id, or a rendered id shadows a category or document anchor.
	ErrAnchorCollision = errors.New("anchor collision")

	// ErrRenderTimeout indicates a single document exceeded the render timeout.
	ErrRenderTimeout = errors.New("render timed out")

	// ErrNoDocuments indicates discovery found nothing and the run requires documents.
	ErrNoDocuments = errors.New("no documentation files found")
)

// FilesystemError reports an unreadable root, unreadable file, or unwritable output.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// RenderError reports a renderer failure for one document.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ConfigurationError reports an invalid setting, detected before discovery.
type ConfigurationError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Exit codes. Anything non-zero is a failed run.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitConfig     = 2
	ExitFilesystem = 3
	ExitRender     = 4
)

// ExitCode maps an error returned by a run to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cfgErr *ConfigurationError
	var fsErr *FilesystemError
	var renderErr *RenderError
	switch {
	case errors.As(err, &cfgErr):
		return ExitConfig
	case errors.As(err, &renderErr):
		return ExitRender
	case errors.As(err, &fsErr):
		return ExitFilesystem
	default:
		return ExitFailure
	}
}
