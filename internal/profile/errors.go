package profile

import (
	"errors"
	"fmt"
)

// ErrFilesystem is the sentinel wrapped by every FilesystemError.
var ErrFilesystem = errors.New("profile filesystem error")

// FilesystemError reports a failed filesystem operation on a profile path.
// When it is returned the profile on disk is unmodified.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// Is matches ErrFilesystem in addition to the wrapped error chain.
func (e *FilesystemError) Is(target error) bool {
	return target == ErrFilesystem
}

// AmbiguousStateWarning is raised when a profile holds more than one
// generated block or a start marker without an end. Only the first
// well-formed block is touched; the rest is left for manual cleanup.
type AmbiguousStateWarning struct {
	Path     string
	Blocks   int
	Dangling int
}

func (w AmbiguousStateWarning) String() string {
	return fmt.Sprintf("%s: %d generated blocks and %d unterminated markers found; only the first block was updated, remove the others manually",
		w.Path, w.Blocks, w.Dangling)
}
