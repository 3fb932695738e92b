package scene

import "errors"

var (
	// ErrDuplicateName is returned by Create when the name is already bound
	// to an initialized component of the same kind.
	ErrDuplicateName = errors.New("component name already in use")

	// ErrCapacityExceeded is returned by Create when every slot in the
	// kind's pool is initialized.
	ErrCapacityExceeded = errors.New("component pool exhausted")

	// ErrNotAllocated indicates a dirty-mark on a component whose index is
	// outside the pool. The pool never resizes, so this means a stale handle
	// from a torn-down registry. A programming error, not a recoverable
	// condition.
	ErrNotAllocated = errors.New("component not allocated in pool")

	// ErrUnsupportedFormat is returned by file-based constructors for
	// extensions or encodings the loader does not understand.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrFileNotFound is returned by file-based constructors when the source
	// file does not exist.
	ErrFileNotFound = errors.New("file not found")
)
