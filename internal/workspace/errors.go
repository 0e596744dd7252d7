package workspace

import "errors"

// Error kinds returned by devctr operations. Compare with errors.Is.
var (
	// ErrAlreadyExists is returned when a repository, container definition
	// or workspace would collide with an existing path.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound is returned when a referenced repository or subdirectory
	// is missing.
	ErrNotFound = errors.New("not found")

	// ErrIO marks filesystem, permission and process spawn failures.
	ErrIO = errors.New("i/o failure")

	// ErrInput marks a failure to read operator input.
	ErrInput = errors.New("input failure")

	// ErrInvalidName is returned for names unsafe to use as path segments
	// or image tags.
	ErrInvalidName = errors.New("invalid name")

	// ErrLocked is returned when another devctr process holds the
	// workspace lock.
	ErrLocked = errors.New("workspace is locked by another devctr process")
)

// kindError attaches an error kind to an underlying cause while keeping
// the cause's message.
type kindError struct {
	kind error
	op   string
	err  error
}

func (e *kindError) Error() string {
	return e.op + ": " + e.err.Error()
}

func (e *kindError) Unwrap() error {
	return e.err
}

func (e *kindError) Is(target error) bool {
	return target == e.kind
}

// IOError wraps err as an ErrIO failure of op. Returns nil if err is nil.
func IOError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: ErrIO, op: op, err: err}
}

// InputError wraps err as an ErrInput failure of op. Returns nil if err is nil.
func InputError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: ErrInput, op: op, err: err}
}
