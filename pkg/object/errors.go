package object

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedEncoding = errors.New("malformed encoding")
	ErrMalformedHeader   = errors.New("malformed header")
	ErrMalformedEntry    = errors.New("malformed tree entry")
	ErrSizeMismatch      = errors.New("size mismatch")
	ErrInvalidHash       = errors.New("invalid object hash")
	ErrNotFound          = errors.New("object not found")
	ErrNotACommit        = errors.New("not a commit")

	// ErrUndefinedContent is returned when the payload of an object with an
	// unrecognized type is requested.
	ErrUndefinedContent = errors.New("content of undefined object type")

	// ErrStopWalk may be returned by a walk visitor to end the walk early.
	// The walk then returns nil.
	ErrStopWalk = errors.New("stop walk")
)

// MissingFieldError reports a required commit or tag header that was absent.
type MissingFieldError struct {
	Object ObjectType
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing field %q", e.Object, e.Field)
}
