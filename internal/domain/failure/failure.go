// Package failure defines the error kinds every check-in operation reports.
// Domain packages wrap these with their own sentinels so callers can match
// either the specific error or its kind with errors.Is.
package failure

import "errors"

// Error kinds.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrDuplicate          = errors.New("duplicate")
	ErrValidation         = errors.New("validation failed")
	ErrCodeSpaceExhausted = errors.New("code space exhausted")
	ErrForbidden          = errors.New("forbidden")
)

// Stable kind names used in API error bodies.
const (
	KindNotFound           = "not_found"
	KindConflict           = "conflict"
	KindDuplicate          = "duplicate"
	KindValidation         = "validation"
	KindCodeSpaceExhausted = "code_space_exhausted"
	KindForbidden          = "forbidden"
	KindInternal           = "internal"
)

// Kind returns the stable kind name for err.
// PRE: none
// POST: Returns KindInternal for errors that wrap no known kind
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrCodeSpaceExhausted):
		return KindCodeSpaceExhausted
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	default:
		return KindInternal
	}
}

// kindError pairs a user-facing message with a kind sentinel.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// New returns an error with the given message that matches kind under errors.Is.
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Validation is shorthand for New(ErrValidation, msg).
func Validation(msg string) error {
	return New(ErrValidation, msg)
}
