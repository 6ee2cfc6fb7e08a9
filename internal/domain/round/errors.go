package round

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of them.
var (
	// ErrValidation marks bad or missing input: names, pars or strokes.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a reference to a player, hole or score absent from the round.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState marks an operation the round cannot accept in its current state.
	ErrInvalidState = errors.New("invalid state")
)

// Error describes a rejected operation.
type Error struct {
	Op   string
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Msg)
}

// Unwrap exposes the kind to errors.Is.
func (e *Error) Unwrap() error { return e.Kind }

func newError(op string, kind error, format string, args ...any) error {
	return &Error{Op: op, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound reports whether err references something absent from the round.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidState reports whether err was caused by the round's state.
func IsInvalidState(err error) bool { return errors.Is(err, ErrInvalidState) }

// KindName returns a short stable label for the error kind, used in metrics and API codes.
func KindName(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return "validation_error"
	case IsNotFound(err):
		return "not_found"
	case IsInvalidState(err):
		return "invalid_state"
	default:
		return "internal_error"
	}
}
