package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is the soft miss for Get/Delete-style lookups. An expired
// record is indistinguishable from a missing one.
var ErrNotFound = errors.New("record not found")

// ValidationError marks a bad argument or argument combination, detected
// before any I/O or state change.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ParseError marks a malformed document or import payload. A ParseError from
// Import means the store was not touched at all.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }
