package domain

import (
	"errors"
	"fmt"
)

// Error categories. Services attach a caller-facing message via the
// constructors below; handlers match with errors.Is to pick a status code.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

type categorized struct {
	kind error
	msg  string
}

func (e *categorized) Error() string { return e.msg }

func (e *categorized) Unwrap() error { return e.kind }

// Unauthenticated returns an ErrUnauthenticated error with a message.
func Unauthenticated(msg string) error {
	return &categorized{kind: ErrUnauthenticated, msg: msg}
}

// Forbidden returns an ErrForbidden error with a message.
func Forbidden(msg string) error {
	return &categorized{kind: ErrForbidden, msg: msg}
}

// Validation returns an ErrValidation error with a message.
func Validation(msg string) error {
	return &categorized{kind: ErrValidation, msg: msg}
}

// Validationf formats a Validation error message.
func Validationf(format string, args ...any) error {
	return &categorized{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// NotFound returns an ErrNotFound error with a message.
func NotFound(msg string) error {
	return &categorized{kind: ErrNotFound, msg: msg}
}

// Conflict returns an ErrConflict error with a message.
func Conflict(msg string) error {
	return &categorized{kind: ErrConflict, msg: msg}
}
