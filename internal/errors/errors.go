package errors

import (
	"errors"
	"fmt"
)

// Sentinel codes for the core error taxonomy. Services return these
// wrapped in *Error; the transport layer maps them to HTTP statuses.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal error")
)

// Error carries a sentinel code plus a human-readable message.
type Error struct {
	Code    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Code }

// NotFound creates a user/target-missing error.
func NotFound(msg string) error {
	return &Error{Code: ErrNotFound, Message: msg}
}

// NotFoundf is NotFound with formatting.
func NotFoundf(format string, args ...any) error {
	return &Error{Code: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument creates a bad-input error (bad direction, self-swipe,
// malformed preference/gender).
func InvalidArgument(msg string) error {
	return &Error{Code: ErrInvalidArgument, Message: msg}
}

// Conflict creates a duplicate-state error (already swiped,
// already-registered name).
func Conflict(msg string) error {
	return &Error{Code: ErrConflict, Message: msg}
}

// Internal wraps a storage or infrastructure failure.
func Internal(err error) error {
	return &Error{Code: ErrInternal, Message: err.Error()}
}
