package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// HTTPStatus converts service/repo/infra errors into an HTTP status code
// plus a machine-readable error type. Keeps handlers clean by
// centralizing error mapping; services never see HTTP codes.
func HTTPStatus(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""

	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"

	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "not_found"

	case errors.Is(err, ErrConflict):
		return http.StatusConflict, "conflict"

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"

	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout, "canceled"

	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// Message returns the error message safe to expose to clients. Untyped
// errors collapse to a generic message so storage details never leak.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && !errors.Is(err, ErrInternal) {
		return e.Message
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "record not found"
	}
	return "internal server error"
}
