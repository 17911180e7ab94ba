package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundf(t *testing.T) {
	err := NotFoundf("user %d not found", 42)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "user 42 not found", err.Error())

	status, kind := HTTPStatus(err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", kind)
	assert.Equal(t, "user 42 not found", Message(err))
}

func TestInternalHidesDetails(t *testing.T) {
	err := Internal(stderrors.New("dial tcp 10.0.0.5:3306: connection refused"))

	assert.ErrorIs(t, err, ErrInternal)

	status, kind := HTTPStatus(err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", kind)

	// infrastructure details never reach the client
	assert.Equal(t, "internal server error", Message(err))
}
