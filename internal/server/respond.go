package server

import (
	"encoding/json"
	"net/http"

	"github.com/companycrush/crush-backend/internal/logger"

	svcErr "github.com/companycrush/crush-backend/internal/errors"
)

// ErrorResponse is the standard error shape returned by all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.Error("failed to encode JSON response", "err", err)
		}
	}
}

// Error maps a service error to its HTTP status and stable body.
func Error(w http.ResponseWriter, err error) {
	status, errType := svcErr.HTTPStatus(err)
	JSON(w, status, ErrorResponse{
		Error:   errType,
		Message: svcErr.Message(err),
	})
}
