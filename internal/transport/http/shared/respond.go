// Package shared holds transport helpers common to all handlers: JSON
// rendering and the mapping from domain error codes to HTTP statuses.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "dsarhub/pkg/domain-errors"
)

// ErrorResponse is the uniform error body for every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON renders v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to its HTTP status and renders the uniform
// error body. Unclassified errors surface as 500 with no internal detail.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)

	message := ""
	var de *dErrors.Error
	if errors.As(err, &de) {
		message = de.Message()
	}

	WriteJSON(w, statusFor(code), ErrorResponse{Error: string(code), Message: message})
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
