// Package httpx provides JSON request/response helpers for the HTTP API.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/statecraft/congress/internal/platform/errors"
)

// NewRequestID returns a fresh request correlation id.
func NewRequestID() string { return "req_" + uuid.NewString() }

// WriteJSON encodes v as the JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON decodes the request body into dst, rejecting unknown fields.
func ReadJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// WriteError writes a JSON error envelope with the given status and code.
func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	resp := map[string]any{
		"request_id": NewRequestID(),
		"error": map[string]any{
			"code": code, "message": message, "details": details,
		},
	}
	WriteJSON(w, status, resp)
}

// WriteDomainError renders a domain error using its code's HTTP status.
// Unknown errors are masked behind a generic internal message.
func WriteDomainError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	if code == apperrors.CodeUnknown {
		WriteError(w, code.HTTPStatus(), string(code), "an unexpected error occurred", nil)
		return
	}
	var details any
	if meta := apperrors.GetMetadata(err); len(meta) > 0 {
		details = meta
	}
	WriteError(w, code.HTTPStatus(), string(code), err.Error(), details)
}
