package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/arcova/tidalbridge/internal/shared"
)

// ErrorResponse is the error envelope returned by every API endpoint.
type ErrorResponse struct {
	Status      int               `json:"status"`
	Error       string            `json:"error"`
	Message     string            `json:"message"`
	Path        string            `json:"path"`
	Timestamp   time.Time         `json:"timestamp"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// writeJSON writes a JSON response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes the standard error envelope.
func writeError(w http.ResponseWriter, r *http.Request, status int, errName, message string, fieldErrors map[string]string) {
	writeJSON(w, status, ErrorResponse{
		Status:      status,
		Error:       errName,
		Message:     message,
		Path:        r.URL.Path,
		Timestamp:   time.Now().UTC(),
		FieldErrors: fieldErrors,
	})
}

// writeStoreError maps persistence errors onto HTTP statuses; internal
// error chains are collapsed into a coarse category for external callers.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "Not Found", err.Error(), nil)
	case errors.Is(err, shared.ErrConflict):
		writeError(w, r, http.StatusConflict, "Conflict", err.Error(), nil)
	case errors.Is(err, shared.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, "Bad Request", err.Error(), nil)
	default:
		writeError(w, r, http.StatusInternalServerError, "Internal Server Error", "persistence failure", nil)
	}
}
