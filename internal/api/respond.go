// Package api provides the JSON request and response conventions shared by
// all HTTP handlers: a uniform error envelope, request binding with
// validation, and helpers for writing success payloads.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/saasbase/saasbase/pkg/requestid"
)

// ErrorResponse is the envelope returned for every failed request. TraceID
// carries the request correlation id so clients can quote it in support
// tickets.
type ErrorResponse struct {
	Status      int               `json:"status"`
	Error       string            `json:"error"`
	Message     string            `json:"message"`
	Details     string            `json:"details,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
	TraceID     string            `json:"trace_id,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	Path        string            `json:"path"`
	Method      string            `json:"method"`
}

// JSON writes v with the given status code. Encoding failures are logged
// and the connection is left to the client to tear down; headers are
// already committed at that point.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", slog.Any("error", err))
	}
}

// Error writes the standard error envelope.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	ErrorWithDetails(w, r, status, message, "", nil)
}

// ErrorWithDetails writes the standard error envelope with an optional
// details string and per-field validation messages.
func ErrorWithDetails(w http.ResponseWriter, r *http.Request, status int, message, details string, fieldErrors map[string]string) {
	JSON(w, r, status, ErrorResponse{
		Status:      status,
		Error:       http.StatusText(status),
		Message:     message,
		Details:     details,
		FieldErrors: fieldErrors,
		TraceID:     requestid.FromContext(r.Context()),
		Timestamp:   time.Now().UTC(),
		Path:        r.URL.Path,
		Method:      r.Method,
	})
}
