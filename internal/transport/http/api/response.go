// Package api defines the JSON envelope every endpoint answers with.
// Handlers never touch the ResponseWriter directly; they go through
// Success, Created, or Fail so clients see exactly one response shape.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error is the machine-readable half of a failure. Code is a stable
// snake_case identifier clients may branch on; Message is for humans
// and carries no compatibility promise.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope wraps every response body. Exactly one of Data and Error is
// populated, matching Success.
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// write marshals before touching the ResponseWriter, so an encode
// failure degrades to a bare 500 instead of a half-written body under
// a success status.
func write(w http.ResponseWriter, status int, env Envelope) {
	body, err := json.Marshal(env)
	if err != nil {
		slog.Warn("response encode failed", "err", err, "requestId", env.RequestID)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Warn("response write failed", "err", err, "requestId", env.RequestID)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	write(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	write(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	write(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}
