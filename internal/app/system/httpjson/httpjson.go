// internal/app/system/httpjson/httpjson.go

// Package httpjson holds the one response shape every JSON endpoint shares.
package httpjson

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON error envelope. Retryable marks failures the client
// should resolve by trying again (lock contention, rate limits) as opposed to
// fixing the request.
type ErrorBody struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Write encodes v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error envelope.
func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, ErrorBody{Error: msg})
}

// RetryableError writes a JSON error envelope flagged retryable.
func RetryableError(w http.ResponseWriter, status int, msg string) {
	Write(w, status, ErrorBody{Error: msg, Retryable: true})
}
