// Package handlers provides JSON response helpers shared by HTTP handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope wraps successful response payloads.
type Envelope struct {
	Data any `json:"data"`
}

// ErrorResponse is the uniform error body written by RespondError.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondData writes data wrapped in an Envelope.
func RespondData(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, Envelope{Data: data})
}

// RespondError writes an ErrorResponse with the given status code.
// Server errors are logged in full. A 500 body carries only the generic status
// text; other server errors carry only their sentinel, the left-most leaf of
// the wrap chain, so upstream detail never reaches the client.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	msg := err.Error()

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
		msg = serverMessage(status, err)
	}

	RespondJSON(w, status, ErrorResponse{Error: msg})
}

func serverMessage(status int, err error) string {
	if status == http.StatusInternalServerError {
		return http.StatusText(status)
	}
	if root := sentinel(err); root != err {
		return root.Error()
	}
	return http.StatusText(status)
}

// sentinel follows the first wrapped error at each level down to a leaf.
// Domain errors wrap as "%w: %w" with the sentinel first.
func sentinel(err error) error {
	for {
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			errs := u.Unwrap()
			if len(errs) == 0 {
				return err
			}
			err = errs[0]
		case interface{ Unwrap() error }:
			next := u.Unwrap()
			if next == nil {
				return err
			}
			err = next
		default:
			return err
		}
	}
}
