// Package handlers provides JSON response helpers shared by HTTP handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the JSON body returned for failed requests.
// Detail carries structured error payloads (validation outcomes,
// state machine context) when the error value provides one.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail any    `json:"detail,omitempty"`
}

// Detailer is implemented by errors that carry a structured detail payload.
type Detailer interface {
	Detail() any
}

// RespondJSON writes v as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RespondError logs the error and writes an ErrorResponse with the given status.
// Server-side failures (5xx) log at error level, client failures at warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}

	body := ErrorResponse{Error: err.Error()}

	var d Detailer
	if ok := asDetailer(err, &d); ok {
		body.Detail = d.Detail()
	}

	RespondJSON(w, status, body)
}

func asDetailer(err error, target *Detailer) bool {
	for err != nil {
		if d, ok := err.(Detailer); ok {
			*target = d
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
