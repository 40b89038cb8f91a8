// Package respond writes the JSON envelope every API response uses:
// {success, data?, message?, pagination?}.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"blogcore/internal/apperr"
	"blogcore/internal/pagination"
)

// Envelope is the response body shape.
type Envelope struct {
	Success    bool             `json:"success"`
	Data       any              `json:"data,omitempty"`
	Message    string           `json:"message,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json response", "error", err)
	}
}

// OK writes a successful envelope carrying data.
func OK(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Success: true, Data: data})
}

// Page writes a successful envelope with a pagination block.
func Page(w http.ResponseWriter, data any, meta pagination.Meta) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data, Pagination: &meta})
}

// Message writes a successful envelope carrying only a message.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Success: true, Message: msg})
}

// Fail writes a failure envelope.
func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Success: false, Message: msg})
}

// Error maps err to a response. Application errors keep their status and
// message; anything else is logged and reported as a bare 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	if ae, ok := apperr.As(err); ok {
		Fail(w, ae.Status, ae.Message)
		return
	}
	slog.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	Fail(w, http.StatusInternalServerError, "Internal Server Error")
}
