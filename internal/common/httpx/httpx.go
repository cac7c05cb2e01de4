// Package httpx provides JSON response helpers for HTTP handlers. It is
// used by the in-process test backend; the error envelope matches what the
// production backend emits so the client decodes both identically.
package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Error represents an HTTP error response with status code and message.
type Error struct {
	StatusCode int    `json:"status"`
	Message    string `json:"message"`
}

// Error returns the error message.
func (e *Error) Error() string {
	return e.Message
}

// Send writes the error as the standard JSON error envelope.
func (e *Error) Send(w http.ResponseWriter) {
	if w == nil {
		return
	}
	body, err := json.Marshal(e)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("unable to encode error"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	w.Write(body)
}

// ErrUnauthorized returns a 401 error, optionally with a specific message.
func ErrUnauthorized(msg ...string) *Error {
	e := &Error{StatusCode: http.StatusUnauthorized, Message: "unauthorized"}
	if len(msg) > 0 {
		e.Message = msg[0]
	}
	return e
}

// ErrInvalidRequest returns a 400 error, optionally with a specific message.
func ErrInvalidRequest(msg ...string) *Error {
	e := &Error{StatusCode: http.StatusBadRequest, Message: "invalid request"}
	if len(msg) > 0 {
		e.Message = msg[0]
	}
	return e
}

// ErrNotFound returns a 404 error.
func ErrNotFound(msg ...string) *Error {
	e := &Error{StatusCode: http.StatusNotFound, Message: "not found"}
	if len(msg) > 0 {
		e.Message = msg[0]
	}
	return e
}

// ErrApplicationError returns a 500 error.
func ErrApplicationError(msg ...string) *Error {
	e := &Error{StatusCode: http.StatusInternalServerError, Message: "internal error"}
	if len(msg) > 0 {
		e.Message = msg[0]
	}
	return e
}

// SendJSON sends a JSON response with the given status code. Accepts
// pre-marshaled JSON (string or []byte) or any marshalable value. If a
// location is provided with http.StatusCreated, the Location header is set.
func SendJSON(ctx context.Context, w http.ResponseWriter, statusCode int, msg any, location ...string) {
	var body []byte
	switch v := msg.(type) {
	case string:
		if json.Valid([]byte(v)) {
			body = []byte(v)
		}
	case []byte:
		if json.Valid(v) {
			body = v
		}
	default:
		var err error
		body, err = json.Marshal(msg)
		if err != nil {
			log.Ctx(ctx).Err(err).Msg("unable to marshal json")
			ErrApplicationError().Send(w)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if statusCode == http.StatusCreated && len(location) > 0 {
		w.Header().Set("Location", location[0])
	}
	w.WriteHeader(statusCode)
	w.Write(body)
}
