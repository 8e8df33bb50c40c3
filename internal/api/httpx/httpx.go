package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/baharkarakas/taskboard/internal/services"
)

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// WriteInternal writes the opaque 500 used for anything unexpected.
func WriteInternal(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
}

// StatusFor maps a service error kind to its HTTP status and error code.
// ok is false for errors that are not *services.Error.
func StatusFor(err error) (status int, code string, ok bool) {
	var se *services.Error
	if !errors.As(err, &se) {
		return http.StatusInternalServerError, "internal_error", false
	}
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, "validation_error", true
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized", true
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "forbidden", true
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not_found", true
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict, "conflict", true
	}
	return http.StatusInternalServerError, "internal_error", false
}

// WriteServiceError writes a typed service error with its client-safe message and reports
// whether it did. Untyped errors get the opaque 500 and false, so the caller can log them.
func WriteServiceError(w http.ResponseWriter, err error) bool {
	status, code, ok := StatusFor(err)
	if !ok {
		WriteInternal(w)
		return false
	}
	var se *services.Error
	errors.As(err, &se)
	var details interface{}
	if len(se.Fields) > 0 {
		details = se.Fields
	}
	WriteError(w, status, code, se.Msg, details)
	return true
}
