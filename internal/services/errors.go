package services

import (
	"errors"

	"github.com/baharkarakas/taskboard/internal/validate"
)

// Error kinds. Every *Error unwraps to exactly one of these.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// Error is a typed failure whose message is safe to show to clients.
type Error struct {
	Kind   error
	Msg    string
	Fields validate.Errs
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func newErr(kind error, msg string) error { return &Error{Kind: kind, Msg: msg} }

// fieldErr names the first failing field in the message, e.g. "title is too long".
func fieldErr(fields validate.Errs) error {
	return validationErr(fields[0].Field+" is "+fields[0].Msg, fields)
}

func validationErr(msg string, fields validate.Errs) error {
	return &Error{Kind: ErrValidation, Msg: msg, Fields: fields}
}
