package validate

import (
	"strings"

	"github.com/google/uuid"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Add appends a non-nil field error.
func (e Errs) Add(ef *ErrField) Errs {
	if ef == nil {
		return e
	}
	return append(e, *ef)
}

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

func MaxLen(field, value string, max int) *ErrField {
	if len([]rune(value)) > max {
		return &ErrField{Field: field, Msg: "too long"}
	}
	return nil
}

func UUID(field, value string) *ErrField {
	if _, err := uuid.Parse(value); err != nil {
		return &ErrField{Field: field, Msg: "invalid id"}
	}
	return nil
}
