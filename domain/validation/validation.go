// Package validation holds the field-level validation error shared by the
// auth and task domains, plus the struct validator both of them use.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const errorPrefix = "validation failed: "

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned when caller input is malformed or incomplete.
type Error struct {
	Fields []FieldError `json:"fields"`
}

// New builds an Error from field/message pairs.
func New(fields ...FieldError) *Error {
	return &Error{Fields: fields}
}

// Field is shorthand for a single-field Error.
func Field(field, message string) *Error {
	return New(FieldError{Field: field, Message: message})
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return errorPrefix + strings.Join(parts, "; ")
}

// Parse recovers an Error from its string form. Request-reply services only
// carry the error text across module boundaries, so adapters use this to
// restore field detail.
func Parse(msg string) (*Error, bool) {
	idx := strings.Index(msg, errorPrefix)
	if idx < 0 {
		return nil, false
	}
	rest := msg[idx+len(errorPrefix):]
	out := &Error{}
	for _, part := range strings.Split(rest, "; ") {
		field, message, ok := strings.Cut(part, ": ")
		if !ok {
			continue
		}
		out.Fields = append(out.Fields, FieldError{Field: field, Message: message})
	}
	return out, true
}

// As reports whether err is (or wraps) a validation Error, falling back to
// parsing the message.
func As(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	if err == nil {
		return nil, false
	}
	return Parse(err.Error())
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates s against its `validate` tags and converts failures into
// an *Error keyed by JSON field name.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := &Error{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}
