// Package httperr carries the JSON error contract shared by every app:
// {"message": ..., "code": ...} with an HTTP status, plus the
// {"message": "Validation failed", "errors": [...]} shape for bad input.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// APIError is returned by handlers and rendered by Handler.
type APIError struct {
	Status  int          `json:"-"`
	Code    string       `json:"code,omitempty"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// New builds an APIError.
func New(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// Wrap attaches the underlying cause, which is logged but never sent to clients.
func (e *APIError) Wrap(err error) *APIError {
	e.Err = err
	return e
}

func BadRequest(code, message string) *APIError {
	return New(http.StatusBadRequest, code, message)
}

func Unauthorized(code, message string) *APIError {
	return New(http.StatusUnauthorized, code, message)
}

func Forbidden(code, message string) *APIError {
	return New(http.StatusForbidden, code, message)
}

func NotFound(code, message string) *APIError {
	return New(http.StatusNotFound, code, message)
}

func Conflict(code, message string) *APIError {
	return New(http.StatusConflict, code, message)
}

// Internal is the opaque 500 used when a store or downstream call fails.
func Internal(code, message string, err error) *APIError {
	return New(http.StatusInternalServerError, code, message).Wrap(err)
}

// ValidationFailed converts validator output (or a bind error) to a 400.
func ValidationFailed(err error) *APIError {
	apiErr := &APIError{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: "Validation failed"}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		apiErr.Errors = []FieldError{{Field: "body", Message: err.Error()}}
		return apiErr
	}
	for _, fe := range verrs {
		apiErr.Errors = append(apiErr.Errors, FieldError{
			Field:   lowerFirst(fe.Field()),
			Message: describe(fe),
			Value:   fe.Value(),
		})
	}
	return apiErr
}

func describe(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Please provide a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "strongpassword":
		return "Password must be at least 6 characters and contain one lowercase letter, one uppercase letter, and one number"
	case "mood":
		return "Invalid mood value"
	case "objectid":
		return field + " must be a valid id"
	default:
		return fmt.Sprintf("%s failed on %s", field, fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
