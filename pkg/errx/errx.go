// Package errx provides rich, registry-backed errors that carry an error
// code, a category and a suggested HTTP status across module boundaries.
package errx

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type categorizes an error.
type Type string

const (
	TypeInternal      Type = "INTERNAL"
	TypeValidation    Type = "VALIDATION"
	TypeAuthorization Type = "AUTHORIZATION"
	TypeNotFound      Type = "NOT_FOUND"
	TypeConflict      Type = "CONFLICT"
	TypeBusiness      Type = "BUSINESS"
	TypeExternal      Type = "EXTERNAL"
	TypeConfiguration Type = "CONFIGURATION"
)

// String returns the string representation of the error type.
func (t Type) String() string { return string(t) }

// Error is the rich error value exchanged between modules.
type Error struct {
	// Code is the unique error code, prefixed by the owning registry.
	Code string `json:"code"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Type categorizes the error.
	Type Type `json:"type"`

	// HTTPStatus is the suggested HTTP status code.
	HTTPStatus int `json:"http_status"`

	// Details contains additional context about the error.
	Details map[string]any `json:"details,omitempty"`

	// Err is the underlying cause (not exported in JSON).
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// WithDetail attaches a single key/value detail and returns the error for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails attaches multiple details at once.
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithCause attaches an underlying cause.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// MarshalJSON implements json.Marshaler so the composed message is included.
func (e *Error) MarshalJSON() ([]byte, error) {
	type alias Error
	return json.Marshal(&struct {
		*alias
		Error string `json:"error,omitempty"`
	}{
		alias: (*alias)(e),
		Error: e.Error(),
	})
}

// New creates a free-standing (unregistered) Error.
func New(message string, errType Type) *Error {
	return &Error{
		Code:       string(errType),
		Message:    message,
		Type:       errType,
		HTTPStatus: typeToHTTPStatus(errType),
		Details:    make(map[string]any),
	}
}

// Wrap wraps an existing error with additional context. A wrapped *Error
// keeps its code, status and details.
func Wrap(err error, message string, errType Type) *Error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return &Error{
			Code:       existing.Code,
			Message:    message,
			Type:       errType,
			HTTPStatus: existing.HTTPStatus,
			Details:    existing.Details,
			Err:        err,
		}
	}

	return &Error{
		Code:       string(errType),
		Message:    message,
		Type:       errType,
		HTTPStatus: typeToHTTPStatus(errType),
		Details:    make(map[string]any),
		Err:        err,
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, errType Type, format string, args ...any) *Error {
	return Wrap(err, fmt.Sprintf(format, args...), errType)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// IsType reports whether err is an *Error of the given type.
func IsType(err error, t Type) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == t
}

func typeToHTTPStatus(t Type) int {
	switch t {
	case TypeValidation:
		return 400
	case TypeAuthorization:
		return 401
	case TypeNotFound:
		return 404
	case TypeConflict:
		return 409
	case TypeBusiness:
		return 422
	case TypeExternal:
		return 502
	case TypeConfiguration, TypeInternal:
		return 500
	default:
		return 500
	}
}
