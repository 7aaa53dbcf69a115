package errx

import (
	"fmt"
	"sync"
)

// ErrorCode is an error definition registered once at package init time.
type ErrorCode struct {
	Code       string
	Type       Type
	HTTPStatus int
	Message    string
}

// Registry manages the error codes of one bounded context. Each module owns
// a registry with a unique prefix so codes are globally distinguishable.
type Registry struct {
	prefix string
	codes  map[string]*ErrorCode
	mu     sync.RWMutex
}

// NewRegistry creates a new error registry with a prefix.
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix: prefix,
		codes:  make(map[string]*ErrorCode),
	}
}

// Register registers a new error code under the registry prefix.
func (r *Registry) Register(code string, errType Type, httpStatus int, message string) *ErrorCode {
	r.mu.Lock()
	defer r.mu.Unlock()

	ec := &ErrorCode{
		Code:       fmt.Sprintf("%s_%s", r.prefix, code),
		Type:       errType,
		HTTPStatus: httpStatus,
		Message:    message,
	}
	r.codes[code] = ec
	return ec
}

// New creates an error from a registered code.
func (r *Registry) New(code *ErrorCode) *Error {
	return &Error{
		Code:       code.Code,
		Message:    code.Message,
		Type:       code.Type,
		HTTPStatus: code.HTTPStatus,
		Details:    make(map[string]any),
	}
}

// NewWithMessage creates an error from a registered code with a custom message.
func (r *Registry) NewWithMessage(code *ErrorCode, message string) *Error {
	e := r.New(code)
	e.Message = message
	return e
}

// NewWithCause creates an error from a registered code wrapping an underlying cause.
func (r *Registry) NewWithCause(code *ErrorCode, err error) *Error {
	e := r.New(code)
	e.Err = err
	return e
}

// Get retrieves a registered error code by its unprefixed name.
func (r *Registry) Get(code string) (*ErrorCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ec, ok := r.codes[code]
	return ec, ok
}

// Codes returns a copy of all registered error codes.
func (r *Registry) Codes() map[string]*ErrorCode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*ErrorCode, len(r.codes))
	for k, v := range r.codes {
		out[k] = v
	}
	return out
}
