package errx

// Convenience constructors for one-off errors.

// Internal creates an internal server error.
func Internal(message string) *Error { return New(message, TypeInternal) }

// Validation creates a validation error.
func Validation(message string) *Error { return New(message, TypeValidation) }

// NotFound creates a not found error.
func NotFound(message string) *Error { return New(message, TypeNotFound) }

// Unauthorized creates an authorization error.
func Unauthorized(message string) *Error { return New(message, TypeAuthorization) }

// Conflict creates a conflict error.
func Conflict(message string) *Error { return New(message, TypeConflict) }

// External creates an external service error.
func External(message string) *Error { return New(message, TypeExternal) }

// Configuration creates a configuration error. Configuration errors are
// fatal at startup: the process must refuse to serve traffic.
func Configuration(message string) *Error { return New(message, TypeConfiguration) }
