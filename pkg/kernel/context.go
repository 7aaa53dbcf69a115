package kernel

// ============================================================================
// Request Context
// ============================================================================

// ContextKey is the type used for values stashed in request-scoped storage.
type ContextKey string

const (
	// PrincipalContextKey stores the resolved *identity.Principal for the
	// current request. Absent means "not logged in".
	PrincipalContextKey ContextKey = "gatehouse_principal"

	// SessionContextKey stores the decoded session for the current request.
	SessionContextKey ContextKey = "gatehouse_session"

	// RequestIDKey stores the request correlation ID.
	RequestIDKey ContextKey = "request_id"
)
