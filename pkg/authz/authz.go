package authz

import (
	"net/http"

	"github.com/gatehouse-dev/gatehouse/pkg/errx"
	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
)

// ============================================================================
// Access policy
// ============================================================================

// PolicyMode selects how the groups of a policy combine.
type PolicyMode string

const (
	// ModeAll grants access only when the principal belongs to every group.
	ModeAll PolicyMode = "ALL"

	// ModeAny grants access when the principal belongs to at least one group.
	ModeAny PolicyMode = "ANY"
)

// AccessPolicy is a declared group-membership requirement for a protected
// operation. Policies are values; build them once at route registration and
// reuse them freely.
type AccessPolicy struct {
	Groups []kernel.GroupRef `json:"groups"`
	Mode   PolicyMode        `json:"mode"`
}

// AllOf builds a policy satisfied only by membership in every listed group.
func AllOf(refs ...kernel.GroupRef) AccessPolicy {
	return AccessPolicy{Groups: refs, Mode: ModeAll}
}

// AnyOf builds a policy satisfied by membership in at least one listed group.
func AnyOf(refs ...kernel.GroupRef) AccessPolicy {
	return AccessPolicy{Groups: refs, Mode: ModeAny}
}

// Refs converts plain group names or hrefs into references, for callers that
// declare policies from configuration strings.
func Refs(names ...string) []kernel.GroupRef {
	refs := make([]kernel.GroupRef, len(names))
	for i, name := range names {
		refs[i] = kernel.NewGroupRef(name)
	}
	return refs
}

// ============================================================================
// Decision
// ============================================================================

// DenyReason classifies why access was refused.
type DenyReason string

const (
	// DenyUnauthenticated means no principal was present on the request.
	DenyUnauthenticated DenyReason = "UNAUTHENTICATED"

	// DenyInsufficientGroups means the principal is known but does not
	// satisfy the policy's group requirement.
	DenyInsufficientGroups DenyReason = "INSUFFICIENT_GROUPS"

	// DenyMembershipQueryFailed means the remote membership query failed.
	// This is never a silent allow and never collapses into a 401 or 403.
	DenyMembershipQueryFailed DenyReason = "MEMBERSHIP_QUERY_FAILED"
)

// Decision is the outcome of one policy evaluation. A denied decision always
// carries a reason; a query failure additionally carries the cause.
type Decision struct {
	Allowed bool
	Reason  DenyReason
	Cause   error
}

// Allow returns a permitting decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny returns a refusing decision with the given reason.
func Deny(reason DenyReason) Decision { return Decision{Reason: reason} }

// QueryFailed returns a refusing decision for a failed membership query,
// preserving the remote error.
func QueryFailed(cause error) Decision {
	return Decision{Reason: DenyMembershipQueryFailed, Cause: cause}
}

// Err maps a denied decision to its registered error, suitable for the HTTP
// layer. Allowed decisions map to nil.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == DenyUnauthenticated:
		return ErrUnauthenticated()
	case d.Reason == DenyMembershipQueryFailed:
		return ErrMembershipQueryFailed().WithCause(d.Cause)
	default:
		return ErrInsufficientGroups()
	}
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("AUTHZ")

var (
	// Unauthenticated maps to 401 and insufficient groups to 403. Earlier
	// web stacks sometimes collapsed both into 401; the split keeps "log in
	// first" distinguishable from "logged in, still not allowed".
	CodeUnauthenticated       = ErrRegistry.Register("UNAUTHENTICATED", errx.TypeAuthorization, http.StatusUnauthorized, "Authentication required")
	CodeInsufficientGroups    = ErrRegistry.Register("INSUFFICIENT_GROUPS", errx.TypeAuthorization, http.StatusForbidden, "Insufficient group membership")
	CodeMembershipQueryFailed = ErrRegistry.Register("MEMBERSHIP_QUERY_FAILED", errx.TypeExternal, http.StatusBadGateway, "Group membership could not be verified")
)

func ErrUnauthenticated() *errx.Error       { return ErrRegistry.New(CodeUnauthenticated) }
func ErrInsufficientGroups() *errx.Error    { return ErrRegistry.New(CodeInsufficientGroups) }
func ErrMembershipQueryFailed() *errx.Error { return ErrRegistry.New(CodeMembershipQueryFailed) }
