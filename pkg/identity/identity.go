package identity

import (
	"fmt"
	"net/http"

	"github.com/gatehouse-dev/gatehouse/pkg/errx"
	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
)

// ============================================================================
// Principal
// ============================================================================

// Status is the account status reported by the directory service.
type Status string

const (
	StatusEnabled    Status = "ENABLED"
	StatusDisabled   Status = "DISABLED"
	StatusUnverified Status = "UNVERIFIED"
)

// MaxCustomDataBytes is the serialized size limit the directory service
// enforces on an account's custom data document.
const MaxCustomDataBytes = 10 * 1024 * 1024

// Principal is the authenticated entity for the current request. It is a
// typed snapshot of the remote account record, built at the collaborator
// boundary and never cached beyond the request.
type Principal struct {
	ID         kernel.AccountID `json:"id"`
	Email      string           `json:"email"`
	Username   string           `json:"username,omitempty"`
	GivenName  string           `json:"given_name"`
	MiddleName string           `json:"middle_name,omitempty"`
	Surname    string           `json:"surname"`
	Status     Status           `json:"status"`
	CustomData map[string]any   `json:"custom_data,omitempty"`
}

// IsActive reports whether the account may log in. An account is active if,
// and only if, its status is ENABLED.
func (p *Principal) IsActive() bool {
	return p.Status == StatusEnabled
}

// DisplayName returns the best human-readable name available.
func (p *Principal) DisplayName() string {
	if p.Username != "" {
		return p.Username
	}
	return p.Email
}

// String implements fmt.Stringer.
func (p *Principal) String() string {
	return fmt.Sprintf("Principal <%q (%s)>", p.DisplayName(), p.ID)
}

// NewAccount is the input for creating an account on the directory service.
// Email and password are always required; the remaining fields follow the
// configured field policy.
type NewAccount struct {
	Email      string         `json:"email"`
	Password   string         `json:"password"`
	GivenName  string         `json:"given_name"`
	Surname    string         `json:"surname"`
	Username   string         `json:"username,omitempty"`
	MiddleName string         `json:"middle_name,omitempty"`
	CustomData map[string]any `json:"custom_data,omitempty"`
	Status     Status         `json:"status,omitempty"`
}

// ============================================================================
// Group
// ============================================================================

// Group is a named authorization bucket the directory service associates
// with zero or more accounts.
type Group struct {
	Href kernel.GroupRef `json:"href"`
	Name string          `json:"name"`
}

// Matches reports whether ref identifies this group, by name or by href.
func (g Group) Matches(ref kernel.GroupRef) bool {
	return g.Name == ref.String() || g.Href == ref
}

// ============================================================================
// Social providers
// ============================================================================

// SocialProvider identifies a federated login platform supported by the
// directory service.
type SocialProvider string

const (
	ProviderGoogle   SocialProvider = "GOOGLE"
	ProviderFacebook SocialProvider = "FACEBOOK"
)

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("IDENTITY")

var (
	CodeAccountNotFound     = ErrRegistry.Register("ACCOUNT_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Account not found")
	CodeInvalidCredentials  = ErrRegistry.Register("INVALID_CREDENTIALS", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid login or password")
	CodeAccountExists       = ErrRegistry.Register("ACCOUNT_EXISTS", errx.TypeConflict, http.StatusConflict, "An account with that email already exists")
	CodeGroupNotFound       = ErrRegistry.Register("GROUP_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Group not found")
	CodeInvalidResetToken   = ErrRegistry.Register("INVALID_RESET_TOKEN", errx.TypeValidation, http.StatusBadRequest, "Invalid or expired password reset token")
	CodeSocialExchange      = ErrRegistry.Register("SOCIAL_EXCHANGE_FAILED", errx.TypeExternal, http.StatusBadGateway, "Federated login exchange failed")
	CodeProviderUnavailable = ErrRegistry.Register("PROVIDER_UNAVAILABLE", errx.TypeExternal, http.StatusBadGateway, "Directory service request failed")
	CodeCustomDataTooLarge  = ErrRegistry.Register("CUSTOM_DATA_TOO_LARGE", errx.TypeValidation, http.StatusBadRequest, "Custom data exceeds the provider size limit")
)

// Helper constructors
func ErrAccountNotFound() *errx.Error     { return ErrRegistry.New(CodeAccountNotFound) }
func ErrInvalidCredentials() *errx.Error  { return ErrRegistry.New(CodeInvalidCredentials) }
func ErrAccountExists() *errx.Error       { return ErrRegistry.New(CodeAccountExists) }
func ErrGroupNotFound() *errx.Error       { return ErrRegistry.New(CodeGroupNotFound) }
func ErrInvalidResetToken() *errx.Error   { return ErrRegistry.New(CodeInvalidResetToken) }
func ErrSocialExchange() *errx.Error      { return ErrRegistry.New(CodeSocialExchange) }
func ErrProviderUnavailable() *errx.Error { return ErrRegistry.New(CodeProviderUnavailable) }
func ErrCustomDataTooLarge() *errx.Error  { return ErrRegistry.New(CodeCustomDataTooLarge) }

// IsNotFound reports whether err is a "not found" class directory error.
// Session resolution relies on this to turn stale references into "no
// principal" instead of a request failure.
func IsNotFound(err error) bool {
	return errx.IsType(err, errx.TypeNotFound)
}
