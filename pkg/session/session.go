package session

import (
	"net/http"
	"time"

	"github.com/gatehouse-dev/gatehouse/pkg/errx"
	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
)

// Session is one logged-in browser. The cookie carries a signed token that
// names this record; the record itself lives server-side so that logout and
// revocation take effect immediately, not at cookie expiry.
type Session struct {
	ID       kernel.SessionID `json:"id"`
	Account  kernel.AccountID `json:"account"`
	Remember bool             `json:"remember"`
	IssuedAt time.Time        `json:"issued_at"`
	// ExpiresAt slides forward on every successful resolution.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the record has outlived its window.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Record is the stored shape of a session. The validator from the cookie is
// kept only as a hash, so a leaked store dump cannot mint valid cookies.
type Record struct {
	Session
	ValidatorHash []byte `json:"validator_hash"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("SESSION")

var (
	CodeTokenGeneration  = ErrRegistry.Register("TOKEN_GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Could not issue session token")
	CodeSessionNotFound  = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Session not found")
	CodeStoreUnavailable = ErrRegistry.Register("STORE_UNAVAILABLE", errx.TypeExternal, http.StatusBadGateway, "Session store request failed")
)

func ErrTokenGeneration() *errx.Error  { return ErrRegistry.New(CodeTokenGeneration) }
func ErrSessionNotFound() *errx.Error  { return ErrRegistry.New(CodeSessionNotFound) }
func ErrStoreUnavailable() *errx.Error { return ErrRegistry.New(CodeStoreUnavailable) }
