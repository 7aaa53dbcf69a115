package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatehouse-dev/gatehouse/pkg/errx"
	"github.com/gatehouse-dev/gatehouse/pkg/identity"
	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
	"github.com/gatehouse-dev/gatehouse/pkg/logx"
)

// Manager owns the session lifecycle: issuing on login, resolving on every
// request, destroying on logout. A session resolves to exactly one principal
// or to none; it never resolves to a stale or partial identity.
type Manager struct {
	codec    *Codec
	store    Store
	accounts identity.AccountAPI
	duration time.Duration
	log      *logx.Logger
}

// NewManager creates a session manager. Duration is the sliding session
// lifetime; zero means 365 days.
func NewManager(codec *Codec, store Store, accounts identity.AccountAPI, duration time.Duration) *Manager {
	if duration <= 0 {
		duration = 365 * 24 * time.Hour
	}
	return &Manager{
		codec:    codec,
		store:    store,
		accounts: accounts,
		duration: duration,
		log:      logx.GetDefaultLogger(),
	}
}

// Issue creates a session for the principal and returns the signed cookie
// value. The validator travels only in the cookie; the store keeps its hash.
func (m *Manager) Issue(ctx context.Context, p *identity.Principal, remember bool) (*Session, string, error) {
	now := time.Now()
	validator := uuid.NewString()

	hash, err := bcrypt.GenerateFromPassword([]byte(validator), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", ErrTokenGeneration().WithCause(err)
	}

	s := &Session{
		ID:        kernel.NewSessionID(uuid.NewString()),
		Account:   p.ID,
		Remember:  remember,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.duration),
	}

	rec := &Record{Session: *s, ValidatorHash: hash}
	if err := m.store.Save(ctx, rec, m.duration); err != nil {
		return nil, "", ErrStoreUnavailable().WithCause(err)
	}

	cookie, err := m.codec.Encode(s, validator)
	if err != nil {
		return nil, "", err
	}
	return s, cookie, nil
}

// Resolve maps a cookie value to the current principal. Missing, expired or
// tampered tokens resolve to no principal without error, as does a session
// whose account no longer exists on the directory service. Any other remote
// failure propagates; it must not be mistaken for "not logged in".
func (m *Manager) Resolve(ctx context.Context, cookie string) (*identity.Principal, *Session, error) {
	if cookie == "" {
		return nil, nil, nil
	}

	token, err := m.codec.Decode(cookie)
	if err != nil {
		return nil, nil, nil
	}

	rec, err := m.store.Find(ctx, token.SessionID)
	if err != nil {
		if errx.IsType(err, errx.TypeNotFound) {
			// Logged out or revoked server-side.
			return nil, nil, nil
		}
		return nil, nil, ErrStoreUnavailable().WithCause(err)
	}

	now := time.Now()
	if rec.Expired(now) {
		return nil, nil, nil
	}
	if bcrypt.CompareHashAndPassword(rec.ValidatorHash, []byte(token.Validator)) != nil {
		// The record exists but the cookie cannot prove possession.
		m.log.WithField("session", rec.ID.String()).Warn("session validator mismatch")
		return nil, nil, nil
	}

	p, err := m.accounts.FindAccount(ctx, rec.Account)
	if err != nil {
		if identity.IsNotFound(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	if !p.IsActive() {
		return nil, nil, nil
	}

	// Sliding expiry: each successful resolution renews the window.
	rec.ExpiresAt = now.Add(m.duration)
	if err := m.store.Save(ctx, rec, m.duration); err != nil {
		m.log.WithError(err).Warn("failed to renew session window")
	}

	s := rec.Session
	return p, &s, nil
}

// Destroy revokes the session named by the cookie. Unknown and malformed
// cookies are treated as already destroyed.
func (m *Manager) Destroy(ctx context.Context, cookie string) error {
	token, err := m.codec.Decode(cookie)
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, token.SessionID); err != nil && !errx.IsType(err, errx.TypeNotFound) {
		return ErrStoreUnavailable().WithCause(err)
	}
	return nil
}

// Duration returns the configured sliding session lifetime.
func (m *Manager) Duration() time.Duration { return m.duration }
