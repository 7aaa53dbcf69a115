package session

import (
	"context"
	"time"

	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
)

// Store persists session records server-side. Implementations must return a
// SESSION_NOT_FOUND class error for unknown or expired records so the
// manager can distinguish "logged out" from "store down". Saving an existing
// ID replaces the record and resets its TTL; the manager renews sessions
// this way.
type Store interface {
	Save(ctx context.Context, rec *Record, ttl time.Duration) error
	Find(ctx context.Context, id kernel.SessionID) (*Record, error)
	Delete(ctx context.Context, id kernel.SessionID) error
}
