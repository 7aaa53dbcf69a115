// Package audit records authentication events: who logged in, from where,
// and what was refused. Recording is fire-and-forget; an audit outage must
// never break a login.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
)

// Kind classifies an authentication event.
type Kind string

const (
	KindLogin            Kind = "login"
	KindLoginFailed      Kind = "login_failed"
	KindLogout           Kind = "logout"
	KindRegistered       Kind = "registered"
	KindSocialLogin      Kind = "social_login"
	KindPasswordResetReq Kind = "password_reset_requested"
	KindPasswordChanged  Kind = "password_changed"
	KindAccessDenied     Kind = "access_denied"
	KindAccountDeleted   Kind = "account_deleted"
)

// Event is one recorded authentication event.
type Event struct {
	ID        string           `json:"id" db:"id"`
	Kind      Kind             `json:"kind" db:"kind"`
	Account   kernel.AccountID `json:"account,omitempty" db:"account"`
	Email     string           `json:"email,omitempty" db:"email"`
	IP        string           `json:"ip,omitempty" db:"ip"`
	UserAgent string           `json:"user_agent,omitempty" db:"user_agent"`
	Detail    map[string]any   `json:"detail,omitempty" db:"-"`
	At        time.Time        `json:"at" db:"at"`
}

// NewEvent creates an event with a fresh ID and the current time.
func NewEvent(kind Kind) Event {
	return Event{
		ID:   uuid.NewString(),
		Kind: kind,
		At:   time.Now().UTC(),
	}
}

// WithAccount attaches the acting account.
func (e Event) WithAccount(id kernel.AccountID) Event {
	e.Account = id
	return e
}

// WithEmail attaches the attempted login email. Used for failed attempts
// where no account was resolved.
func (e Event) WithEmail(email string) Event {
	e.Email = email
	return e
}

// WithRequest attaches the client address and agent.
func (e Event) WithRequest(ip, userAgent string) Event {
	e.IP = ip
	e.UserAgent = userAgent
	return e
}

// WithDetail attaches one extra key/value pair.
func (e Event) WithDetail(key string, value any) Event {
	if e.Detail == nil {
		e.Detail = make(map[string]any)
	}
	e.Detail[key] = value
	return e
}

// Recorder persists events. Implementations swallow their own failures;
// recording never returns an error to the request path.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// Multi fans one event out to several recorders in order.
func Multi(recorders ...Recorder) Recorder {
	return multiRecorder(recorders)
}

type multiRecorder []Recorder

func (m multiRecorder) Record(ctx context.Context, ev Event) {
	for _, r := range m {
		r.Record(ctx, ev)
	}
}

// Discard is a Recorder that drops everything. Useful in tests and when the
// trail is disabled.
var Discard Recorder = discardRecorder{}

type discardRecorder struct{}

func (discardRecorder) Record(context.Context, Event) {}
