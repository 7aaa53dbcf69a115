package audit

import (
	"context"

	"github.com/gatehouse-dev/gatehouse/pkg/identity"
)

// Observer writes account lifecycle mutations to the audit trail. It covers
// the mutations that happen outside a request handler; login, registration
// and password events are recorded by the views, with request context the
// hooks do not have.
type Observer struct {
	rec Recorder
}

var _ identity.Observer = (*Observer)(nil)

// NewObserver creates a lifecycle observer writing to rec.
func NewObserver(rec Recorder) *Observer {
	if rec == nil {
		rec = Discard
	}
	return &Observer{rec: rec}
}

// OnPrincipalCreated is a no-op; the registration and social views record
// creation with the client address attached.
func (o *Observer) OnPrincipalCreated(context.Context, *identity.Principal) {}

// OnPrincipalUpdated is a no-op; profile edits are not audit events.
func (o *Observer) OnPrincipalUpdated(context.Context, *identity.Principal) {}

// OnPrincipalDeleted records the deletion with the last known snapshot.
func (o *Observer) OnPrincipalDeleted(ctx context.Context, p *identity.Principal) {
	o.rec.Record(ctx, NewEvent(KindAccountDeleted).
		WithAccount(p.ID).
		WithEmail(p.Email))
}
