package audit_test

import (
	"context"
	"testing"

	"github.com/gatehouse-dev/gatehouse/pkg/audit"
	"github.com/gatehouse-dev/gatehouse/pkg/identity"
	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
)

type captureRecorder struct {
	events []audit.Event
}

func (r *captureRecorder) Record(_ context.Context, ev audit.Event) {
	r.events = append(r.events, ev)
}

func TestNewEventBuilders(t *testing.T) {
	ev := audit.NewEvent(audit.KindLogin).
		WithAccount(kernel.NewAccountID("https://dir.test/v1/accounts/a1")).
		WithRequest("203.0.113.9", "curl/8.0").
		WithDetail("method", "password")

	if ev.ID == "" || ev.At.IsZero() {
		t.Fatalf("event missing identity: %+v", ev)
	}
	if ev.Kind != audit.KindLogin || ev.IP != "203.0.113.9" {
		t.Fatalf("builder lost fields: %+v", ev)
	}
	if ev.Detail["method"] != "password" {
		t.Fatalf("detail not recorded: %+v", ev.Detail)
	}

	other := audit.NewEvent(audit.KindLogin)
	if other.ID == ev.ID {
		t.Fatal("event IDs must be unique")
	}
}

func TestMultiFansOutInOrder(t *testing.T) {
	first := &captureRecorder{}
	second := &captureRecorder{}
	rec := audit.Multi(first, second)

	rec.Record(context.Background(), audit.NewEvent(audit.KindLogout))

	if len(first.events) != 1 || len(second.events) != 1 {
		t.Fatalf("fan-out missed a recorder: %d, %d", len(first.events), len(second.events))
	}
	if first.events[0].ID != second.events[0].ID {
		t.Fatal("recorders saw different events")
	}
}

func TestDiscardIsSafe(t *testing.T) {
	audit.Discard.Record(context.Background(), audit.NewEvent(audit.KindAccessDenied))
}

func TestObserverRecordsOnlyDeletion(t *testing.T) {
	rec := &captureRecorder{}
	obs := audit.NewObserver(rec)

	p := &identity.Principal{
		ID:    kernel.NewAccountID("https://dir.test/v1/accounts/a1"),
		Email: "r@example.com",
	}

	obs.OnPrincipalCreated(context.Background(), p)
	obs.OnPrincipalUpdated(context.Background(), p)
	if len(rec.events) != 0 {
		t.Fatalf("create/update recorded %d events, want none", len(rec.events))
	}

	obs.OnPrincipalDeleted(context.Background(), p)
	if len(rec.events) != 1 {
		t.Fatalf("deletion recorded %d events, want 1", len(rec.events))
	}
	got := rec.events[0]
	if got.Kind != audit.KindAccountDeleted || got.Email != "r@example.com" {
		t.Fatalf("event = %+v, want account_deleted for r@example.com", got)
	}
}
