package identity_test

import (
	"context"
	"testing"

	"github.com/gatehouse-dev/gatehouse/pkg/identity"
	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
)

func TestPrincipalIsActive(t *testing.T) {
	cases := []struct {
		status identity.Status
		active bool
	}{
		{identity.StatusEnabled, true},
		{identity.StatusDisabled, false},
		{identity.StatusUnverified, false},
	}

	for _, tc := range cases {
		p := &identity.Principal{Status: tc.status}
		if p.IsActive() != tc.active {
			t.Fatalf("status %s: expected active=%v", tc.status, tc.active)
		}
	}
}

func TestPrincipalDisplayName(t *testing.T) {
	p := &identity.Principal{Email: "r@example.com"}
	if p.DisplayName() != "r@example.com" {
		t.Fatalf("expected email fallback, got %q", p.DisplayName())
	}

	p.Username = "rdegges"
	if p.DisplayName() != "rdegges" {
		t.Fatalf("expected username, got %q", p.DisplayName())
	}
}

func TestGroupMatches(t *testing.T) {
	g := identity.Group{
		Href: kernel.NewGroupRef("https://api.dir.example.com/v1/groups/g1"),
		Name: "admins",
	}

	if !g.Matches(kernel.NewGroupRef("admins")) {
		t.Fatal("expected match by name")
	}
	if !g.Matches(kernel.NewGroupRef("https://api.dir.example.com/v1/groups/g1")) {
		t.Fatal("expected match by href")
	}
	if g.Matches(kernel.NewGroupRef("developers")) {
		t.Fatal("unexpected match")
	}
}

func TestGroupRefIsHref(t *testing.T) {
	if !kernel.NewGroupRef("https://api.dir.example.com/v1/groups/g1").IsHref() {
		t.Fatal("https ref should be an href")
	}
	if kernel.NewGroupRef("admins").IsHref() {
		t.Fatal("plain name should not be an href")
	}
}

// recordingObserver records which hooks fired.
type recordingObserver struct {
	created, updated, deleted []kernel.AccountID
}

func (r *recordingObserver) OnPrincipalCreated(_ context.Context, p *identity.Principal) {
	r.created = append(r.created, p.ID)
}
func (r *recordingObserver) OnPrincipalUpdated(_ context.Context, p *identity.Principal) {
	r.updated = append(r.updated, p.ID)
}
func (r *recordingObserver) OnPrincipalDeleted(_ context.Context, p *identity.Principal) {
	r.deleted = append(r.deleted, p.ID)
}

func TestHooksDispatchInRegistrationOrder(t *testing.T) {
	var order []string

	hooks := identity.NewHooks()
	hooks.Register(identity.ObserverFuncs{
		Created: func(context.Context, *identity.Principal) { order = append(order, "first") },
	})
	hooks.Register(identity.ObserverFuncs{
		Created: func(context.Context, *identity.Principal) { order = append(order, "second") },
	})

	hooks.PrincipalCreated(context.Background(), &identity.Principal{})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected dispatch order: %v", order)
	}
}

func TestHooksAllEvents(t *testing.T) {
	rec := &recordingObserver{}
	hooks := identity.NewHooks()
	hooks.Register(rec)

	ctx := context.Background()
	p := &identity.Principal{ID: kernel.NewAccountID("acct-1")}

	hooks.PrincipalCreated(ctx, p)
	hooks.PrincipalUpdated(ctx, p)
	hooks.PrincipalDeleted(ctx, p)

	if len(rec.created) != 1 || len(rec.updated) != 1 || len(rec.deleted) != 1 {
		t.Fatalf("expected one event each, got %+v", rec)
	}
}

func TestEmptyHooksAreSafe(t *testing.T) {
	hooks := identity.NewHooks()
	hooks.PrincipalUpdated(context.Background(), &identity.Principal{})
}
