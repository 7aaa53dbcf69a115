package authz_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gatehouse-dev/gatehouse/pkg/authz"
	"github.com/gatehouse-dev/gatehouse/pkg/identity"
	"github.com/gatehouse-dev/gatehouse/pkg/identity/identitytest"
)

func seededGate(t *testing.T) (*authz.Gate, *identitytest.FakeClient, *identity.Principal) {
	t.Helper()
	client := identitytest.NewFakeClient()
	client.SeedGroup("admins")
	client.SeedGroup("developers")
	p := client.Seed("r@example.com", "hunter22")
	return authz.NewGate(client), client, p
}

func TestAllModeRequiresEveryGroup(t *testing.T) {
	gate, client, p := seededGate(t)
	ctx := context.Background()
	policy := authz.AllOf(authz.Refs("admins", "developers")...)

	client.Join(p.ID, "admins")
	d := gate.Evaluate(ctx, p, policy)
	if d.Allowed || d.Reason != authz.DenyInsufficientGroups {
		t.Fatalf("member of one of two groups under ALL: got %+v", d)
	}

	client.Join(p.ID, "developers")
	d = gate.Evaluate(ctx, p, policy)
	if !d.Allowed {
		t.Fatalf("member of both groups under ALL: got %+v", d)
	}
}

func TestAnyModeRequiresOneGroup(t *testing.T) {
	gate, client, p := seededGate(t)
	ctx := context.Background()
	policy := authz.AnyOf(authz.Refs("admins", "developers")...)

	d := gate.Evaluate(ctx, p, policy)
	if d.Allowed || d.Reason != authz.DenyInsufficientGroups {
		t.Fatalf("member of no groups under ANY: got %+v", d)
	}

	client.Join(p.ID, "admins")
	d = gate.Evaluate(ctx, p, policy)
	if !d.Allowed {
		t.Fatalf("member of one group under ANY: got %+v", d)
	}
}

func TestNilPrincipalIsUnauthenticated(t *testing.T) {
	gate, _, _ := seededGate(t)
	ctx := context.Background()

	for _, policy := range []authz.AccessPolicy{
		authz.AllOf(authz.Refs("admins")...),
		authz.AnyOf(authz.Refs("admins", "developers")...),
		{Mode: authz.ModeAll},
	} {
		d := gate.Evaluate(ctx, nil, policy)
		if d.Allowed || d.Reason != authz.DenyUnauthenticated {
			t.Fatalf("nil principal with %v: got %+v", policy, d)
		}
	}
}

func TestDisabledGateAllowsEverything(t *testing.T) {
	client := identitytest.NewFakeClient()
	gate := authz.NewGate(client, authz.WithDisabled(true))
	ctx := context.Background()

	// No principal and a policy over groups that do not even exist.
	d := gate.Evaluate(ctx, nil, authz.AllOf(authz.Refs("admins", "missing")...))
	if !d.Allowed {
		t.Fatalf("disabled gate denied: %+v", d)
	}
}

func TestEmptyPolicyIsSatisfiedByAnyPrincipal(t *testing.T) {
	gate, _, p := seededGate(t)

	d := gate.Evaluate(context.Background(), p, authz.AccessPolicy{Mode: authz.ModeAny})
	if !d.Allowed {
		t.Fatalf("empty policy denied a present principal: %+v", d)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	gate, client, p := seededGate(t)
	ctx := context.Background()
	client.Join(p.ID, "admins")
	policy := authz.AllOf(authz.Refs("admins", "developers")...)

	first := gate.Evaluate(ctx, p, policy)
	for i := 0; i < 10; i++ {
		again := gate.Evaluate(ctx, p, policy)
		if again.Allowed != first.Allowed || again.Reason != first.Reason {
			t.Fatalf("evaluation %d diverged: %+v vs %+v", i, again, first)
		}
	}
}

func TestMembershipChangeFlipsDecision(t *testing.T) {
	gate, client, p := seededGate(t)
	ctx := context.Background()
	client.Join(p.ID, "admins")
	policy := authz.AllOf(authz.Refs("admins", "developers")...)

	if d := gate.Evaluate(ctx, p, policy); d.Allowed {
		t.Fatalf("expected deny before joining developers: %+v", d)
	}

	// Membership is queried remotely on every call, so the change is
	// visible on the very next evaluation.
	client.Join(p.ID, "developers")
	if d := gate.Evaluate(ctx, p, policy); !d.Allowed {
		t.Fatalf("expected allow after joining developers: %+v", d)
	}

	client.Leave(p.ID, "developers")
	if d := gate.Evaluate(ctx, p, policy); d.Allowed {
		t.Fatalf("expected deny after leaving developers: %+v", d)
	}
}

func TestQueryFailureIsNeverASilentAllow(t *testing.T) {
	gate, client, p := seededGate(t)
	ctx := context.Background()
	client.Join(p.ID, "admins")
	client.MembershipErr = errors.New("directory unreachable")

	for _, policy := range []authz.AccessPolicy{
		authz.AllOf(authz.Refs("admins")...),
		authz.AnyOf(authz.Refs("admins", "developers")...),
	} {
		d := gate.Evaluate(ctx, p, policy)
		if d.Allowed {
			t.Fatalf("query failure allowed under %s", policy.Mode)
		}
		if d.Reason != authz.DenyMembershipQueryFailed {
			t.Fatalf("expected query-failed reason, got %+v", d)
		}
		if d.Cause == nil {
			t.Fatal("expected the remote error to be preserved")
		}
	}
}

func TestUnknownGroupIsACleanNo(t *testing.T) {
	gate, client, p := seededGate(t)
	ctx := context.Background()
	client.Join(p.ID, "admins")

	// A policy naming a group that does not exist denies with
	// InsufficientGroups, not with a query failure.
	d := gate.Evaluate(ctx, p, authz.AllOf(authz.Refs("admins", "ghosts")...))
	if d.Allowed || d.Reason != authz.DenyInsufficientGroups {
		t.Fatalf("unknown group under ALL: got %+v", d)
	}

	d = gate.Evaluate(ctx, p, authz.AnyOf(authz.Refs("ghosts", "admins")...))
	if !d.Allowed {
		t.Fatalf("unknown group under ANY with one real membership: got %+v", d)
	}
}

func TestDecisionErrMapping(t *testing.T) {
	if err := authz.Allow().Err(); err != nil {
		t.Fatalf("allow mapped to error: %v", err)
	}

	cases := []struct {
		reason authz.DenyReason
		code   string
	}{
		{authz.DenyUnauthenticated, "AUTHZ_UNAUTHENTICATED"},
		{authz.DenyInsufficientGroups, "AUTHZ_INSUFFICIENT_GROUPS"},
		{authz.DenyMembershipQueryFailed, "AUTHZ_MEMBERSHIP_QUERY_FAILED"},
	}
	for _, tc := range cases {
		err := authz.Deny(tc.reason).Err()
		if err == nil || !strings.Contains(err.Error(), tc.code) {
			t.Fatalf("reason %s: expected code %s, got %v", tc.reason, tc.code, err)
		}
	}
}
