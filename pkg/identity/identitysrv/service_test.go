package identitysrv_test

import (
	"context"
	"strings"
	"testing"

	"github.com/gatehouse-dev/gatehouse/pkg/errx"
	"github.com/gatehouse-dev/gatehouse/pkg/identity"
	"github.com/gatehouse-dev/gatehouse/pkg/identity/identitysrv"
	"github.com/gatehouse-dev/gatehouse/pkg/identity/identitytest"
)

type hookCounter struct {
	created, updated, deleted int
}

func (h *hookCounter) OnPrincipalCreated(context.Context, *identity.Principal) { h.created++ }
func (h *hookCounter) OnPrincipalUpdated(context.Context, *identity.Principal) { h.updated++ }
func (h *hookCounter) OnPrincipalDeleted(context.Context, *identity.Principal) { h.deleted++ }

func newService() (*identitysrv.AccountService, *identitytest.FakeClient, *hookCounter) {
	client := identitytest.NewFakeClient()
	counter := &hookCounter{}
	hooks := identity.NewHooks()
	hooks.Register(counter)
	return identitysrv.NewAccountService(client, hooks), client, counter
}

func TestCreateDefaultsNamesAndFiresHook(t *testing.T) {
	svc, _, counter := newService()

	p, err := svc.Create(context.Background(), identity.NewAccount{
		Email:    "r@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if p.GivenName != "Anonymous" || p.Surname != "Anonymous" {
		t.Fatalf("expected anonymous name defaults, got %q %q", p.GivenName, p.Surname)
	}
	if p.Status != identity.StatusEnabled {
		t.Fatalf("expected ENABLED default, got %s", p.Status)
	}
	if counter.created != 1 {
		t.Fatalf("expected 1 created hook, got %d", counter.created)
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc, client, counter := newService()
	client.Seed("r@example.com", "pw")

	_, err := svc.Create(context.Background(), identity.NewAccount{
		Email:    "r@example.com",
		Password: "pw2",
	})
	if !errx.IsType(err, errx.TypeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if counter.created != 0 {
		t.Fatal("no hook should fire on failed create")
	}
}

func TestCreateRejectsOversizedCustomData(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.Create(context.Background(), identity.NewAccount{
		Email:      "big@example.com",
		Password:   "pw",
		CustomData: map[string]any{"blob": strings.Repeat("x", identity.MaxCustomDataBytes)},
	})
	if !errx.IsType(err, errx.TypeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFromLogin(t *testing.T) {
	svc, client, _ := newService()
	seeded := client.Seed("r@example.com", "hunter22")

	p, err := svc.FromLogin(context.Background(), "r@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if p.ID != seeded.ID {
		t.Fatalf("wrong account: %s", p.ID)
	}

	if _, err := svc.FromLogin(context.Background(), "r@example.com", "wrong"); !errx.IsType(err, errx.TypeAuthorization) {
		t.Fatalf("expected authorization error for bad password, got %v", err)
	}
}

func TestFromGoogleFiresCreatedHookOnce(t *testing.T) {
	svc, _, counter := newService()
	ctx := context.Background()

	first, err := svc.FromGoogle(ctx, "code-123")
	if err != nil {
		t.Fatalf("google login failed: %v", err)
	}
	second, err := svc.FromGoogle(ctx, "code-123")
	if err != nil {
		t.Fatalf("repeat google login failed: %v", err)
	}

	if first.ID != second.ID {
		t.Fatal("repeat exchange should resolve the same account")
	}
	if counter.created != 1 {
		t.Fatalf("created hook should fire only on provisioning, got %d", counter.created)
	}
}

func TestSaveAndDeleteFireHooks(t *testing.T) {
	svc, client, counter := newService()
	p := client.Seed("r@example.com", "pw")

	p.GivenName = "Randall"
	updated, err := svc.Save(context.Background(), p)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if updated.GivenName != "Randall" {
		t.Fatalf("update not applied: %+v", updated)
	}
	if counter.updated != 1 {
		t.Fatalf("expected 1 updated hook, got %d", counter.updated)
	}

	if err := svc.Delete(context.Background(), updated); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if counter.deleted != 1 {
		t.Fatalf("expected 1 deleted hook, got %d", counter.deleted)
	}
}

func TestResetPasswordFlow(t *testing.T) {
	svc, client, counter := newService()
	p := client.Seed("r@example.com", "old-pw")
	client.SeedResetToken("tok-1", p.ID)

	if err := svc.SendPasswordResetEmail(context.Background(), "r@example.com"); err != nil {
		t.Fatalf("reset email failed: %v", err)
	}

	got, err := svc.VerifyResetToken(context.Background(), "tok-1")
	if err != nil || got.ID != p.ID {
		t.Fatalf("verify failed: %v", err)
	}

	if _, err := svc.ResetPassword(context.Background(), "tok-1", "new-pw"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if counter.updated != 1 {
		t.Fatalf("expected updated hook after reset, got %d", counter.updated)
	}

	// Token is single-use.
	if _, err := svc.ResetPassword(context.Background(), "tok-1", "again"); !errx.IsType(err, errx.TypeValidation) {
		t.Fatalf("expected invalid token on reuse, got %v", err)
	}

	// New password works.
	if _, err := svc.FromLogin(context.Background(), "r@example.com", "new-pw"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}
