package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/gatehouse-dev/gatehouse/pkg/authz"
	"github.com/gatehouse-dev/gatehouse/pkg/identity"
	"github.com/gatehouse-dev/gatehouse/pkg/identity/identitytest"
	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
)

// guardedApp builds a Fiber app whose /secret route is guarded by the given
// handler. When principal is non-nil a fake session middleware places it in
// the request locals first.
func guardedApp(guard fiber.Handler, principal *identity.Principal) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if principal != nil {
			c.Locals(kernel.PrincipalContextKey, principal)
		}
		return c.Next()
	})
	app.Get("/secret", guard, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestMiddlewareStatusMapping(t *testing.T) {
	client := identitytest.NewFakeClient()
	client.SeedGroup("admins")
	p := client.Seed("r@example.com", "hunter22")
	gate := authz.NewGate(client)
	mw := authz.NewMiddleware(gate)

	tests := []struct {
		name       string
		guard      fiber.Handler
		principal  *identity.Principal
		wantStatus int
	}{
		{"anonymous gets 401", mw.RequireAuthenticated(), nil, fiber.StatusUnauthorized},
		{"authenticated passes", mw.RequireAuthenticated(), p, fiber.StatusOK},
		{"missing group gets 403", mw.RequireAllGroups("admins"), p, fiber.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := guardedApp(tc.guard, tc.principal)
			resp, err := app.Test(httptest.NewRequest("GET", "/secret", nil))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("got status %d, want %d", resp.StatusCode, tc.wantStatus)
			}
		})
	}
}

func TestMiddlewareAllowsMember(t *testing.T) {
	client := identitytest.NewFakeClient()
	client.SeedGroup("admins")
	p := client.Seed("r@example.com", "hunter22")
	client.Join(p.ID, "admins")

	mw := authz.NewMiddleware(authz.NewGate(client))
	app := guardedApp(mw.RequireAnyGroup("admins", "developers"), p)

	resp, err := app.Test(httptest.NewRequest("GET", "/secret", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}
}

func TestMiddlewareQueryFailureIs502(t *testing.T) {
	client := identitytest.NewFakeClient()
	client.SeedGroup("admins")
	p := client.Seed("r@example.com", "hunter22")
	client.MembershipErr = identity.ErrProviderUnavailable()

	mw := authz.NewMiddleware(authz.NewGate(client))
	app := guardedApp(mw.RequireAllGroups("admins"), p)

	resp, err := app.Test(httptest.NewRequest("GET", "/secret", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadGateway {
		t.Fatalf("got status %d, want 502", resp.StatusCode)
	}
}

func TestMiddlewareRedirectsBrowsersToLogin(t *testing.T) {
	client := identitytest.NewFakeClient()
	mw := authz.NewMiddleware(authz.NewGate(client), authz.WithLoginRedirect("/login"))
	app := guardedApp(mw.RequireAuthenticated(), nil)

	req := httptest.NewRequest("GET", "/secret?tab=keys", nil)
	req.Header.Set("Accept", "text/html")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("got status %d, want 302", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if loc != "/login?next=%2Fsecret%3Ftab%3Dkeys" {
		t.Fatalf("unexpected redirect target %q", loc)
	}

	// API clients on the same guard still get the JSON 401.
	resp, err = app.Test(httptest.NewRequest("GET", "/secret", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", resp.StatusCode)
	}
}
