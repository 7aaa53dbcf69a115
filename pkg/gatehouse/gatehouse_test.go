package gatehouse_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gatehouse-dev/gatehouse/pkg/config"
	"github.com/gatehouse-dev/gatehouse/pkg/gatehouse"
	"github.com/gatehouse-dev/gatehouse/pkg/identity/identitytest"
	"github.com/gatehouse-dev/gatehouse/pkg/session/sessiontest"
)

func testConfig() *config.Config {
	return &config.Config{
		Views: config.ViewConfig{
			EnableLogin:   true,
			LoginPath:     "/login",
			LoginTemplate: "login",
			EnableLogout:  true,
			LogoutPath:    "/logout",
			RedirectURL:   "/",
		},
		Fields: config.FieldPolicyConfig{
			EnableGivenName: true,
			EnableSurname:   true,
		},
		Session: config.SessionConfig{
			CookieName: "gatehouse_token",
			Duration:   time.Hour,
			Secret:     "manager-test-secret",
		},
	}
}

func newPlugin(t *testing.T) (*gatehouse.Manager, *identitytest.FakeClient, *fiber.App) {
	t.Helper()

	client := identitytest.NewFakeClient()
	m := gatehouse.New(gatehouse.Deps{
		Config: testConfig(),
		Client: client,
		Store:  sessiontest.NewMemStore(),
	})

	app := fiber.New()
	m.Attach(app)
	return m, client, app
}

func loginCookie(t *testing.T, app *fiber.App, login, password string) *http.Cookie {
	t.Helper()

	body := strings.NewReader(`{"login":"` + login + `","password":"` + password + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("login status = %d, body %s", resp.StatusCode, raw)
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == "gatehouse_token" {
			return ck
		}
	}
	t.Fatal("login response has no session cookie")
	return nil
}

func TestAttachRegistersOnlyEnabledViews(t *testing.T) {
	_, _, app := newPlugin(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.Header.Set("Accept", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /login = %d, want 200", resp.StatusCode)
	}

	var body map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode login form: %v", err)
	}
	if _, ok := body["form"]; !ok {
		t.Fatalf("login view body = %s, want form contract", raw)
	}

	// Registration was not enabled, so the route must not exist.
	req = httptest.NewRequest(http.MethodPost, "/register", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("POST /register = %d, want 404", resp.StatusCode)
	}
}

func TestGuardedRouteEndToEnd(t *testing.T) {
	m, client, app := newPlugin(t)
	app.Get("/admin", m.RequireAllGroups("admins"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	admin := client.Seed("admin@example.com", "pw")
	client.Join(admin.ID, "admins")
	client.Seed("pleb@example.com", "pw")

	// Anonymous API client.
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Accept", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous = %d, want 401", resp.StatusCode)
	}

	// Anonymous browser gets bounced to the login view.
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Accept", "text/html")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("anonymous browser = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, "/login?next=") {
		t.Fatalf("Location = %q, want login redirect", loc)
	}

	// Group member passes.
	ck := loginCookie(t, app, "admin@example.com", "pw")
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(ck)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("member = %d, want 200", resp.StatusCode)
	}

	// Authenticated non-member is forbidden.
	ck = loginCookie(t, app, "pleb@example.com", "pw")
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(ck)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-member = %d, want 403", resp.StatusCode)
	}
}

func TestLogoutAfterAttach(t *testing.T) {
	m, client, app := newPlugin(t)
	client.Seed("r@example.com", "pw")
	ck := loginCookie(t, app, "r@example.com", "pw")

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(ck)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout = %d, want 204", resp.StatusCode)
	}

	p, _, err := m.Sessions.Resolve(context.Background(), ck.Value)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p != nil {
		t.Fatal("session still resolves after logout")
	}
}
