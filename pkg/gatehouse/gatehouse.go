// Package gatehouse is the plugin's composition root. It wires the identity
// client, session manager, authorization gate and views together and mounts
// them on a Fiber application.
package gatehouse

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gatehouse-dev/gatehouse/pkg/audit"
	"github.com/gatehouse-dev/gatehouse/pkg/authz"
	"github.com/gatehouse-dev/gatehouse/pkg/config"
	"github.com/gatehouse-dev/gatehouse/pkg/gatehouse/views"
	"github.com/gatehouse-dev/gatehouse/pkg/identity"
	"github.com/gatehouse-dev/gatehouse/pkg/identity/identitysrv"
	"github.com/gatehouse-dev/gatehouse/pkg/logx"
	"github.com/gatehouse-dev/gatehouse/pkg/notifx"
	"github.com/gatehouse-dev/gatehouse/pkg/session"
)

// ---------------------------------------------------------------------------
// Deps: explicit external dependencies the plugin requires.
// No hidden globals; everything comes through here.
// ---------------------------------------------------------------------------

type Deps struct {
	Config *config.Config

	// Client talks to the remote directory service.
	Client identity.Client

	// Store persists session records server-side.
	Store session.Store

	// Recorder receives audit events. Nil disables the trail.
	Recorder audit.Recorder

	// Mailer sends welcome and password-changed mail. Optional.
	Mailer *notifx.Mailer

	// Metrics records gate decisions. Optional.
	Metrics *authz.Metrics

	// Observers are extra identity lifecycle observers registered at
	// startup, before any route is served.
	Observers []identity.Observer
}

// ---------------------------------------------------------------------------
// Manager: the public surface of the plugin.
// ---------------------------------------------------------------------------

// Manager owns every moving part of the plugin. Construct it once at
// startup, after config validation, and attach it to the application.
type Manager struct {
	Accounts *identitysrv.AccountService
	Sessions *session.Manager
	Gate     *authz.Gate

	cfg       *config.Config
	hooks     *identity.Hooks
	sessionMW *session.Middleware
	guards    *authz.Middleware
	views     *views.Handlers
	recorder  audit.Recorder
}

// New constructs the plugin dependency graph. The configuration must
// already be validated; New trusts it.
func New(deps Deps) *Manager {
	logx.Info("🔧 Initializing gatehouse plugin...")
	cfg := deps.Config

	recorder := deps.Recorder
	if recorder == nil {
		recorder = audit.Discard
	}

	// ── Identity ─────────────────────────────────────────────────────────

	hooks := identity.NewHooks()
	hooks.Register(audit.NewObserver(recorder))
	if deps.Mailer != nil {
		hooks.Register(deps.Mailer)
		logx.Info("  ✅ Transactional mail enabled")
	}
	for _, obs := range deps.Observers {
		hooks.Register(obs)
	}
	accounts := identitysrv.NewAccountService(deps.Client, hooks)

	// ── Sessions ─────────────────────────────────────────────────────────

	codec := session.NewCodec(cfg.Session.Secret, "gatehouse")
	sessions := session.NewManager(codec, deps.Store, deps.Client, cfg.Session.Duration)
	sessionMW := session.NewMiddleware(sessions, session.CookieConfig{
		Name:   cfg.Session.CookieName,
		Domain: cfg.Session.CookieDomain,
		Secure: cfg.Session.CookieSecure,
	})

	// ── Authorization ────────────────────────────────────────────────────

	gate := authz.NewGate(deps.Client,
		authz.WithDisabled(cfg.Authz.Disabled),
		authz.WithMetrics(deps.Metrics),
	)
	if cfg.Authz.Disabled {
		logx.Warn("  ⚠️  Authorization layer is DISABLED; every gate check allows")
	}
	guards := authz.NewMiddleware(gate, authz.WithLoginRedirect(cfg.Views.LoginPath))

	// ── Views ────────────────────────────────────────────────────────────

	handlers := views.NewHandlers(views.Deps{
		Config:    cfg,
		Accounts:  accounts,
		Sessions:  sessions,
		SessionMW: sessionMW,
		Recorder:  recorder,
		Mailer:    deps.Mailer,
	})

	logx.Info("✅ Gatehouse plugin initialized")
	return &Manager{
		Accounts:  accounts,
		Sessions:  sessions,
		Gate:      gate,
		cfg:       cfg,
		hooks:     hooks,
		sessionMW: sessionMW,
		guards:    guards,
		views:     handlers,
		recorder:  recorder,
	}
}

// Attach mounts the plugin on the application: principal resolution for
// every request, template locals, and the enabled views.
func (m *Manager) Attach(app *fiber.App) {
	app.Use(m.sessionMW.Resolve())
	app.Use(m.templateLocals())

	v := m.cfg.Views
	if v.EnableRegistration {
		app.Get(v.RegistrationPath, m.views.RegisterPage)
		app.Post(v.RegistrationPath, m.views.Register)
	}
	if v.EnableLogin {
		app.Get(v.LoginPath, m.views.LoginPage)
		app.Post(v.LoginPath, m.views.Login)
	}
	if v.EnableLogout {
		app.Get(v.LogoutPath, m.views.Logout)
		app.Post(v.LogoutPath, m.views.Logout)
	}
	if v.EnableForgotPassword {
		app.Get(v.ForgotPath, m.views.ForgotPage)
		app.Post(v.ForgotPath, m.views.Forgot)
		app.Get(v.ForgotChangePath, m.views.ForgotChangePage)
		app.Post(v.ForgotChangePath, m.views.ForgotChange)
	}
	if v.EnableGoogle {
		app.Get(v.GooglePath, m.views.Google)
	}
	if v.EnableFacebook {
		app.Get(v.FacebookPath, m.views.Facebook)
	}
}

// templateLocals exposes the request's principal to templates under "user",
// so every rendered page can show who is logged in without each handler
// passing it through.
func (m *Manager) templateLocals() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if p := authz.PrincipalFromCtx(c); p != nil {
			if err := c.Bind(fiber.Map{"user": p}); err != nil {
				return err
			}
		}
		return c.Next()
	}
}

// RequireAuthenticated guards a route: any logged-in principal passes.
func (m *Manager) RequireAuthenticated() fiber.Handler {
	return m.guards.RequireAuthenticated()
}

// RequireAllGroups guards a route with membership in every named group.
func (m *Manager) RequireAllGroups(names ...string) fiber.Handler {
	return m.guards.RequireAllGroups(names...)
}

// RequireAnyGroup guards a route with membership in at least one named group.
func (m *Manager) RequireAnyGroup(names ...string) fiber.Handler {
	return m.guards.RequireAnyGroup(names...)
}

// RequirePolicy guards a route with an explicit policy.
func (m *Manager) RequirePolicy(policy authz.AccessPolicy) fiber.Handler {
	return m.guards.RequirePolicy(policy)
}
