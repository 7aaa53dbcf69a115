// Package views implements the plugin's built-in HTTP views: registration,
// login, logout, password reset and federated login. Every handler serves
// both browsers (forms and redirects) and API clients (JSON), switching on
// the Accept header.
package views

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gatehouse-dev/gatehouse/pkg/audit"
	"github.com/gatehouse-dev/gatehouse/pkg/config"
	"github.com/gatehouse-dev/gatehouse/pkg/errx"
	"github.com/gatehouse-dev/gatehouse/pkg/identity"
	"github.com/gatehouse-dev/gatehouse/pkg/identity/identitysrv"
	"github.com/gatehouse-dev/gatehouse/pkg/logx"
	"github.com/gatehouse-dev/gatehouse/pkg/notifx"
	"github.com/gatehouse-dev/gatehouse/pkg/session"
)

// Deps are the collaborators the view handlers need.
type Deps struct {
	Config    *config.Config
	Accounts  *identitysrv.AccountService
	Sessions  *session.Manager
	SessionMW *session.Middleware
	Recorder  audit.Recorder
	Mailer    *notifx.Mailer
	Logger    *logx.Logger
}

// Handlers holds the built-in view handlers.
type Handlers struct {
	cfg       *config.Config
	accounts  *identitysrv.AccountService
	sessions  *session.Manager
	sessionMW *session.Middleware
	recorder  audit.Recorder
	mailer    *notifx.Mailer
	log       *logx.Logger
}

// NewHandlers creates the view handlers.
func NewHandlers(deps Deps) *Handlers {
	recorder := deps.Recorder
	if recorder == nil {
		recorder = audit.Discard
	}
	log := deps.Logger
	if log == nil {
		log = logx.GetDefaultLogger()
	}
	return &Handlers{
		cfg:       deps.Config,
		accounts:  deps.Accounts,
		sessions:  deps.Sessions,
		sessionMW: deps.SessionMW,
		recorder:  recorder,
		mailer:    deps.Mailer,
		log:       log,
	}
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(c *fiber.Ctx) bool {
	if strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON) {
		return true
	}
	return strings.Contains(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
}

// safeNext validates a post-login destination taken from the request.
// Only same-site absolute paths pass; anything else falls back, so the
// login flow can never be used as an open redirect.
func safeNext(raw, fallback string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return fallback
	}
	if strings.ContainsAny(raw, "\r\n") {
		return fallback
	}
	return raw
}

// requestInfo extracts the client address and agent for the audit trail.
func requestInfo(c *fiber.Ctx) (ip, userAgent string) {
	return c.IP(), c.Get(fiber.HeaderUserAgent)
}

// respondError translates a handler failure into an HTTP response. JSON
// clients get the structured error; browsers get the view re-rendered with
// the message in scope.
func (h *Handlers) respondError(c *fiber.Ctx, template string, err error) error {
	gateErr, ok := err.(*errx.Error)
	if !ok {
		gateErr = errx.Wrap(err, "request failed", errx.TypeInternal)
	}

	if wantsJSON(c) || template == "" {
		return c.Status(gateErr.HTTPStatus).JSON(fiber.Map{
			"error": gateErr.Message,
			"code":  gateErr.Code,
		})
	}
	return c.Status(gateErr.HTTPStatus).Render(template, fiber.Map{
		"error": gateErr.Message,
	})
}

// signIn issues a session for the principal, writes the cookie, and sends
// the post-login response.
func (h *Handlers) signIn(c *fiber.Ctx, p *identity.Principal, remember bool, next string, status int) error {
	sess, token, err := h.sessions.Issue(c.UserContext(), p, remember)
	if err != nil {
		return h.respondError(c, "", err)
	}
	h.sessionMW.WriteCookie(c, token, sess)

	if wantsJSON(c) {
		return c.Status(status).JSON(fiber.Map{"account": p})
	}
	return c.Redirect(safeNext(next, h.cfg.Views.RedirectURL), fiber.StatusFound)
}
