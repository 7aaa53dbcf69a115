package views

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gatehouse-dev/gatehouse/pkg/audit"
	"github.com/gatehouse-dev/gatehouse/pkg/authz"
	"github.com/gatehouse-dev/gatehouse/pkg/errx"
)

// loginForm is the login payload, accepted as an HTML form or as JSON.
// Login accepts either the email or the username.
type loginForm struct {
	Login    string `form:"login" json:"login"`
	Password string `form:"password" json:"password"`
	Remember bool   `form:"remember" json:"remember"`
}

// LoginPage serves the login view.
func (h *Handlers) LoginPage(c *fiber.Ctx) error {
	if wantsJSON(c) {
		return c.JSON(fiber.Map{
			"form": fiber.Map{
				"login":    fiber.Map{"enabled": true, "required": true},
				"password": fiber.Map{"enabled": true, "required": true},
				"remember": fiber.Map{"enabled": true, "required": false},
			},
		})
	}
	return c.Render(h.cfg.Views.LoginTemplate, fiber.Map{
		"next": safeNext(c.Query("next"), ""),
	})
}

// Login authenticates against the directory service and starts a session.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var form loginForm
	if err := c.BodyParser(&form); err != nil {
		return h.respondError(c, h.cfg.Views.LoginTemplate,
			errx.Wrap(err, "malformed login payload", errx.TypeValidation))
	}
	if form.Login == "" {
		return h.respondError(c, h.cfg.Views.LoginTemplate, errMissingField("login"))
	}
	if form.Password == "" {
		return h.respondError(c, h.cfg.Views.LoginTemplate, viewErrors.New(CodePasswordMissing))
	}

	ip, ua := requestInfo(c)
	p, err := h.accounts.FromLogin(c.UserContext(), form.Login, form.Password)
	if err != nil {
		h.recorder.Record(c.UserContext(), audit.NewEvent(audit.KindLoginFailed).
			WithEmail(form.Login).
			WithRequest(ip, ua))
		return h.respondError(c, h.cfg.Views.LoginTemplate, err)
	}

	h.recorder.Record(c.UserContext(), audit.NewEvent(audit.KindLogin).
		WithAccount(p.ID).
		WithEmail(p.Email).
		WithRequest(ip, ua))

	return h.signIn(c, p, form.Remember, c.Query("next"), fiber.StatusOK)
}

// Logout revokes the session server-side and clears the cookie. Anonymous
// requests are a no-op and still land on the redirect target.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	cookie := c.Cookies(h.sessionMW.CookieName())
	if cookie != "" {
		if err := h.sessions.Destroy(c.UserContext(), cookie); err != nil {
			return h.respondError(c, "", err)
		}
	}
	h.sessionMW.ClearCookie(c)

	if p := authz.PrincipalFromCtx(c); p != nil {
		ip, ua := requestInfo(c)
		h.recorder.Record(c.UserContext(), audit.NewEvent(audit.KindLogout).
			WithAccount(p.ID).
			WithEmail(p.Email).
			WithRequest(ip, ua))
	}

	if wantsJSON(c) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Redirect(h.cfg.Views.RedirectURL, fiber.StatusFound)
}
