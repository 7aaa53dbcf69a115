package views

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gatehouse-dev/gatehouse/pkg/audit"
	"github.com/gatehouse-dev/gatehouse/pkg/errx"
	"github.com/gatehouse-dev/gatehouse/pkg/identity"
	"github.com/gatehouse-dev/gatehouse/pkg/logx"
)

// forgotForm is the reset-request payload.
type forgotForm struct {
	Email string `form:"email" json:"email"`
}

// forgotChangeForm is the reset-completion payload. The token comes from
// the emailed link's sptoken query parameter or the form itself.
type forgotChangeForm struct {
	Token           string `form:"sptoken" json:"sptoken"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// ForgotPage serves the reset-request view.
func (h *Handlers) ForgotPage(c *fiber.Ctx) error {
	if wantsJSON(c) {
		return c.JSON(fiber.Map{
			"form": fiber.Map{
				"email": fiber.Map{"enabled": true, "required": true},
			},
		})
	}
	return c.Render(h.cfg.Views.ForgotTemplate, fiber.Map{})
}

// Forgot asks the directory service to mail a reset token. The response is
// identical whether or not the email matches an account, so the endpoint
// cannot be used to enumerate registered addresses.
func (h *Handlers) Forgot(c *fiber.Ctx) error {
	var form forgotForm
	if err := c.BodyParser(&form); err != nil {
		return h.respondError(c, h.cfg.Views.ForgotTemplate,
			errx.Wrap(err, "malformed payload", errx.TypeValidation))
	}
	if form.Email == "" {
		return h.respondError(c, h.cfg.Views.ForgotTemplate, errMissingField("email"))
	}

	err := h.accounts.SendPasswordResetEmail(c.UserContext(), form.Email)
	if err != nil && !identity.IsNotFound(err) {
		if errx.IsType(err, errx.TypeExternal) {
			return h.respondError(c, h.cfg.Views.ForgotTemplate, err)
		}
		h.log.WithError(err).Warn("Password reset request rejected by directory service")
	}

	ip, ua := requestInfo(c)
	h.recorder.Record(c.UserContext(), audit.NewEvent(audit.KindPasswordResetReq).
		WithEmail(form.Email).
		WithRequest(ip, ua))

	if wantsJSON(c) {
		return c.JSON(fiber.Map{"status": "sent"})
	}
	return c.Render(h.cfg.Views.ForgotTemplate, fiber.Map{"sent": true})
}

// ForgotChangePage verifies the emailed token and serves the new-password
// view. A bad or expired token fails here, before the user types anything.
func (h *Handlers) ForgotChangePage(c *fiber.Ctx) error {
	token := c.Query("sptoken")
	if token == "" {
		return h.respondError(c, h.cfg.Views.ForgotTemplate, viewErrors.New(CodeMissingToken))
	}

	if _, err := h.accounts.VerifyResetToken(c.UserContext(), token); err != nil {
		return h.respondError(c, h.cfg.Views.ForgotTemplate, err)
	}

	if wantsJSON(c) {
		return c.JSON(fiber.Map{"status": "valid"})
	}
	return c.Render(h.cfg.Views.ForgotChangeTemplate, fiber.Map{"sptoken": token})
}

// ForgotChange consumes the reset token, sets the new password and logs the
// user in with their fresh credentials.
func (h *Handlers) ForgotChange(c *fiber.Ctx) error {
	var form forgotChangeForm
	if err := c.BodyParser(&form); err != nil {
		return h.respondError(c, h.cfg.Views.ForgotChangeTemplate,
			errx.Wrap(err, "malformed payload", errx.TypeValidation))
	}
	if form.Token == "" {
		form.Token = c.Query("sptoken")
	}
	if form.Token == "" {
		return h.respondError(c, h.cfg.Views.ForgotChangeTemplate, viewErrors.New(CodeMissingToken))
	}
	if form.Password == "" {
		return h.respondError(c, h.cfg.Views.ForgotChangeTemplate, viewErrors.New(CodePasswordMissing))
	}
	if form.ConfirmPassword != "" && form.ConfirmPassword != form.Password {
		return h.respondError(c, h.cfg.Views.ForgotChangeTemplate, viewErrors.New(CodePasswordRepeat))
	}

	p, err := h.accounts.ResetPassword(c.UserContext(), form.Token, form.Password)
	if err != nil {
		return h.respondError(c, h.cfg.Views.ForgotChangeTemplate, err)
	}

	if h.mailer != nil {
		h.mailer.SendPasswordChanged(c.UserContext(), p)
	}

	ip, ua := requestInfo(c)
	h.recorder.Record(c.UserContext(), audit.NewEvent(audit.KindPasswordChanged).
		WithAccount(p.ID).
		WithEmail(p.Email).
		WithRequest(ip, ua))
	h.log.WithFields(logx.Fields{"account": p.ID.String()}).Info("Password changed via reset token")

	return h.signIn(c, p, false, "", fiber.StatusOK)
}
