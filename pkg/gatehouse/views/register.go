package views

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gatehouse-dev/gatehouse/pkg/audit"
	"github.com/gatehouse-dev/gatehouse/pkg/config"
	"github.com/gatehouse-dev/gatehouse/pkg/errx"
	"github.com/gatehouse-dev/gatehouse/pkg/identity"
)

var viewErrors = errx.NewRegistry("VIEWS")

var (
	CodeMissingField    = viewErrors.Register("MISSING_FIELD", errx.TypeValidation, http.StatusBadRequest, "A required field is missing")
	CodePasswordMissing = viewErrors.Register("PASSWORD_MISSING", errx.TypeValidation, http.StatusBadRequest, "Password is required")
	CodePasswordRepeat  = viewErrors.Register("PASSWORD_REPEAT_MISMATCH", errx.TypeValidation, http.StatusBadRequest, "Passwords do not match")
	CodeMissingToken    = viewErrors.Register("MISSING_TOKEN", errx.TypeValidation, http.StatusBadRequest, "Password reset token is missing")
	CodeMissingCode     = viewErrors.Register("MISSING_CODE", errx.TypeValidation, http.StatusBadRequest, "Federated login credential is missing")
)

func errMissingField(name string) *errx.Error {
	return viewErrors.New(CodeMissingField).WithDetail("field", name)
}

// registerForm is the registration payload, accepted as an HTML form or as
// JSON with the same field names.
type registerForm struct {
	Email      string `form:"email" json:"email"`
	Password   string `form:"password" json:"password"`
	Username   string `form:"username" json:"username"`
	GivenName  string `form:"given_name" json:"given_name"`
	MiddleName string `form:"middle_name" json:"middle_name"`
	Surname    string `form:"surname" json:"surname"`
}

// validate applies the configured field policy: required fields must be
// present, disabled fields are dropped even when submitted.
func (f *registerForm) validate(policy config.FieldPolicyConfig) error {
	f.Email = strings.TrimSpace(f.Email)
	if f.Email == "" {
		return errMissingField("email")
	}
	if f.Password == "" {
		return viewErrors.New(CodePasswordMissing)
	}

	if !policy.EnableUsername {
		f.Username = ""
	} else if policy.RequireUsername && strings.TrimSpace(f.Username) == "" {
		return errMissingField("username")
	}
	if !policy.EnableGivenName {
		f.GivenName = ""
	} else if policy.RequireGivenName && strings.TrimSpace(f.GivenName) == "" {
		return errMissingField("given_name")
	}
	if !policy.EnableMiddleName {
		f.MiddleName = ""
	} else if policy.RequireMiddleName && strings.TrimSpace(f.MiddleName) == "" {
		return errMissingField("middle_name")
	}
	if !policy.EnableSurname {
		f.Surname = ""
	} else if policy.RequireSurname && strings.TrimSpace(f.Surname) == "" {
		return errMissingField("surname")
	}
	return nil
}

// RegisterPage serves the registration view. JSON clients get the form
// contract instead of markup, so SPAs can build their own form.
func (h *Handlers) RegisterPage(c *fiber.Ctx) error {
	fields := h.cfg.Fields
	if wantsJSON(c) {
		return c.JSON(fiber.Map{
			"form": fiber.Map{
				"email":       fiber.Map{"enabled": true, "required": true},
				"password":    fiber.Map{"enabled": true, "required": true},
				"username":    fiber.Map{"enabled": fields.EnableUsername, "required": fields.RequireUsername},
				"given_name":  fiber.Map{"enabled": fields.EnableGivenName, "required": fields.RequireGivenName},
				"middle_name": fiber.Map{"enabled": fields.EnableMiddleName, "required": fields.RequireMiddleName},
				"surname":     fiber.Map{"enabled": fields.EnableSurname, "required": fields.RequireSurname},
			},
		})
	}
	return c.Render(h.cfg.Views.RegistrationTemplate, fiber.Map{"fields": fields})
}

// Register creates the account and logs the new user straight in.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var form registerForm
	if err := c.BodyParser(&form); err != nil {
		return h.respondError(c, h.cfg.Views.RegistrationTemplate,
			errx.Wrap(err, "malformed registration payload", errx.TypeValidation))
	}
	if err := form.validate(h.cfg.Fields); err != nil {
		return h.respondError(c, h.cfg.Views.RegistrationTemplate, err)
	}

	acct := identity.NewAccount{
		Email:      form.Email,
		Password:   form.Password,
		Username:   form.Username,
		GivenName:  form.GivenName,
		MiddleName: form.MiddleName,
		Surname:    form.Surname,
	}
	if h.cfg.Views.VerifyEmail {
		acct.Status = identity.StatusUnverified
	}

	p, err := h.accounts.Create(c.UserContext(), acct)
	if err != nil {
		return h.respondError(c, h.cfg.Views.RegistrationTemplate, err)
	}

	ip, ua := requestInfo(c)
	h.recorder.Record(c.UserContext(), audit.NewEvent(audit.KindRegistered).
		WithAccount(p.ID).
		WithEmail(p.Email).
		WithRequest(ip, ua))

	// Unverified accounts cannot log in yet; the directory service mails
	// the verification link instead of a session starting here.
	if h.cfg.Views.VerifyEmail {
		if wantsJSON(c) {
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{
				"account":               p,
				"verification_required": true,
			})
		}
		return c.Redirect(h.cfg.Views.LoginPath, fiber.StatusFound)
	}

	return h.signIn(c, p, false, c.Query("next"), fiber.StatusCreated)
}
