package views

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gatehouse-dev/gatehouse/pkg/audit"
	"github.com/gatehouse-dev/gatehouse/pkg/identity"
)

// Google handles the OAuth redirect leg of a Google login. The provider
// sends the browser here with an authorization code; the directory service
// exchanges it and provisions the account on first login.
func (h *Handlers) Google(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return h.respondError(c, "", viewErrors.New(CodeMissingCode).WithDetail("provider", "google"))
	}

	p, err := h.accounts.FromGoogle(c.UserContext(), code)
	if err != nil {
		return h.respondError(c, "", err)
	}
	return h.socialSignIn(c, p, identity.ProviderGoogle)
}

// Facebook handles a Facebook login. The client-side SDK obtains the access
// token and passes it along; the directory service does the exchange.
func (h *Handlers) Facebook(c *fiber.Ctx) error {
	token := c.Query("access_token")
	if token == "" {
		return h.respondError(c, "", viewErrors.New(CodeMissingCode).WithDetail("provider", "facebook"))
	}

	p, err := h.accounts.FromFacebook(c.UserContext(), token)
	if err != nil {
		return h.respondError(c, "", err)
	}
	return h.socialSignIn(c, p, identity.ProviderFacebook)
}

func (h *Handlers) socialSignIn(c *fiber.Ctx, p *identity.Principal, provider identity.SocialProvider) error {
	ip, ua := requestInfo(c)
	h.recorder.Record(c.UserContext(), audit.NewEvent(audit.KindSocialLogin).
		WithAccount(p.ID).
		WithEmail(p.Email).
		WithRequest(ip, ua).
		WithDetail("provider", string(provider)))

	return h.signIn(c, p, false, c.Query("next"), fiber.StatusOK)
}
