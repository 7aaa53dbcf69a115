package session

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
)

// CookieConfig describes how the session cookie is written.
type CookieConfig struct {
	Name   string
	Domain string
	Secure bool
}

// Middleware resolves the session cookie on every request and parks the
// principal in the request locals for the handlers and guards downstream.
type Middleware struct {
	manager *Manager
	cookie  CookieConfig
}

// NewMiddleware creates the principal resolution middleware.
func NewMiddleware(manager *Manager, cookie CookieConfig) *Middleware {
	if cookie.Name == "" {
		cookie.Name = "gatehouse_token"
	}
	return &Middleware{manager: manager, cookie: cookie}
}

// Resolve is the request middleware. Anonymous requests pass through with
// no principal set; only a failing session store or directory service stops
// the request.
func (m *Middleware) Resolve() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, sess, err := m.manager.Resolve(c.UserContext(), c.Cookies(m.cookie.Name))
		if err != nil {
			return err
		}
		if principal != nil {
			c.Locals(kernel.PrincipalContextKey, principal)
			c.Locals(kernel.SessionContextKey, sess)
		}
		return c.Next()
	}
}

// WriteCookie sets the session cookie on the response. Sessions without the
// remember flag get a browser-lifetime cookie; remembered ones persist for
// the session window.
func (m *Middleware) WriteCookie(c *fiber.Ctx, token string, sess *Session) {
	cookie := &fiber.Cookie{
		Name:     m.cookie.Name,
		Value:    token,
		Domain:   m.cookie.Domain,
		Path:     "/",
		Secure:   m.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if sess.Remember {
		cookie.Expires = sess.ExpiresAt
	}
	c.Cookie(cookie)
}

// ClearCookie expires the session cookie on the response.
func (m *Middleware) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     m.cookie.Name,
		Value:    "",
		Domain:   m.cookie.Domain,
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})
}

// CookieName returns the configured cookie name.
func (m *Middleware) CookieName() string { return m.cookie.Name }

// FromCtx returns the session resolved for this request, or nil.
func FromCtx(c *fiber.Ctx) *Session {
	s, _ := c.Locals(kernel.SessionContextKey).(*Session)
	return s
}
