package authz

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gatehouse-dev/gatehouse/pkg/errx"
	"github.com/gatehouse-dev/gatehouse/pkg/identity"
	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
)

// Middleware guards Fiber routes with gate evaluations. The principal is
// expected in the request locals, placed there by the session resolution
// middleware earlier in the chain.
type Middleware struct {
	gate      *Gate
	loginPath string
}

// MiddlewareOption configures the guard middleware.
type MiddlewareOption func(*Middleware)

// WithLoginRedirect makes unauthenticated browser requests redirect to the
// login page with the original URL in the "next" query parameter, instead
// of receiving a bare 401. API clients still get the JSON error.
func WithLoginRedirect(loginPath string) MiddlewareOption {
	return func(m *Middleware) { m.loginPath = loginPath }
}

// NewMiddleware creates route guards backed by the given gate.
func NewMiddleware(gate *Gate, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{gate: gate}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PrincipalFromCtx returns the principal resolved for this request, or nil
// when the request is anonymous.
func PrincipalFromCtx(c *fiber.Ctx) *identity.Principal {
	p, _ := c.Locals(kernel.PrincipalContextKey).(*identity.Principal)
	return p
}

// RequireAuthenticated guards a route with an empty policy: any resolved
// principal passes, anonymous requests are refused.
func (m *Middleware) RequireAuthenticated() fiber.Handler {
	return m.RequirePolicy(AccessPolicy{Mode: ModeAll})
}

// RequireAllGroups guards a route with an ALL policy over the given groups.
func (m *Middleware) RequireAllGroups(names ...string) fiber.Handler {
	return m.RequirePolicy(AllOf(Refs(names...)...))
}

// RequireAnyGroup guards a route with an ANY policy over the given groups.
func (m *Middleware) RequireAnyGroup(names ...string) fiber.Handler {
	return m.RequirePolicy(AnyOf(Refs(names...)...))
}

// RequirePolicy evaluates the policy against the request's principal and
// either passes control to the next handler or terminates the request with
// the decision's status.
func (m *Middleware) RequirePolicy(policy AccessPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := m.gate.Evaluate(c.UserContext(), PrincipalFromCtx(c), policy)
		if decision.Allowed {
			return c.Next()
		}
		return m.deny(c, decision)
	}
}

func (m *Middleware) deny(c *fiber.Ctx, decision Decision) error {
	if decision.Reason == DenyUnauthenticated && m.loginPath != "" && wantsHTML(c) {
		next := url.QueryEscape(c.OriginalURL())
		return c.Redirect(m.loginPath+"?next="+next, fiber.StatusFound)
	}

	gateErr, _ := decision.Err().(*errx.Error)
	return c.Status(gateErr.HTTPStatus).JSON(fiber.Map{
		"error": gateErr.Message,
		"code":  gateErr.Code,
	})
}

func wantsHTML(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), "text/html")
}
