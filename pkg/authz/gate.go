package authz

import (
	"context"
	"time"

	"github.com/gatehouse-dev/gatehouse/pkg/asyncx"
	"github.com/gatehouse-dev/gatehouse/pkg/identity"
	"github.com/gatehouse-dev/gatehouse/pkg/logx"
)

// Gate decides whether a request may proceed to a protected operation.
// It is stateless across evaluations: membership is queried remotely on
// every call and never cached, so a group change on the directory service
// takes effect on the very next request.
type Gate struct {
	groups   identity.GroupAPI
	disabled bool
	metrics  *Metrics
	log      *logx.Logger
}

// GateOption configures a Gate at construction.
type GateOption func(*Gate)

// WithDisabled turns the whole authorization layer off. Every evaluation
// returns Allow. This is an operational override for maintenance windows
// and test harnesses; it is fixed for the process lifetime.
func WithDisabled(disabled bool) GateOption {
	return func(g *Gate) { g.disabled = disabled }
}

// WithMetrics records decisions on the given collector.
func WithMetrics(m *Metrics) GateOption {
	return func(g *Gate) { g.metrics = m }
}

// WithLogger sets the logger used for membership query failures.
func WithLogger(log *logx.Logger) GateOption {
	return func(g *Gate) { g.log = log }
}

// NewGate creates a gate backed by the given membership collaborator.
func NewGate(groups identity.GroupAPI, opts ...GateOption) *Gate {
	g := &Gate{
		groups: groups,
		log:    logx.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate runs the two-stage check: is a principal present, and does it
// satisfy the policy's group requirement. Group queries run concurrently,
// one per listed group, short-circuiting as soon as the mode's outcome is
// definitive. Identical inputs against unchanged remote state always yield
// the same decision.
func (g *Gate) Evaluate(ctx context.Context, principal *identity.Principal, policy AccessPolicy) Decision {
	start := time.Now()
	decision := g.evaluate(ctx, principal, policy)
	g.metrics.ObserveDecision(decision, time.Since(start))
	return decision
}

func (g *Gate) evaluate(ctx context.Context, principal *identity.Principal, policy AccessPolicy) Decision {
	if g.disabled {
		return Allow()
	}
	if principal == nil {
		return Deny(DenyUnauthenticated)
	}
	// An empty policy is trivially satisfied in either mode.
	if len(policy.Groups) == 0 {
		return Allow()
	}

	preds := make([]func(context.Context) (bool, error), len(policy.Groups))
	for i, ref := range policy.Groups {
		ref := ref
		preds[i] = func(ctx context.Context) (bool, error) {
			return g.groups.IsMemberOf(ctx, principal.ID, ref)
		}
	}

	var member bool
	var err error
	switch policy.Mode {
	case ModeAny:
		member, err = asyncx.Some(ctx, preds...)
	default:
		member, err = asyncx.Every(ctx, preds...)
	}

	if err != nil {
		// A failed query is never a silent allow.
		g.log.WithError(err).WithFields(logx.Fields{
			"principal": principal.ID.String(),
			"mode":      string(policy.Mode),
		}).Error("group membership query failed")
		return QueryFailed(err)
	}
	if !member {
		return Deny(DenyInsufficientGroups)
	}
	return Allow()
}
