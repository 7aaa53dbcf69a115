package identity

import "context"

// Observer receives notifications after successful remote account mutations.
// Observers are registered once at startup and invoked synchronously, in
// registration order, after the directory service has confirmed the change.
type Observer interface {
	OnPrincipalCreated(ctx context.Context, p *Principal)
	OnPrincipalUpdated(ctx context.Context, p *Principal)
	OnPrincipalDeleted(ctx context.Context, p *Principal)
}

// Hooks dispatches mutation events to registered observers. The zero value
// is usable. Registration happens during composition, before the app serves
// traffic, so dispatch needs no locking.
type Hooks struct {
	observers []Observer
}

// NewHooks creates an empty observer registry.
func NewHooks() *Hooks {
	return &Hooks{}
}

// Register adds an observer. Must be called before the app starts serving.
func (h *Hooks) Register(obs Observer) {
	h.observers = append(h.observers, obs)
}

// PrincipalCreated notifies all observers of a confirmed account creation.
func (h *Hooks) PrincipalCreated(ctx context.Context, p *Principal) {
	for _, obs := range h.observers {
		obs.OnPrincipalCreated(ctx, p)
	}
}

// PrincipalUpdated notifies all observers of a confirmed account update.
func (h *Hooks) PrincipalUpdated(ctx context.Context, p *Principal) {
	for _, obs := range h.observers {
		obs.OnPrincipalUpdated(ctx, p)
	}
}

// PrincipalDeleted notifies all observers of a confirmed account deletion.
// The principal is the last snapshot fetched before the delete.
func (h *Hooks) PrincipalDeleted(ctx context.Context, p *Principal) {
	for _, obs := range h.observers {
		obs.OnPrincipalDeleted(ctx, p)
	}
}

// ObserverFuncs adapts plain functions to the Observer interface. Nil
// functions are skipped.
type ObserverFuncs struct {
	Created func(ctx context.Context, p *Principal)
	Updated func(ctx context.Context, p *Principal)
	Deleted func(ctx context.Context, p *Principal)
}

func (o ObserverFuncs) OnPrincipalCreated(ctx context.Context, p *Principal) {
	if o.Created != nil {
		o.Created(ctx, p)
	}
}

func (o ObserverFuncs) OnPrincipalUpdated(ctx context.Context, p *Principal) {
	if o.Updated != nil {
		o.Updated(ctx, p)
	}
}

func (o ObserverFuncs) OnPrincipalDeleted(ctx context.Context, p *Principal) {
	if o.Deleted != nil {
		o.Deleted(ctx, p)
	}
}
