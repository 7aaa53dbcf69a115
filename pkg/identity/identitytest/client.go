// Package identitytest provides an in-memory fake of the directory-service
// client for tests. It mimics the remote semantics the plugin depends on:
// opaque account refs, login by email or username, group membership, and
// not-found vs failure distinction.
package identitytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/gatehouse-dev/gatehouse/pkg/identity"
	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
)

// FakeClient is an in-memory identity.Client.
type FakeClient struct {
	mu sync.Mutex

	accounts    map[kernel.AccountID]*identity.Principal
	passwords   map[kernel.AccountID]string
	groups      map[string]identity.Group
	memberships map[kernel.AccountID]map[string]bool
	resetTokens map[string]kernel.AccountID

	nextID int

	// Err, when set, is returned by every call. Use it to simulate a
	// directory outage.
	Err error

	// MembershipErr, when set, is returned by IsMemberOf only.
	MembershipErr error
}

var _ identity.Client = (*FakeClient)(nil)

// NewFakeClient creates an empty fake directory.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		accounts:    make(map[kernel.AccountID]*identity.Principal),
		passwords:   make(map[kernel.AccountID]string),
		groups:      make(map[string]identity.Group),
		memberships: make(map[kernel.AccountID]map[string]bool),
		resetTokens: make(map[string]kernel.AccountID),
	}
}

// ─── Seeding helpers ─────────────────────────────────────────────────────────

// Seed inserts an account with a password and returns its principal.
func (c *FakeClient) Seed(email, password string) *identity.Principal {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.createLocked(identity.NewAccount{
		Email:     email,
		GivenName: "Test",
		Surname:   "Account",
		Status:    identity.StatusEnabled,
	})
	c.passwords[p.ID] = password
	return p
}

// SeedGroup creates a group by name.
func (c *FakeClient) SeedGroup(name string) identity.Group {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := identity.Group{
		Href: kernel.NewGroupRef(fmt.Sprintf("https://dir.test/v1/groups/%s", name)),
		Name: name,
	}
	c.groups[name] = g
	return g
}

// Join makes the account a member of the named group, creating the group if
// needed.
func (c *FakeClient) Join(id kernel.AccountID, group string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.groups[group]; !ok {
		c.groups[group] = identity.Group{
			Href: kernel.NewGroupRef(fmt.Sprintf("https://dir.test/v1/groups/%s", group)),
			Name: group,
		}
	}
	if c.memberships[id] == nil {
		c.memberships[id] = make(map[string]bool)
	}
	c.memberships[id][group] = true
}

// Leave removes the account from the named group.
func (c *FakeClient) Leave(id kernel.AccountID, group string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.memberships[id], group)
}

// SeedResetToken registers a password reset token for an account.
func (c *FakeClient) SeedResetToken(token string, id kernel.AccountID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetTokens[token] = id
}

func (c *FakeClient) createLocked(acct identity.NewAccount) *identity.Principal {
	c.nextID++
	id := kernel.NewAccountID(fmt.Sprintf("https://dir.test/v1/accounts/acct-%d", c.nextID))

	status := acct.Status
	if status == "" {
		status = identity.StatusEnabled
	}

	p := &identity.Principal{
		ID:         id,
		Email:      acct.Email,
		Username:   acct.Username,
		GivenName:  acct.GivenName,
		MiddleName: acct.MiddleName,
		Surname:    acct.Surname,
		Status:     status,
		CustomData: acct.CustomData,
	}
	c.accounts[id] = p
	return p
}

func clone(p *identity.Principal) *identity.Principal {
	cp := *p
	return &cp
}

// ─── identity.AccountAPI ─────────────────────────────────────────────────────

func (c *FakeClient) FindAccount(_ context.Context, id kernel.AccountID) (*identity.Principal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	p, ok := c.accounts[id]
	if !ok {
		return nil, identity.ErrAccountNotFound().WithDetail("id", id.String())
	}
	return clone(p), nil
}

func (c *FakeClient) AuthenticateAccount(_ context.Context, login, password string) (*identity.Principal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	for id, p := range c.accounts {
		if p.Email == login || (p.Username != "" && p.Username == login) {
			if c.passwords[id] == password {
				return clone(p), nil
			}
			break
		}
	}
	return nil, identity.ErrInvalidCredentials()
}

func (c *FakeClient) CreateAccount(_ context.Context, acct identity.NewAccount) (*identity.Principal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	for _, p := range c.accounts {
		if p.Email == acct.Email {
			return nil, identity.ErrAccountExists()
		}
	}
	p := c.createLocked(acct)
	c.passwords[p.ID] = acct.Password
	return clone(p), nil
}

func (c *FakeClient) UpdateAccount(_ context.Context, p *identity.Principal) (*identity.Principal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	if _, ok := c.accounts[p.ID]; !ok {
		return nil, identity.ErrAccountNotFound()
	}
	c.accounts[p.ID] = clone(p)
	return clone(p), nil
}

func (c *FakeClient) DeleteAccount(_ context.Context, id kernel.AccountID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return c.Err
	}
	if _, ok := c.accounts[id]; !ok {
		return identity.ErrAccountNotFound()
	}
	delete(c.accounts, id)
	delete(c.memberships, id)
	return nil
}

// ─── identity.PasswordAPI ────────────────────────────────────────────────────

func (c *FakeClient) SendPasswordResetEmail(_ context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return c.Err
	}
	for _, p := range c.accounts {
		if p.Email == email {
			return nil
		}
	}
	return identity.ErrAccountNotFound().WithDetail("email", email)
}

func (c *FakeClient) VerifyResetToken(_ context.Context, token string) (*identity.Principal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	id, ok := c.resetTokens[token]
	if !ok {
		return nil, identity.ErrInvalidResetToken()
	}
	return clone(c.accounts[id]), nil
}

func (c *FakeClient) ResetPassword(_ context.Context, token, newPassword string) (*identity.Principal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	id, ok := c.resetTokens[token]
	if !ok {
		return nil, identity.ErrInvalidResetToken()
	}
	delete(c.resetTokens, token)
	c.passwords[id] = newPassword
	return clone(c.accounts[id]), nil
}

// ─── identity.SocialAPI ──────────────────────────────────────────────────────

// ProviderAccount provisions an account keyed on the credential string, so
// repeated exchanges with the same credential return the same account.
func (c *FakeClient) ProviderAccount(_ context.Context, provider identity.SocialProvider, credential string) (*identity.Principal, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return nil, false, c.Err
	}
	if credential == "" {
		return nil, false, identity.ErrSocialExchange()
	}

	email := fmt.Sprintf("%s-%s@social.test", provider, credential)
	for _, p := range c.accounts {
		if p.Email == email {
			return clone(p), false, nil
		}
	}

	p := c.createLocked(identity.NewAccount{
		Email:     email,
		GivenName: "Social",
		Surname:   string(provider),
		Status:    identity.StatusEnabled,
	})
	return clone(p), true, nil
}

// ─── identity.GroupAPI ───────────────────────────────────────────────────────

func (c *FakeClient) ResolveGroup(_ context.Context, ref kernel.GroupRef) (*identity.Group, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	for _, g := range c.groups {
		if g.Matches(ref) {
			return &g, nil
		}
	}
	return nil, identity.ErrGroupNotFound().WithDetail("ref", ref.String())
}

func (c *FakeClient) IsMemberOf(_ context.Context, account kernel.AccountID, ref kernel.GroupRef) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return false, c.Err
	}
	if c.MembershipErr != nil {
		return false, c.MembershipErr
	}
	for name, g := range c.groups {
		if g.Matches(ref) {
			return c.memberships[account][name], nil
		}
	}
	return false, nil
}

func (c *FakeClient) AccountGroups(_ context.Context, account kernel.AccountID, offset, limit int) (kernel.Paginated[identity.Group], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return kernel.Paginated[identity.Group]{}, c.Err
	}

	var all []identity.Group
	for name := range c.memberships[account] {
		all = append(all, c.groups[name])
	}

	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return kernel.NewPaginated(all[offset:end], offset, limit, total), nil
}

func (c *FakeClient) AddToGroup(_ context.Context, account kernel.AccountID, ref kernel.GroupRef) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return c.Err
	}
	for name, g := range c.groups {
		if g.Matches(ref) {
			if c.memberships[account] == nil {
				c.memberships[account] = make(map[string]bool)
			}
			c.memberships[account][name] = true
			return nil
		}
	}
	return identity.ErrGroupNotFound()
}

func (c *FakeClient) RemoveFromGroup(_ context.Context, account kernel.AccountID, ref kernel.GroupRef) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return c.Err
	}
	for name, g := range c.groups {
		if g.Matches(ref) {
			delete(c.memberships[account], name)
			return nil
		}
	}
	return identity.ErrGroupNotFound()
}
