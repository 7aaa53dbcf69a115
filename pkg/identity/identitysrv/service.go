package identitysrv

import (
	"context"
	"encoding/json"

	"github.com/gatehouse-dev/gatehouse/pkg/errx"
	"github.com/gatehouse-dev/gatehouse/pkg/identity"
	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
)

// AccountService wraps the raw directory client with the plugin's account
// lifecycle: defaulting, client-side validation, and observer dispatch after
// confirmed mutations.
type AccountService struct {
	client identity.Client
	hooks  *identity.Hooks
}

// NewAccountService creates an account service.
func NewAccountService(client identity.Client, hooks *identity.Hooks) *AccountService {
	if hooks == nil {
		hooks = identity.NewHooks()
	}
	return &AccountService{
		client: client,
		hooks:  hooks,
	}
}

// Create registers a new account with the directory service and fires the
// created hook on success.
//
// The directory service requires given name and surname; when the caller has
// disabled collecting them they default to "Anonymous", matching the
// service's convention for nameless accounts.
func (s *AccountService) Create(ctx context.Context, acct identity.NewAccount) (*identity.Principal, error) {
	if acct.GivenName == "" {
		acct.GivenName = "Anonymous"
	}
	if acct.Surname == "" {
		acct.Surname = "Anonymous"
	}
	if acct.Status == "" {
		acct.Status = identity.StatusEnabled
	}

	if err := checkCustomDataSize(acct.CustomData); err != nil {
		return nil, err
	}

	p, err := s.client.CreateAccount(ctx, acct)
	if err != nil {
		return nil, err
	}

	s.hooks.PrincipalCreated(ctx, p)
	return p, nil
}

// FromLogin exchanges a login identifier (email or username) and password
// for the matching account.
func (s *AccountService) FromLogin(ctx context.Context, login, password string) (*identity.Principal, error) {
	return s.client.AuthenticateAccount(ctx, login, password)
}

// FromGoogle exchanges a Google OAuth authorization code for the linked
// account, provisioning it on first login.
func (s *AccountService) FromGoogle(ctx context.Context, code string) (*identity.Principal, error) {
	return s.fromProvider(ctx, identity.ProviderGoogle, code)
}

// FromFacebook exchanges a Facebook access token for the linked account,
// provisioning it on first login.
func (s *AccountService) FromFacebook(ctx context.Context, accessToken string) (*identity.Principal, error) {
	return s.fromProvider(ctx, identity.ProviderFacebook, accessToken)
}

func (s *AccountService) fromProvider(ctx context.Context, provider identity.SocialProvider, credential string) (*identity.Principal, error) {
	p, created, err := s.client.ProviderAccount(ctx, provider, credential)
	if err != nil {
		return nil, err
	}

	if created {
		s.hooks.PrincipalCreated(ctx, p)
	}
	return p, nil
}

// Find fetches an account by its opaque reference.
func (s *AccountService) Find(ctx context.Context, id kernel.AccountID) (*identity.Principal, error) {
	return s.client.FindAccount(ctx, id)
}

// Save forwards field changes to the directory service and fires the
// updated hook on success.
func (s *AccountService) Save(ctx context.Context, p *identity.Principal) (*identity.Principal, error) {
	if err := checkCustomDataSize(p.CustomData); err != nil {
		return nil, err
	}

	updated, err := s.client.UpdateAccount(ctx, p)
	if err != nil {
		return nil, err
	}

	s.hooks.PrincipalUpdated(ctx, updated)
	return updated, nil
}

// Delete removes the account from the directory service and fires the
// deleted hook with the last known snapshot.
func (s *AccountService) Delete(ctx context.Context, p *identity.Principal) error {
	if err := s.client.DeleteAccount(ctx, p.ID); err != nil {
		return err
	}

	s.hooks.PrincipalDeleted(ctx, p)
	return nil
}

// SendPasswordResetEmail asks the directory service to issue a reset token
// and mail it to the account owner.
func (s *AccountService) SendPasswordResetEmail(ctx context.Context, email string) error {
	return s.client.SendPasswordResetEmail(ctx, email)
}

// VerifyResetToken checks a password reset token.
func (s *AccountService) VerifyResetToken(ctx context.Context, token string) (*identity.Principal, error) {
	return s.client.VerifyResetToken(ctx, token)
}

// ResetPassword consumes a reset token, sets the new password, and fires
// the updated hook.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) (*identity.Principal, error) {
	p, err := s.client.ResetPassword(ctx, token, newPassword)
	if err != nil {
		return nil, err
	}

	s.hooks.PrincipalUpdated(ctx, p)
	return p, nil
}

// checkCustomDataSize rejects custom data that the provider would refuse
// anyway, saving the round-trip.
func checkCustomDataSize(data map[string]any) error {
	if len(data) == 0 {
		return nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return errx.Wrap(err, "custom data is not serializable", errx.TypeValidation)
	}
	if len(raw) > identity.MaxCustomDataBytes {
		return identity.ErrCustomDataTooLarge().WithDetail("size", len(raw))
	}
	return nil
}
