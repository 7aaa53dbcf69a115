package identity

import (
	"context"

	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
)

// AccountAPI is the account surface of the directory service.
type AccountAPI interface {
	// FindAccount fetches an account by its opaque resource reference.
	FindAccount(ctx context.Context, id kernel.AccountID) (*Principal, error)

	// AuthenticateAccount exchanges a login identifier (email or username)
	// and password for the matching account.
	AuthenticateAccount(ctx context.Context, login, password string) (*Principal, error)

	// CreateAccount registers a new account. The directory service owns
	// storage, hashing and verification-token generation.
	CreateAccount(ctx context.Context, acct NewAccount) (*Principal, error)

	// UpdateAccount forwards field changes for an existing account.
	UpdateAccount(ctx context.Context, p *Principal) (*Principal, error)

	// DeleteAccount forwards an account deletion.
	DeleteAccount(ctx context.Context, id kernel.AccountID) error
}

// PasswordAPI is the password-reset surface of the directory service.
type PasswordAPI interface {
	// SendPasswordResetEmail asks the service to issue a reset token and
	// mail it to the account owner.
	SendPasswordResetEmail(ctx context.Context, email string) error

	// VerifyResetToken checks a reset token and returns the account it was
	// issued for.
	VerifyResetToken(ctx context.Context, token string) (*Principal, error)

	// ResetPassword consumes a reset token and sets a new password.
	ResetPassword(ctx context.Context, token, newPassword string) (*Principal, error)
}

// SocialAPI is the federated-login surface of the directory service. The
// service creates the backing directory on demand, so a first-time social
// login both provisions and returns the account.
type SocialAPI interface {
	// ProviderAccount exchanges a federated credential (an OAuth code for
	// Google, an access token for Facebook) for the linked account.
	// created reports whether the account was provisioned by this call.
	ProviderAccount(ctx context.Context, provider SocialProvider, credential string) (p *Principal, created bool, err error)
}

// GroupAPI is the group/membership surface of the directory service.
// Membership is always evaluated remotely; implementations must not cache
// across requests.
type GroupAPI interface {
	// ResolveGroup resolves a name or href reference to a concrete group.
	ResolveGroup(ctx context.Context, ref kernel.GroupRef) (*Group, error)

	// IsMemberOf reports whether the account belongs to the referenced group.
	IsMemberOf(ctx context.Context, account kernel.AccountID, ref kernel.GroupRef) (bool, error)

	// AccountGroups lists one page of the groups the account belongs to.
	AccountGroups(ctx context.Context, account kernel.AccountID, offset, limit int) (kernel.Paginated[Group], error)

	// AddToGroup adds the account to the referenced group.
	AddToGroup(ctx context.Context, account kernel.AccountID, ref kernel.GroupRef) error

	// RemoveFromGroup removes the account from the referenced group.
	RemoveFromGroup(ctx context.Context, account kernel.AccountID, ref kernel.GroupRef) error
}

// Client is the full directory-service collaborator boundary. All calls are
// opaque remote HTTP requests; none of the hard parts (storage, hashing,
// token issuance) live in this repository.
type Client interface {
	AccountAPI
	PasswordAPI
	SocialAPI
	GroupAPI
}
