package identityinfra

import (
	"github.com/gatehouse-dev/gatehouse/pkg/identity"
	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
)

// Wire shapes of the directory service's REST API. The raw resources are
// mapped into typed domain values at this boundary; nothing downstream ever
// sees a provider payload.

type accountResource struct {
	Href       string         `json:"href"`
	Email      string         `json:"email"`
	Username   string         `json:"username,omitempty"`
	GivenName  string         `json:"givenName"`
	MiddleName string         `json:"middleName,omitempty"`
	Surname    string         `json:"surname"`
	Status     string         `json:"status"`
	CustomData map[string]any `json:"customData,omitempty"`
}

// toPrincipal converts a raw account resource into a typed Principal.
func (r accountResource) toPrincipal() *identity.Principal {
	return &identity.Principal{
		ID:         kernel.NewAccountID(r.Href),
		Email:      r.Email,
		Username:   r.Username,
		GivenName:  r.GivenName,
		MiddleName: r.MiddleName,
		Surname:    r.Surname,
		Status:     identity.Status(r.Status),
		CustomData: r.CustomData,
	}
}

// fromPrincipal builds the update payload for an existing account.
func fromPrincipal(p *identity.Principal) accountResource {
	return accountResource{
		Href:       p.ID.String(),
		Email:      p.Email,
		Username:   p.Username,
		GivenName:  p.GivenName,
		MiddleName: p.MiddleName,
		Surname:    p.Surname,
		Status:     string(p.Status),
		CustomData: p.CustomData,
	}
}

type newAccountResource struct {
	Email      string         `json:"email"`
	Password   string         `json:"password"`
	GivenName  string         `json:"givenName"`
	MiddleName string         `json:"middleName,omitempty"`
	Surname    string         `json:"surname"`
	Username   string         `json:"username,omitempty"`
	CustomData map[string]any `json:"customData,omitempty"`
	Status     string         `json:"status,omitempty"`
}

type groupResource struct {
	Href string `json:"href"`
	Name string `json:"name"`
}

func (r groupResource) toGroup() identity.Group {
	return identity.Group{
		Href: kernel.NewGroupRef(r.Href),
		Name: r.Name,
	}
}

// collection is the provider's paged-list envelope.
type collection[T any] struct {
	Href   string `json:"href"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
	Size   int    `json:"size"`
	Items  []T    `json:"items"`
}

// loginAttempt is the credential-exchange request: value carries
// base64(login:password), matching the provider's basic attempt type.
type loginAttempt struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type loginResult struct {
	Account accountResource `json:"account"`
}

// providerAccountRequest asks the service to resolve (and provision on
// demand) an account from a federated credential.
type providerAccountRequest struct {
	ProviderData providerData `json:"providerData"`
}

type providerData struct {
	ProviderID  string `json:"providerId"`
	Code        string `json:"code,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordChangeRequest struct {
	Password string `json:"password"`
}

type resetTokenResource struct {
	Account accountResource `json:"account"`
}

type membershipRequest struct {
	Account resourceRef `json:"account"`
	Group   resourceRef `json:"group"`
}

type resourceRef struct {
	Href string `json:"href"`
}

// apiError is the provider's error envelope.
type apiError struct {
	Status  int    `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}
