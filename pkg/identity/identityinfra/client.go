package identityinfra

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gatehouse-dev/gatehouse/pkg/errx"
	"github.com/gatehouse-dev/gatehouse/pkg/identity"
	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
)

// ClientConfig configures the REST client for the directory service.
type ClientConfig struct {
	// BaseURL is the API root, e.g. "https://api.directory.example.com/v1".
	BaseURL string

	// ApplicationHref is the application resource all login, registration
	// and group operations are scoped to.
	ApplicationHref string

	// APIKeyID and APIKeySecret authenticate the plugin itself (HTTP basic).
	APIKeyID     string
	APIKeySecret string

	// Timeout bounds each remote call. Zero means 30s.
	Timeout time.Duration
}

// RESTClient implements identity.Client against the directory service's
// HTTP API. It holds no state besides configuration; every method is a
// single remote round-trip.
type RESTClient struct {
	http    *http.Client
	baseURL string
	appHref string
	keyID   string
	secret  string
}

var _ identity.Client = (*RESTClient)(nil)

// NewRESTClient creates a directory-service client.
func NewRESTClient(cfg ClientConfig) *RESTClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &RESTClient{
		http:    &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		appHref: cfg.ApplicationHref,
		keyID:   cfg.APIKeyID,
		secret:  cfg.APIKeySecret,
	}
}

// ─── identity.AccountAPI ─────────────────────────────────────────────────────

func (c *RESTClient) FindAccount(ctx context.Context, id kernel.AccountID) (*identity.Principal, error) {
	var res accountResource
	if err := c.do(ctx, http.MethodGet, id.String(), nil, &res); err != nil {
		return nil, err
	}
	return res.toPrincipal(), nil
}

func (c *RESTClient) AuthenticateAccount(ctx context.Context, login, password string) (*identity.Principal, error) {
	attempt := loginAttempt{
		Type:  "basic",
		Value: base64.StdEncoding.EncodeToString([]byte(login + ":" + password)),
	}

	var res loginResult
	err := c.do(ctx, http.MethodPost, c.appHref+"/loginAttempts?expand=account", attempt, &res)
	if err != nil {
		// The provider reports a failed attempt as 400; surface it as
		// invalid credentials, not as a validation problem.
		if errx.IsType(err, errx.TypeValidation) || errx.IsType(err, errx.TypeAuthorization) {
			return nil, identity.ErrInvalidCredentials().WithCause(err)
		}
		return nil, err
	}
	return res.Account.toPrincipal(), nil
}

func (c *RESTClient) CreateAccount(ctx context.Context, acct identity.NewAccount) (*identity.Principal, error) {
	req := newAccountResource{
		Email:      acct.Email,
		Password:   acct.Password,
		GivenName:  acct.GivenName,
		MiddleName: acct.MiddleName,
		Surname:    acct.Surname,
		Username:   acct.Username,
		CustomData: acct.CustomData,
		Status:     string(acct.Status),
	}

	var res accountResource
	if err := c.do(ctx, http.MethodPost, c.appHref+"/accounts", req, &res); err != nil {
		if errx.IsType(err, errx.TypeConflict) {
			return nil, identity.ErrAccountExists().WithCause(err)
		}
		return nil, err
	}
	return res.toPrincipal(), nil
}

func (c *RESTClient) UpdateAccount(ctx context.Context, p *identity.Principal) (*identity.Principal, error) {
	var res accountResource
	if err := c.do(ctx, http.MethodPost, p.ID.String(), fromPrincipal(p), &res); err != nil {
		return nil, err
	}
	return res.toPrincipal(), nil
}

func (c *RESTClient) DeleteAccount(ctx context.Context, id kernel.AccountID) error {
	return c.do(ctx, http.MethodDelete, id.String(), nil, nil)
}

// ─── identity.PasswordAPI ────────────────────────────────────────────────────

func (c *RESTClient) SendPasswordResetEmail(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, c.appHref+"/passwordResetTokens", passwordResetRequest{Email: email}, nil)
}

func (c *RESTClient) VerifyResetToken(ctx context.Context, token string) (*identity.Principal, error) {
	var res resetTokenResource
	path := c.appHref + "/passwordResetTokens/" + url.PathEscape(token)
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		if errx.IsType(err, errx.TypeNotFound) {
			return nil, identity.ErrInvalidResetToken().WithCause(err)
		}
		return nil, err
	}
	return res.Account.toPrincipal(), nil
}

func (c *RESTClient) ResetPassword(ctx context.Context, token, newPassword string) (*identity.Principal, error) {
	var res resetTokenResource
	path := c.appHref + "/passwordResetTokens/" + url.PathEscape(token)
	if err := c.do(ctx, http.MethodPost, path, passwordChangeRequest{Password: newPassword}, &res); err != nil {
		if errx.IsType(err, errx.TypeNotFound) {
			return nil, identity.ErrInvalidResetToken().WithCause(err)
		}
		return nil, err
	}
	return res.Account.toPrincipal(), nil
}

// ─── identity.SocialAPI ──────────────────────────────────────────────────────

func (c *RESTClient) ProviderAccount(ctx context.Context, provider identity.SocialProvider, credential string) (*identity.Principal, bool, error) {
	data := providerData{ProviderID: providerID(provider)}
	switch provider {
	case identity.ProviderGoogle:
		data.Code = credential
	default:
		data.AccessToken = credential
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.appHref+"/accounts", providerAccountRequest{ProviderData: data})
	if err != nil {
		return nil, false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, identity.ErrProviderUnavailable().WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, false, identity.ErrSocialExchange().WithCause(c.errorFrom(resp))
	}

	var res accountResource
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, false, identity.ErrProviderUnavailable().WithCause(err)
	}

	// 201 means the service provisioned the account during this exchange.
	return res.toPrincipal(), resp.StatusCode == http.StatusCreated, nil
}

func providerID(p identity.SocialProvider) string {
	switch p {
	case identity.ProviderGoogle:
		return "google"
	case identity.ProviderFacebook:
		return "facebook"
	default:
		return ""
	}
}

// ─── identity.GroupAPI ───────────────────────────────────────────────────────

func (c *RESTClient) ResolveGroup(ctx context.Context, ref kernel.GroupRef) (*identity.Group, error) {
	// Hrefs resolve directly; names search the application's groups.
	if ref.IsHref() {
		var res groupResource
		if err := c.do(ctx, http.MethodGet, ref.String(), nil, &res); err != nil {
			if errx.IsType(err, errx.TypeNotFound) {
				return nil, identity.ErrGroupNotFound().WithDetail("ref", ref.String())
			}
			return nil, err
		}
		g := res.toGroup()
		return &g, nil
	}

	var res collection[groupResource]
	path := c.appHref + "/groups?name=" + url.QueryEscape(ref.String())
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	if len(res.Items) == 0 {
		return nil, identity.ErrGroupNotFound().WithDetail("ref", ref.String())
	}
	g := res.Items[0].toGroup()
	return &g, nil
}

func (c *RESTClient) IsMemberOf(ctx context.Context, account kernel.AccountID, ref kernel.GroupRef) (bool, error) {
	group, err := c.ResolveGroup(ctx, ref)
	if err != nil {
		if errx.IsType(err, errx.TypeNotFound) {
			// A reference to a group that does not exist is a clean "no",
			// not a query failure.
			return false, nil
		}
		return false, err
	}

	var res collection[groupResource]
	path := account.String() + "/groups?name=" + url.QueryEscape(group.Name)
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return false, err
	}

	for _, item := range res.Items {
		if item.toGroup().Matches(ref) || item.Href == group.Href.String() {
			return true, nil
		}
	}
	return false, nil
}

func (c *RESTClient) AccountGroups(ctx context.Context, account kernel.AccountID, offset, limit int) (kernel.Paginated[identity.Group], error) {
	var res collection[groupResource]
	path := fmt.Sprintf("%s/groups?offset=%d&limit=%d", account.String(), offset, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return kernel.Paginated[identity.Group]{}, err
	}

	groups := make([]identity.Group, 0, len(res.Items))
	for _, item := range res.Items {
		groups = append(groups, item.toGroup())
	}
	return kernel.NewPaginated(groups, res.Offset, res.Limit, res.Size), nil
}

func (c *RESTClient) AddToGroup(ctx context.Context, account kernel.AccountID, ref kernel.GroupRef) error {
	group, err := c.ResolveGroup(ctx, ref)
	if err != nil {
		return err
	}

	req := membershipRequest{
		Account: resourceRef{Href: account.String()},
		Group:   resourceRef{Href: group.Href.String()},
	}
	return c.do(ctx, http.MethodPost, c.baseURL+"/groupMemberships", req, nil)
}

func (c *RESTClient) RemoveFromGroup(ctx context.Context, account kernel.AccountID, ref kernel.GroupRef) error {
	group, err := c.ResolveGroup(ctx, ref)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("%s/groupMemberships?account=%s&group=%s",
		c.baseURL, url.QueryEscape(account.String()), url.QueryEscape(group.Href.String()))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// ─── HTTP plumbing ───────────────────────────────────────────────────────────

func (c *RESTClient) newRequest(ctx context.Context, method, rawURL string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, errx.Wrap(err, "failed to encode request body", errx.TypeInternal)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, errx.Wrap(err, "failed to build request", errx.TypeInternal)
	}

	req.SetBasicAuth(c.keyID, c.secret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do performs one round-trip and decodes the response into out (when non-nil).
func (c *RESTClient) do(ctx context.Context, method, rawURL string, body, out any) error {
	req, err := c.newRequest(ctx, method, rawURL, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return identity.ErrProviderUnavailable().WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.errorFrom(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return identity.ErrProviderUnavailable().WithCause(err)
		}
	}
	return nil
}

// errorFrom maps a non-2xx response to a typed error. The provider's own
// message is preserved as the cause.
func (c *RESTClient) errorFrom(resp *http.Response) *errx.Error {
	var remote apiError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	_ = json.Unmarshal(raw, &remote)

	cause := fmt.Errorf("directory service: %d %s", resp.StatusCode, remote.Message)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return errx.NotFound("resource not found").WithCause(cause)
	case http.StatusUnauthorized, http.StatusForbidden:
		return errx.Unauthorized("request rejected").WithCause(cause)
	case http.StatusConflict:
		return errx.Conflict("resource conflict").WithCause(cause)
	case http.StatusBadRequest:
		return errx.Validation(remote.Message).WithCause(cause)
	default:
		return identity.ErrProviderUnavailable().WithCause(cause)
	}
}
