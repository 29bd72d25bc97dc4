// Package idp wraps the external identity provider behind the small
// boundary the auth flow needs: authorization URL construction, code
// exchange, refresh, userinfo and end-session URL construction.
// Discovery runs lazily on first use and the result is cached for the
// life of the process.
package idp

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-bff-auth/internal/config"
	"github.com/jrsteele09/go-bff-auth/internal/errors"
)

// UserInfo is the optional identity enrichment fetched after a
// successful code exchange.
type UserInfo struct {
	Sub   string
	Email string
}

// Client is the process-wide handle to the identity provider. It is
// safe for concurrent use; concurrent first calls collapse to a single
// discovery round trip. A failed discovery is not cached, so a
// temporarily unreachable provider is retried on the next request.
type Client struct {
	cfg config.OidcConfig

	mu                 sync.Mutex
	provider           *oidc.Provider
	oauthConfig        *oauth2.Config
	endSessionEndpoint string
}

func NewClient(cfg config.OidcConfig) *Client {
	return &Client{cfg: cfg}
}

// ensure performs discovery once and caches the provider handle.
func (c *Client) ensure(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.provider != nil {
		return nil
	}

	if err := c.validateConfig(); err != nil {
		return err
	}

	provider, err := oidc.NewProvider(ctx, c.cfg.GetIssuerURL())
	if err != nil {
		return errors.Wrapf(errors.ErrDiscoveryFailed, "issuer %s", c.cfg.GetIssuerURL())
	}

	// end_session_endpoint is optional in discovery metadata; absence
	// just means logout is local-only.
	var extra struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	_ = provider.Claims(&extra)

	c.provider = provider
	c.endSessionEndpoint = extra.EndSessionEndpoint
	c.oauthConfig = &oauth2.Config{
		ClientID:     c.cfg.GetClientID(),
		ClientSecret: c.cfg.GetClientSecret(),
		Endpoint:     provider.Endpoint(),
		RedirectURL:  c.cfg.GetRedirectURI(),
		Scopes:       c.cfg.GetScopes(),
	}
	return nil
}

func (c *Client) validateConfig() error {
	var missing []string
	if c.cfg.GetIssuerURL() == "" {
		missing = append(missing, "issuer URL")
	}
	if c.cfg.GetClientID() == "" {
		missing = append(missing, "client id")
	}
	if c.cfg.GetClientSecret() == "" {
		missing = append(missing, "client secret")
	}
	if c.cfg.GetRedirectURI() == "" {
		missing = append(missing, "redirect URI")
	}
	if len(missing) > 0 {
		return errors.Wrapf(errors.ErrMissingOidcConfig, "%s", strings.Join(missing, ", "))
	}
	return nil
}

// AuthorizationURL builds the provider authorization URL carrying the
// CSRF state and the PKCE challenge, rewritten to the browser-facing
// IdP host when one is configured.
func (c *Client) AuthorizationURL(ctx context.Context, state, codeChallenge string) (string, error) {
	ctx, cancel := c.boundedContext(ctx)
	defer cancel()

	if err := c.ensure(ctx); err != nil {
		return "", err
	}

	authURL := c.oauthConfig.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
	return c.toExternalURL(authURL), nil
}

// Exchange trades the authorization code plus PKCE verifier for a token
// set. An authorization code is single-use at the provider; the caller
// must not retry a failed exchange.
func (c *Client) Exchange(ctx context.Context, code, codeVerifier string) (*TokenResult, error) {
	ctx, cancel := c.boundedContext(ctx)
	defer cancel()

	if err := c.ensure(ctx); err != nil {
		return nil, err
	}

	token, err := c.oauthConfig.Exchange(ctx, code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrExchangeFailed, "%s", err.Error())
	}
	return newTokenResult(token), nil
}

// Refresh mints a fresh token set from a stored refresh token. When the
// provider does not rotate the refresh token, the previous one is
// carried forward in the result.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResult, error) {
	ctx, cancel := c.boundedContext(ctx)
	defer cancel()

	if err := c.ensure(ctx); err != nil {
		return nil, err
	}

	token, err := c.oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrRefreshFailed, "%s", err.Error())
	}

	result := newTokenResult(token)
	if result.RefreshToken == "" {
		result.RefreshToken = refreshToken
	}
	return result, nil
}

// FetchUserInfo asks the provider's userinfo endpoint for the identity
// behind an access token. Callers treat failure as missing enrichment,
// not as a flow error.
func (c *Client) FetchUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	ctx, cancel := c.boundedContext(ctx)
	defer cancel()

	if err := c.ensure(ctx); err != nil {
		return nil, err
	}

	info, err := c.provider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	if err != nil {
		return nil, errors.Wrapf(err, "fetch userinfo")
	}
	return &UserInfo{Sub: info.Subject, Email: info.Email}, nil
}

// EndSessionURL builds the provider's RP-initiated logout URL. Fails
// when the provider does not advertise an end_session_endpoint; logout
// callers fall back to a local-only logout.
func (c *Client) EndSessionURL(ctx context.Context, postLogoutRedirectURI string) (string, error) {
	ctx, cancel := c.boundedContext(ctx)
	defer cancel()

	if err := c.ensure(ctx); err != nil {
		return "", err
	}
	if c.endSessionEndpoint == "" {
		return "", errors.Wrapf(errors.ErrMissingOidcConfig, "provider has no end_session_endpoint")
	}

	endSession, err := url.Parse(c.endSessionEndpoint)
	if err != nil {
		return "", errors.Wrapf(err, "parse end_session_endpoint")
	}
	query := endSession.Query()
	query.Set("client_id", c.cfg.GetClientID())
	if postLogoutRedirectURI != "" {
		query.Set("post_logout_redirect_uri", postLogoutRedirectURI)
	}
	endSession.RawQuery = query.Encode()

	return c.toExternalURL(endSession.String()), nil
}

func (c *Client) toExternalURL(rawURL string) string {
	return ToExternalURL(rawURL, c.cfg.GetExternalIdpURL())
}

func (c *Client) boundedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.cfg.GetIdpRequestTimeout())
}
