package config

import "time"

// OidcConfig exposes the pre-established client registration with the
// identity provider. Issuer, client id/secret and redirect URI have no
// usable defaults; a missing value is reported by the login-initiation
// handler rather than at startup, since the provider may come up later.
type OidcConfig interface {
	GetIssuerURL() string
	GetClientID() string
	GetClientSecret() string
	GetRedirectURI() string
	GetScopes() []string
	GetExternalIdpURL() string
	GetIdpRequestTimeout() time.Duration
}

type Oidc struct{}

var _ OidcConfig = Oidc{}

func (Oidc) GetIssuerURL() string {
	return GetEnv("OIDC_ISSUER_URL", "")
}

func (Oidc) GetClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "")
}

func (Oidc) GetClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}

func (Oidc) GetRedirectURI() string {
	return GetEnv("OIDC_REDIRECT_URI", "")
}

func (Oidc) GetScopes() []string {
	return []string{"openid", "profile", "email", "roles"}
}

// GetExternalIdpURL returns the browser-facing base URL of the identity
// provider, for deployments where the issuer URL is a cluster-internal
// hostname. Empty means the issuer URL is already browser-reachable.
func (Oidc) GetExternalIdpURL() string {
	return GetEnv("IDP_EXTERNAL_URL", "")
}

func (Oidc) GetIdpRequestTimeout() time.Duration {
	return 10 * time.Second
}
