package idp

import (
	"net/url"
	"strings"
)

// ToExternalURL rewrites a provider URL onto the browser-facing IdP
// base. Issuer URLs are often cluster-internal hostnames; URLs handed
// to the browser (authorization, end-session) must use the ingress
// host instead. With no external base configured, or when the URL is
// already on the external host, the input is returned unchanged.
func ToExternalURL(rawURL, externalBase string) string {
	if externalBase == "" {
		return rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	external, err := url.Parse(strings.TrimSuffix(externalBase, "/"))
	if err != nil || external.Host == "" {
		return rawURL
	}
	if parsed.Host == external.Host {
		return rawURL
	}

	parsed.Scheme = external.Scheme
	parsed.Host = external.Host
	return parsed.String()
}
