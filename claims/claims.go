// Package claims decodes compact tokens returned by the identity
// provider and projects the role and identity claims the session keeps.
//
// Decoding performs no signature verification: tokens must come
// directly from a TLS-protected exchange or refresh response, never
// from the browser.
package claims

import (
	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/jrsteele09/go-bff-auth/internal/errors"
	"github.com/jrsteele09/go-bff-auth/internal/utils"
)

// Identity is the minimal subset of ID-token claims retained for
// display. Missing claims stay nil; projection never fails.
type Identity struct {
	Iss      *string `json:"iss,omitempty"`
	Sub      *string `json:"sub,omitempty"`
	Aud      *string `json:"aud,omitempty"`
	Exp      *int64  `json:"exp,omitempty"`
	Iat      *int64  `json:"iat,omitempty"`
	AuthTime *int64  `json:"auth_time,omitempty"`
}

// Decode extracts the claims of a compact three-segment token without
// verifying its signature. Fails with ErrMalformedToken when the token
// does not have exactly three dot-separated segments or the payload is
// not valid base64url JSON.
func Decode(rawToken string) (jwtlib.MapClaims, error) {
	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrMalformedToken, "%s", err.Error())
	}
	mapClaims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.ErrMalformedToken
	}
	return mapClaims, nil
}

// ExtractRoles collects the realm-level roles (realm_access.roles) and
// the client-level roles of every client under resource_access, and
// returns their deduplicated union. Absent claims yield an empty set.
func ExtractRoles(c jwtlib.MapClaims) []string {
	roles := make([]string, 0)

	if realmAccess, ok := c["realm_access"].(map[string]any); ok {
		if realmRoles, ok := realmAccess["roles"].([]any); ok {
			roles = append(roles, utils.ToStringSlice(realmRoles)...)
		}
	}

	if resourceAccess, ok := c["resource_access"].(map[string]any); ok {
		for _, clientEntry := range resourceAccess {
			client, ok := clientEntry.(map[string]any)
			if !ok {
				continue
			}
			if clientRoles, ok := client["roles"].([]any); ok {
				roles = append(roles, utils.ToStringSlice(clientRoles)...)
			}
		}
	}

	return dedupe(roles)
}

// RolesFromTokenPair applies the role-extraction policy across a token
// pair: the access token is authoritative; the ID token is consulted
// only when the access token yields no roles. Malformed tokens count as
// "no roles" rather than failing the caller.
func RolesFromTokenPair(accessToken, idToken string) []string {
	roles := make([]string, 0)

	if accessToken != "" {
		if accessClaims, err := Decode(accessToken); err == nil {
			roles = ExtractRoles(accessClaims)
		}
	}

	if len(roles) == 0 && idToken != "" {
		if idClaims, err := Decode(idToken); err == nil {
			roles = ExtractRoles(idClaims)
		}
	}

	return roles
}

// IdentitySubset projects the display subset out of ID-token claims.
func IdentitySubset(c jwtlib.MapClaims) *Identity {
	if c == nil {
		return nil
	}
	return &Identity{
		Iss:      stringClaim(c, "iss"),
		Sub:      stringClaim(c, "sub"),
		Aud:      audienceClaim(c),
		Exp:      numericClaim(c, "exp"),
		Iat:      numericClaim(c, "iat"),
		AuthTime: numericClaim(c, "auth_time"),
	}
}

func stringClaim(c jwtlib.MapClaims, name string) *string {
	if v, ok := c[name].(string); ok {
		return utils.Ptr(v)
	}
	return nil
}

// audienceClaim handles aud being either a string or an array of
// strings; for the display subset the first audience suffices.
func audienceClaim(c jwtlib.MapClaims) *string {
	switch v := c["aud"].(type) {
	case string:
		return utils.Ptr(v)
	case []any:
		if auds := utils.ToStringSlice(v); len(auds) > 0 {
			return utils.Ptr(auds[0])
		}
	}
	return nil
}

func numericClaim(c jwtlib.MapClaims, name string) *int64 {
	switch v := c[name].(type) {
	case float64:
		return utils.Ptr(int64(v))
	case int64:
		return utils.Ptr(v)
	}
	return nil
}

func dedupe(roles []string) []string {
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
