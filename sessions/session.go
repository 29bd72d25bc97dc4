// Package sessions defines the browser session envelope and the
// encrypted cookie store that transports it. All session state
// round-trips through the cookie; the server keeps nothing in memory.
package sessions

import (
	"time"

	"github.com/jrsteele09/go-bff-auth/claims"
)

// refreshThreshold is the remaining access-token lifetime below which a
// proactive refresh is worthwhile.
const refreshThreshold = 5 * time.Minute

// TokenSet is the size-bounded remainder of a token response. The raw
// access and ID token strings are deliberately excluded: they are too
// large for a cookie and must never reach the browser.
type TokenSet struct {
	ExpiresAt *int64 `json:"expiresAt,omitempty"` // unix seconds
	Scope     string `json:"scope,omitempty"`
}

// ShouldRefresh reports whether the remaining token lifetime is below
// the refresh threshold. An unknown expiry never forces a refresh.
func (t *TokenSet) ShouldRefresh(now time.Time) bool {
	if t == nil || t.ExpiresAt == nil {
		return false
	}
	return *t.ExpiresAt-now.Unix() < int64(refreshThreshold.Seconds())
}

// User is the cached identity summary derived at login or refresh.
type User struct {
	Sub   string   `json:"sub,omitempty"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Session is the only persisted entity. It lives encrypted inside the
// session cookie and is decrypted per request.
//
// State and PKCEVerifier are set together at login-initiation and
// cleared together by the callback. RefreshToken, TokenSet, User and
// IDTokenClaims are set together on a successful exchange or refresh.
type Session struct {
	IsLoggedIn    bool             `json:"isLoggedIn"`
	State         string           `json:"state,omitempty"`
	PKCEVerifier  string           `json:"pkceVerifier,omitempty"`
	RefreshToken  string           `json:"refreshToken,omitempty"`
	TokenSet      *TokenSet        `json:"tokenSet,omitempty"`
	User          *User            `json:"user,omitempty"`
	IDTokenClaims *claims.Identity `json:"idTokenClaims,omitempty"`
}

// Roles returns the cached role set, empty when not logged in.
func (s *Session) Roles() []string {
	if s == nil || s.User == nil {
		return nil
	}
	return s.User.Roles
}

// Clear resets every field to the anonymous state.
func (s *Session) Clear() {
	*s = Session{}
}
