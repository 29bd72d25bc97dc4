package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-bff-auth/claims"
	"github.com/jrsteele09/go-bff-auth/internal/errors"
	"github.com/jrsteele09/go-bff-auth/sessions"
)

// CallbackHandler completes the authorization-code flow. State and
// verifier validation happens strictly before the exchange round trip,
// so a CSRF or replay attempt never costs a network call.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")

		session := s.store.Open(r)
		if !validCallback(code, state, session) {
			http.Error(w, "Invalid OIDC callback parameters", http.StatusBadRequest)
			return
		}

		tokens, err := s.idp.Exchange(r.Context(), code, session.PKCEVerifier)
		if err != nil {
			log.Err(err).Msg("authorization code exchange failed")
			status := http.StatusInternalServerError
			if errors.Is(err, errors.ErrExchangeFailed) {
				status = http.StatusUnauthorized
			}
			writeJSON(w, status, errorBody("authorization code exchange failed"))
			return
		}

		roles := claims.RolesFromTokenPair(tokens.AccessToken, tokens.IDToken)

		var identity *claims.Identity
		var email string
		if idClaims, err := claims.Decode(tokens.IDToken); err == nil {
			identity = claims.IdentitySubset(idClaims)
			email, _ = idClaims["email"].(string)
		} else {
			log.Warn().Err(err).Msg("could not decode ID token claims")
		}

		user := &sessions.User{Roles: roles, Email: email}
		if identity != nil && identity.Sub != nil {
			user.Sub = *identity.Sub
		}

		// Userinfo is optional enrichment; its absence is not fatal.
		if info, err := s.idp.FetchUserInfo(r.Context(), tokens.AccessToken); err == nil {
			if info.Sub != "" {
				user.Sub = info.Sub
			}
			if info.Email != "" {
				user.Email = info.Email
			}
		} else {
			log.Warn().Err(err).Msg("userinfo fetch failed, deriving identity from claims")
		}

		// Full overwrite: the transient state/verifier fields do not
		// survive into the authenticated session.
		authenticated := &sessions.Session{
			IsLoggedIn:    true,
			RefreshToken:  tokens.RefreshToken,
			TokenSet:      &sessions.TokenSet{ExpiresAt: tokens.ExpiresAt, Scope: tokens.Scope},
			User:          user,
			IDTokenClaims: identity,
		}
		if err := s.store.Save(w, r, authenticated); err != nil {
			log.Err(err).Msg("failed to save session")
			writeJSON(w, http.StatusInternalServerError, errorBody("failed to establish session"))
			return
		}

		http.Redirect(w, r, s.config.GetBaseURL()+RouteProtected, http.StatusFound)
	}
}

// validCallback is the CSRF defense: both parameters present, a pending
// login in the session, and an exact state match.
func validCallback(code, state string, session *sessions.Session) bool {
	if code == "" || state == "" {
		return false
	}
	if session.State == "" || session.PKCEVerifier == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(state), []byte(session.State)) == 1
}
