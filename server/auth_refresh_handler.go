package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-bff-auth/claims"
	"github.com/jrsteele09/go-bff-auth/internal/errors"
	"github.com/jrsteele09/go-bff-auth/sessions"
)

// RefreshHandler mints a fresh token set from the stored refresh token.
// Both missing preconditions and a provider rejection surface as 401:
// the caller should treat either as "re-authenticate".
//
// Two concurrent refreshes for the same browser session may race at the
// provider when it rotates refresh tokens; session state is client-held
// so there is no server-side identity to lock on. Known gap.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.store.Open(r)

		if err := s.refreshSession(r.Context(), session); err != nil {
			message := "token refresh failed"
			if errors.Is(err, errors.ErrNoRefreshToken) {
				message = "no refresh token available"
			}
			log.Warn().Err(err).Msg("refresh rejected")
			writeJSON(w, http.StatusUnauthorized, errorBody(message))
			return
		}

		if err := s.store.Save(w, r, session); err != nil {
			log.Err(err).Msg("failed to save refreshed session")
			writeJSON(w, http.StatusInternalServerError, errorBody("failed to save session"))
			return
		}

		body := map[string]any{"success": true}
		if session.TokenSet != nil && session.TokenSet.ExpiresAt != nil {
			body["expiresAt"] = *session.TokenSet.ExpiresAt
			body["expiresIn"] = *session.TokenSet.ExpiresAt - time.Now().Unix()
		}
		writeJSON(w, http.StatusOK, body)
	}
}

// refreshSession replaces the token-derived session fields in place.
// On any failure the session is left untouched: no partial update is
// ever persisted.
func (s *Server) refreshSession(ctx context.Context, session *sessions.Session) error {
	if !session.IsLoggedIn || session.RefreshToken == "" {
		return errors.ErrNoRefreshToken
	}

	tokens, err := s.idp.Refresh(ctx, session.RefreshToken)
	if err != nil {
		return err
	}

	var identity *claims.Identity
	if idClaims, err := claims.Decode(tokens.IDToken); err == nil {
		identity = claims.IdentitySubset(idClaims)
	}

	session.RefreshToken = tokens.RefreshToken
	session.TokenSet = &sessions.TokenSet{ExpiresAt: tokens.ExpiresAt, Scope: tokens.Scope}
	session.IDTokenClaims = identity

	// Roles are recomputed from the refreshed pair so a role change at
	// the provider propagates; the cached sub/email summary survives.
	if session.User == nil {
		session.User = &sessions.User{}
	}
	session.User.Roles = claims.RolesFromTokenPair(tokens.AccessToken, tokens.IDToken)

	return nil
}
