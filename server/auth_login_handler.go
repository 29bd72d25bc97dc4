package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-bff-auth/pkce"
)

// LoginHandler initiates the authorization-code flow: it generates the
// CSRF state and PKCE pair, stashes both in the session, and redirects
// the browser to the provider's authorization endpoint.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := pkce.GenerateState()

		verifier, err := pkce.GenerateVerifier()
		if err != nil {
			log.Err(err).Msg("failed to generate PKCE verifier")
			writeJSON(w, http.StatusInternalServerError, errorBody("login initiation failed"))
			return
		}
		challenge, err := pkce.DeriveChallenge(verifier)
		if err != nil {
			log.Err(err).Msg("failed to derive PKCE challenge")
			writeJSON(w, http.StatusInternalServerError, errorBody("login initiation failed"))
			return
		}

		authorizationURL, err := s.idp.AuthorizationURL(r.Context(), state, challenge)
		if err != nil {
			log.Err(err).Msg("failed to build authorization URL")
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error":    "login initiation failed",
				"hint":     "ensure the identity provider is reachable at OIDC_ISSUER_URL and OIDC_* variables are set",
				"issuer":   s.config.GetIssuerURL(),
				"clientId": s.config.GetClientID(),
			})
			return
		}

		session := s.store.Open(r)
		session.State = state
		session.PKCEVerifier = verifier
		if err := s.store.Save(w, r, session); err != nil {
			log.Err(err).Msg("failed to save session")
			writeJSON(w, http.StatusInternalServerError, errorBody("login initiation failed"))
			return
		}

		http.Redirect(w, r, authorizationURL, http.StatusFound)
	}
}
