package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// LogoutHandler destroys the local session and, best-effort, sends the
// browser through the provider's end-session endpoint. Logout never
// fails from the caller's perspective: an already-anonymous session and
// a provider without RP-initiated logout both end in a clean redirect.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.store.Open(r)
		baseURL := s.config.GetBaseURL() + "/"

		endSessionURL, err := s.idp.EndSessionURL(r.Context(), baseURL)
		if err != nil {
			log.Debug().Err(err).Msg("end-session URL unavailable, local-only logout")
			endSessionURL = ""
		}

		s.store.Destroy(w, session)

		target := endSessionURL
		if target == "" {
			target = baseURL
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}
