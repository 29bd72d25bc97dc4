package server

import (
	"net/http"
)

// SessionHandler is the session introspection endpoint the frontend
// polls. It only ever reveals the derived, size-bounded fields.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.store.Open(r)

		var profile map[string]any
		if session.User != nil {
			profile = map[string]any{
				"sub":   session.User.Sub,
				"email": session.User.Email,
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"isLoggedIn": session.IsLoggedIn,
			"tokenSet":   session.TokenSet,
			"profile":    profile,
		})
	}
}
