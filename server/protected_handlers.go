package server

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-bff-auth/auth"
	"github.com/jrsteele09/go-bff-auth/sessions"
)

// IndexHandler reports service identity and the browsable entry points.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"app":     s.config.GetAppName(),
			"login":   RouteAuthLogin,
			"session": RouteAuthSession,
		})
	}
}

// ProtectedHandler is the example resource behind the authentication
// guard.
func (s *Server) ProtectedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())

		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"message":   "This is a protected API endpoint",
			"user":      userSummary(session),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"data": map[string]any{
				"secret": "Only authenticated users can see this data",
				"items": []map[string]any{
					{"id": 1, "name": "Protected Resource 1"},
					{"id": 2, "name": "Protected Resource 2"},
					{"id": 3, "name": "Protected Resource 3"},
				},
			},
		})
	}
}

// ProtectedAdminHandler is the example resource behind the role guard.
func (s *Server) ProtectedAdminHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())

		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"message":   "This is an admin-only API endpoint",
			"user":      userSummary(session),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"adminData": map[string]any{
				"secret": "Only admins can access this endpoint",
				"actions": []string{
					"User Management",
					"Role Assignment",
					"System Configuration",
					"Audit Logs",
				},
			},
		})
	}
}

// DebugRolesHandler exposes the role view of the current session for
// troubleshooting role mappings at the provider.
func (s *Server) DebugRolesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.store.Open(r)
		roles := session.Roles()
		if roles == nil {
			roles = []string{}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"isLoggedIn":         session.IsLoggedIn,
			"user":               session.User,
			"roles":              roles,
			"roleCount":          len(roles),
			"hasAdminRole":       auth.HasRole(session, "admin"),
			"hasRealmAdmin":      auth.HasRole(session, "realm-admin"),
			"hasRealmManagement": auth.HasRole(session, "realm-management"),
			"allRoles":           roles,
		})
	}
}

func userSummary(session *sessions.Session) map[string]any {
	summary := map[string]any{"sub": "", "email": "", "roles": []string{}}
	if session == nil || session.User == nil {
		return summary
	}
	summary["sub"] = session.User.Sub
	summary["email"] = session.User.Email
	if session.User.Roles != nil {
		summary["roles"] = session.User.Roles
	}
	return summary
}
