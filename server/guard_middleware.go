package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-bff-auth/auth"
	"github.com/jrsteele09/go-bff-auth/internal/errors"
	"github.com/jrsteele09/go-bff-auth/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the authenticated session for handlers
// downstream of the guard middleware.
const ContextKeySession ContextKey = "session"

// RequireAuthenticated is middleware that rejects anonymous callers
// with 401 and injects the session into the request context otherwise.
func (s *Server) RequireAuthenticated() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session, err := auth.RequireAuthenticated(s.store.Open(r))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeySession, session)))
		}
	}
}

// RequireAnyRole is middleware that additionally demands one of the
// given roles; 401 for anonymous callers, 403 for authenticated callers
// holding none of them.
func (s *Server) RequireAnyRole(requiredRoles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session, err := auth.RequireAnyRole(s.store.Open(r), requiredRoles...)
			if err != nil {
				if errors.Is(err, errors.ErrForbidden) {
					writeJSON(w, http.StatusForbidden, errorBody(err.Error()))
					return
				}
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeySession, session)))
		}
	}
}

// sessionFromContext returns the session a guard middleware injected.
func sessionFromContext(ctx context.Context) *sessions.Session {
	session, _ := ctx.Value(ContextKeySession).(*sessions.Session)
	return session
}
