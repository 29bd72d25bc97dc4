// Package auth enforces the authentication and role policies protected
// resources depend on. Policies operate on the decrypted session only;
// they perform no I/O.
package auth

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jrsteele09/go-bff-auth/internal/errors"
	"github.com/jrsteele09/go-bff-auth/sessions"
)

// RequireAuthenticated fails with ErrUnauthorized unless the session
// belongs to a logged-in user.
func RequireAuthenticated(session *sessions.Session) (*sessions.Session, error) {
	if session == nil || !session.IsLoggedIn {
		return nil, errors.ErrUnauthorized
	}
	return session, nil
}

// RequireAnyRole fails with ErrUnauthorized when not logged in, then
// with ErrForbidden unless the session holds at least one of the
// required roles. The relation is "any of", never "all of".
func RequireAnyRole(session *sessions.Session, requiredRoles ...string) (*sessions.Session, error) {
	session, err := RequireAuthenticated(session)
	if err != nil {
		return nil, err
	}
	if len(requiredRoles) == 0 {
		return nil, fmt.Errorf("%w: no roles requested", errors.ErrForbidden)
	}

	for _, role := range session.Roles() {
		if slices.Contains(requiredRoles, role) {
			return session, nil
		}
	}
	return nil, fmt.Errorf("%w: requires %s role", errors.ErrForbidden, strings.Join(requiredRoles, " or "))
}

// HasRole is the non-throwing probe: true iff RequireAnyRole with the
// single role would succeed.
func HasRole(session *sessions.Session, role string) bool {
	_, err := RequireAnyRole(session, role)
	return err == nil
}
