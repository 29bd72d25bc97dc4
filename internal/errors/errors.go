package errors

import (
	"errors"
	"fmt"
)

// Common error types for the BFF authentication server
var (
	// Configuration errors
	ErrMissingSessionSecret = errors.New("missing or undersized session secret")
	ErrMissingOidcConfig    = errors.New("missing OIDC configuration")
	ErrDiscoveryFailed      = errors.New("provider discovery failed")

	// Callback errors
	ErrInvalidCallback = errors.New("invalid OIDC callback parameters")
	ErrExchangeFailed  = errors.New("authorization code exchange failed")

	// Token errors
	ErrMalformedToken = errors.New("malformed token")
	ErrNoRefreshToken = errors.New("no refresh token available")
	ErrRefreshFailed  = errors.New("token refresh failed")

	// Guard errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Session errors
	ErrSessionSealFailed = errors.New("failed to seal session envelope")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
