// Package pkce implements the Proof Key for Code Exchange pair used to
// bind an authorization code to the browser session that requested it
// (RFC 7636, S256 only).
package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

const (
	// MinVerifierLength and MaxVerifierLength are the bounds RFC 7636
	// places on a code verifier.
	MinVerifierLength = 43
	MaxVerifierLength = 128

	verifierBytes = 48 // 48 random bytes encode to 64 base64url characters
)

// GenerateVerifier returns a cryptographically random code verifier.
// The result is base64url text, so it always satisfies the verifier
// charset [A-Za-z0-9-._~].
func GenerateVerifier() (string, error) {
	b := make([]byte, verifierBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("pkce generate verifier: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DeriveChallenge computes the S256 code challenge for a verifier:
// base64url(SHA-256(verifier)) without padding. Deterministic; the only
// failure is a verifier outside the RFC 7636 constraints.
func DeriveChallenge(verifier string) (string, error) {
	if err := ValidateVerifier(verifier); err != nil {
		return "", err
	}
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:]), nil
}

// ValidateVerifier checks the RFC 7636 length and charset constraints.
func ValidateVerifier(verifier string) error {
	if len(verifier) < MinVerifierLength || len(verifier) > MaxVerifierLength {
		return fmt.Errorf("pkce verifier length must be between %d and %d, got %d",
			MinVerifierLength, MaxVerifierLength, len(verifier))
	}
	for i := 0; i < len(verifier); i++ {
		if !isVerifierChar(verifier[i]) {
			return fmt.Errorf("pkce verifier contains invalid character %q", verifier[i])
		}
	}
	return nil
}

func isVerifierChar(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~':
		return true
	}
	return false
}

// GenerateState returns a collision-resistant CSRF state value for the
// authorization request.
func GenerateState() string {
	return uuid.NewString()
}
