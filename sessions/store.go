package sessions

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/jrsteele09/go-bff-auth/internal/errors"
)

const (
	// MinSecretLength is the minimum session secret size in bytes.
	MinSecretLength = 32

	keyDerivationContext = "bff-session-encryption"
)

// Store seals sessions into an authenticated-encrypted cookie and opens
// them again on the next request. Tampered, corrupt or missing
// envelopes all open as a fresh anonymous session: an unreadable cookie
// means "not logged in", not a request failure.
type Store struct {
	cookieName string
	aead       cipher.AEAD
}

// NewStore builds a session store from the configured secret. The
// secret must hold at least 32 bytes; failing that is a startup error,
// never a per-request one. The AES-256-GCM key is derived from the
// secret with HKDF-SHA256.
func NewStore(cookieName, secret string) (*Store, error) {
	if cookieName == "" {
		return nil, fmt.Errorf("session cookie name is required")
	}
	if len(secret) < MinSecretLength {
		return nil, errors.Wrapf(errors.ErrMissingSessionSecret,
			"session secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}

	key := make([]byte, 32)
	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyDerivationContext))
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM cipher: %w", err)
	}

	return &Store{cookieName: cookieName, aead: aead}, nil
}

// CookieName returns the configured session cookie name.
func (s *Store) CookieName() string {
	return s.cookieName
}

// Open decrypts and authenticates the session envelope from the request
// cookie. Absent, corrupt or tampered envelopes yield a fresh empty
// session.
func (s *Store) Open(r *http.Request) *Session {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return &Session{}
	}

	plaintext, err := s.open(cookie.Value)
	if err != nil {
		return &Session{}
	}

	session := &Session{}
	if err := json.Unmarshal(plaintext, session); err != nil {
		return &Session{}
	}
	return session
}

// Save serializes and seals the full session and sets it as an
// http-only, SameSite=Lax cookie, marked secure when served over TLS.
// The previous envelope is fully replaced.
func (s *Store) Save(w http.ResponseWriter, r *http.Request, session *Session) error {
	plaintext, err := json.Marshal(session)
	if err != nil {
		return errors.Wrapf(errors.ErrSessionSealFailed, "marshal session")
	}

	envelope, err := s.seal(plaintext)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    envelope,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Destroy clears the in-memory session fields and expires the cookie
// immediately, so a reused request object cannot observe stale state.
func (s *Store) Destroy(w http.ResponseWriter, session *Session) {
	session.Clear()
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// seal encrypts the plaintext with a random nonce prepended to the
// ciphertext, base64url-encoded for cookie transport.
func (s *Store) seal(plaintext []byte) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Wrapf(errors.ErrSessionSealFailed, "generate nonce")
	}
	ciphertext := s.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

func (s *Store) open(envelope string) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(envelope)
	if err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize+s.aead.Overhead() {
		return nil, fmt.Errorf("envelope too short")
	}
	plaintext, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("open envelope: %w", err)
	}
	return plaintext, nil
}

func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}
