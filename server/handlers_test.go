package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-bff-auth/internal/config"
	"github.com/jrsteele09/go-bff-auth/internal/utils"
	"github.com/jrsteele09/go-bff-auth/server"
	"github.com/jrsteele09/go-bff-auth/sessions"
)

const testSessionSecret = "test-session-secret-0123456789abcdef"

// testConfig overrides the environment-backed config with fixed values.
type testConfig struct {
	config.EnvVars
	config.Cors
	config.Session
	config.Oidc
	issuer       string
	clientID     string
	clientSecret string
	redirectURI  string
	baseURL      string
}

func (c testConfig) GetIssuerURL() string     { return c.issuer }
func (c testConfig) GetClientID() string      { return c.clientID }
func (c testConfig) GetClientSecret() string  { return c.clientSecret }
func (c testConfig) GetRedirectURI() string   { return c.redirectURI }
func (c testConfig) GetBaseURL() string       { return c.baseURL }
func (c testConfig) GetSessionSecret() string { return testSessionSecret }
func (c testConfig) GetEnv() string           { return "TEST" }

var _ config.Config = testConfig{}

func newTestServer(t *testing.T, cfg config.Config) *server.Server {
	t.Helper()
	s, err := server.New(cfg)
	require.NoError(t, err)
	return s
}

// sessionCookie seals a session with the shared test secret the same
// way the server's own store does.
func sessionCookie(t *testing.T, session *sessions.Session) *http.Cookie {
	t.Helper()
	store, err := sessions.NewStore("bff_session", testSessionSecret)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, store.Save(rec, req, session))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func doRequest(s *server.Server, method, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

type secretlessConfig struct{ testConfig }

func (secretlessConfig) GetSessionSecret() string { return "" }

func TestNewRequiresSessionSecret(t *testing.T) {
	_, err := server.New(secretlessConfig{})
	require.Error(t, err)
}

func TestProtectedEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig{})

	t.Run("anonymous is 401", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, server.RouteProtected, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeBody(t, rec)
		require.Equal(t, false, body["success"])
		require.Equal(t, "unauthorized", body["error"])
	})

	t.Run("garbage cookie is 401", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, server.RouteProtected,
			&http.Cookie{Name: "bff_session", Value: "tampered"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("authenticated is 200", func(t *testing.T) {
		cookie := sessionCookie(t, &sessions.Session{
			IsLoggedIn: true,
			User:       &sessions.User{Sub: "user-1", Email: "user@example.com", Roles: []string{"viewer"}},
		})
		rec := doRequest(s, http.MethodGet, server.RouteProtected, cookie)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		require.Equal(t, true, body["success"])
		user := body["user"].(map[string]any)
		require.Equal(t, "user-1", user["sub"])
		require.Equal(t, "user@example.com", user["email"])
	})
}

func TestProtectedAdminEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig{})

	t.Run("anonymous is 401", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, server.RouteProtectedAdmin, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong role is 403", func(t *testing.T) {
		cookie := sessionCookie(t, &sessions.Session{
			IsLoggedIn: true,
			User:       &sessions.User{Sub: "user-1", Roles: []string{"viewer"}},
		})
		rec := doRequest(s, http.MethodGet, server.RouteProtectedAdmin, cookie)
		require.Equal(t, http.StatusForbidden, rec.Code)
		body := decodeBody(t, rec)
		require.Contains(t, body["error"], "admin or realm-admin")
	})

	t.Run("admin role is 200", func(t *testing.T) {
		cookie := sessionCookie(t, &sessions.Session{
			IsLoggedIn: true,
			User:       &sessions.User{Sub: "user-1", Roles: []string{"admin"}},
		})
		rec := doRequest(s, http.MethodGet, server.RouteProtectedAdmin, cookie)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("realm-admin role is 200", func(t *testing.T) {
		cookie := sessionCookie(t, &sessions.Session{
			IsLoggedIn: true,
			User:       &sessions.User{Sub: "user-1", Roles: []string{"realm-admin"}},
		})
		rec := doRequest(s, http.MethodGet, server.RouteProtectedAdmin, cookie)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCallbackRejections(t *testing.T) {
	// Issuer deliberately unset: a rejected callback must never reach
	// the exchange, so no provider is needed.
	s := newTestServer(t, testConfig{})

	pending := func() *http.Cookie {
		return sessionCookie(t, &sessions.Session{State: "expected-state", PKCEVerifier: "verifier-0123456789012345678901234567890123"})
	}

	t.Run("missing code", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, server.RouteAuthCallback+"?state=expected-state", pending())
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "Invalid OIDC callback parameters")
	})

	t.Run("missing state", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, server.RouteAuthCallback+"?code=abc", pending())
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no pending login in session", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, server.RouteAuthCallback+"?code=abc&state=expected-state", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("state mismatch", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, server.RouteAuthCallback+"?code=abc&state=wrong-state", pending())
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLoginMisconfigured(t *testing.T) {
	s := newTestServer(t, testConfig{clientID: "bff-client"}) // no issuer

	rec := doRequest(s, http.MethodGet, server.RouteAuthLogin, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeBody(t, rec)
	require.NotEmpty(t, body["error"])
	require.NotEmpty(t, body["hint"])
	require.Equal(t, "bff-client", body["clientId"])
}

func TestRefreshPreconditions(t *testing.T) {
	s := newTestServer(t, testConfig{})

	t.Run("anonymous", func(t *testing.T) {
		rec := doRequest(s, http.MethodPost, server.RouteAuthRefresh, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeBody(t, rec)
		require.Equal(t, false, body["success"])
		require.Equal(t, "no refresh token available", body["error"])
	})

	t.Run("logged in without refresh token", func(t *testing.T) {
		cookie := sessionCookie(t, &sessions.Session{IsLoggedIn: true})
		rec := doRequest(s, http.MethodPost, server.RouteAuthRefresh, cookie)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestSessionEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig{})

	t.Run("anonymous", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, server.RouteAuthSession, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		require.Equal(t, false, body["isLoggedIn"])
		require.Nil(t, body["profile"])
	})

	t.Run("logged in", func(t *testing.T) {
		cookie := sessionCookie(t, &sessions.Session{
			IsLoggedIn: true,
			TokenSet:   &sessions.TokenSet{ExpiresAt: utils.Ptr(int64(1700000000)), Scope: "openid"},
			User:       &sessions.User{Sub: "user-1", Email: "user@example.com"},
		})
		rec := doRequest(s, http.MethodGet, server.RouteAuthSession, cookie)
		body := decodeBody(t, rec)
		require.Equal(t, true, body["isLoggedIn"])
		profile := body["profile"].(map[string]any)
		require.Equal(t, "user-1", profile["sub"])
		require.Equal(t, "user@example.com", profile["email"])
		tokenSet := body["tokenSet"].(map[string]any)
		require.Equal(t, float64(1700000000), tokenSet["expiresAt"])
	})
}

func TestDebugRolesEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig{})

	cookie := sessionCookie(t, &sessions.Session{
		IsLoggedIn: true,
		User:       &sessions.User{Sub: "user-1", Roles: []string{"admin", "viewer"}},
	})
	rec := doRequest(s, http.MethodGet, server.RouteDebugRoles, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, true, body["isLoggedIn"])
	require.Equal(t, float64(2), body["roleCount"])
	require.Equal(t, true, body["hasAdminRole"])
	require.Equal(t, false, body["hasRealmAdmin"])
	require.Equal(t, false, body["hasRealmManagement"])
}

func TestLogoutWithoutProvider(t *testing.T) {
	baseURL := "http://app.local"
	s := newTestServer(t, testConfig{baseURL: baseURL}) // no issuer: end-session is best-effort

	cookie := sessionCookie(t, &sessions.Session{IsLoggedIn: true, RefreshToken: "rt"})
	rec := doRequest(s, http.MethodGet, server.RouteAuthLogout, cookie)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, baseURL+"/", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Empty(t, cookies[0].Value)
	require.True(t, cookies[0].MaxAge < 0 || !cookies[0].Expires.IsZero())
}
