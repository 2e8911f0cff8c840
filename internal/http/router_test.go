package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pulsehttp "github.com/pulsesocial/pulse/internal/http"
	"github.com/pulsesocial/pulse/internal/service"
	"github.com/pulsesocial/pulse/internal/store/drivers/sqlite"
	"github.com/pulsesocial/pulse/pkg/cryptox"
	"github.com/pulsesocial/pulse/pkg/jwtx"
	"github.com/pulsesocial/pulse/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "pulse-http-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

// newTestRouter wires a full router against a fresh in-memory store so
// tests cover the real middleware chain, not bare handlers.
func newTestRouter(t *testing.T) (*pulsehttp.Router, *jwtx.HS256Codec) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewHS256([]byte(strings.Repeat("k", 32)), "pulse-api")
	require.NoError(t, err)

	tokens := &service.TokenService{
		Codec:      codec,
		Issuer:     "pulse-api",
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}

	logger := slogx.New(slogx.Config{Service: "pulse-test", Level: "error"})

	r := pulsehttp.NewRouter(codec, "test", st, logger)
	r.AuthService = &service.AuthService{Store: st, Tokens: tokens}
	r.UserService = &service.UserService{Store: st}
	r.ApplyRoutes()

	return r, codec
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func registerUser(t *testing.T, h http.Handler, username, email, password string) pulsehttp.AuthResponse {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	return decodeBody[pulsehttp.AuthResponse](t, rec)
}

func TestRegisterEndpoint(t *testing.T) {
	r, codec := newTestRouter(t)

	resp := registerUser(t, r, "alice", "Alice@Example.com", "correct horse battery")

	require.Equal(t, "alice", resp.User.Username)
	require.Equal(t, "alice@example.com", resp.User.Email, "email should be normalised to lowercase")
	require.Equal(t, "alice", resp.User.DisplayName)
	require.NotEmpty(t, resp.User.ID)
	require.False(t, resp.User.CreatedAt.IsZero())

	access, err := codec.Verify(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, access.Subject)
	require.Equal(t, jwtx.UseAccess, access.TokenUse)

	refresh, err := codec.Verify(resp.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, refresh.Subject)
	require.Equal(t, jwtx.UseRefresh, refresh.TokenUse)
}

func TestRegisterEndpoint_Validation(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{
			name:  "bad email",
			body:  map[string]string{"username": "bob", "email": "not-an-email", "password": "long enough pw"},
			field: "email",
		},
		{
			name:  "short password",
			body:  map[string]string{"username": "bob", "email": "bob@example.com", "password": "short"},
			field: "password",
		},
		{
			name:  "bad username",
			body:  map[string]string{"username": "x", "email": "bob@example.com", "password": "long enough pw"},
			field: "username",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, r, http.MethodPost, "/auth/register", tc.body, "")
			require.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decodeBody[pulsehttp.ValidationErrorResponse](t, rec)
			require.Equal(t, "Validation failed", resp.Error)
			require.Contains(t, resp.Fields, tc.field)
		})
	}
}

func TestRegisterEndpoint_Duplicates(t *testing.T) {
	r, _ := newTestRouter(t)

	registerUser(t, r, "carol", "carol@example.com", "carols password 1")

	rec := doJSON(t, r, http.MethodPost, "/auth/register", map[string]string{
		"username": "other", "email": "carol@example.com", "password": "other password 1",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Email already registered", decodeBody[map[string]string](t, rec)["error"])

	rec = doJSON(t, r, http.MethodPost, "/auth/register", map[string]string{
		"username": "carol", "email": "other@example.com", "password": "other password 1",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Username already taken", decodeBody[map[string]string](t, rec)["error"])
}

func TestLoginEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	registerUser(t, r, "dave", "dave@example.com", "daves secret pw")

	rec := doJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
		"email": "dave@example.com", "password": "daves secret pw",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[pulsehttp.AuthResponse](t, rec)
	require.Equal(t, "dave", resp.User.Username)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)

	// Wrong password and unknown email must be indistinguishable.
	for _, body := range []map[string]string{
		{"email": "dave@example.com", "password": "wrong password!"},
		{"email": "nobody@example.com", "password": "daves secret pw"},
	} {
		rec := doJSON(t, r, http.MethodPost, "/auth/login", body, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Invalid email or password", decodeBody[map[string]string](t, rec)["error"])
	}
}

func TestRefreshEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	auth := registerUser(t, r, "erin", "erin@example.com", "erins password 1")

	rec := doJSON(t, r, http.MethodPost, "/auth/refresh", map[string]string{
		"refreshToken": auth.RefreshToken,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[pulsehttp.TokenResponse](t, rec)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)

	// An access token presented as a refresh token is rejected.
	rec = doJSON(t, r, http.MethodPost, "/auth/refresh", map[string]string{
		"refreshToken": auth.AccessToken,
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid or expired refresh token", decodeBody[map[string]string](t, rec)["error"])

	rec = doJSON(t, r, http.MethodPost, "/auth/refresh", map[string]string{
		"refreshToken": "garbage.token.value",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/auth/logout", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Logged out", decodeBody[map[string]string](t, rec)["message"])
}

func TestMeEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	auth := registerUser(t, r, "frank", "frank@example.com", "franks password 1")

	t.Run("no token", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/me", nil, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Unauthorized", decodeBody[map[string]string](t, rec)["error"])
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/me", nil, auth.RefreshToken)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Unauthorized", decodeBody[map[string]string](t, rec)["error"])
	})

	t.Run("get profile", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/me", nil, auth.AccessToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		profile := decodeBody[map[string]any](t, rec)
		require.Equal(t, auth.User.ID, profile["id"])
		require.Equal(t, "frank", profile["username"])
		require.NotContains(t, profile, "passwordHash")
	})

	t.Run("update display name", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPatch, "/me", map[string]string{
			"displayName": "Frank F.",
		}, auth.AccessToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Equal(t, "Frank F.", decodeBody[map[string]any](t, rec)["displayName"])

		rec = doJSON(t, r, http.MethodGet, "/me", nil, auth.AccessToken)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Frank F.", decodeBody[map[string]any](t, rec)["displayName"])
	})

	t.Run("change password", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/me/password", map[string]string{
			"currentPassword": "wrong password!",
			"newPassword":     "franks password 2",
		}, auth.AccessToken)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Invalid password", decodeBody[map[string]string](t, rec)["error"])

		rec = doJSON(t, r, http.MethodPut, "/me/password", map[string]string{
			"currentPassword": "franks password 1",
			"newPassword":     "franks password 2",
		}, auth.AccessToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		// Only the new password logs in now.
		rec = doJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
			"email": "frank@example.com", "password": "franks password 1",
		}, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = doJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
			"email": "frank@example.com", "password": "franks password 2",
		}, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("short new password rejected", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/me/password", map[string]string{
			"currentPassword": "franks password 2",
			"newPassword":     "short",
		}, auth.AccessToken)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, decodeBody[pulsehttp.ValidationErrorResponse](t, rec).Fields, "newPassword")
	})

	t.Run("empty display name rejected", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPatch, "/me", map[string]string{
			"displayName": "   ",
		}, auth.AccessToken)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeBody[pulsehttp.ValidationErrorResponse](t, rec)
		require.Contains(t, resp.Fields, "displayName")
	})
}

func TestHealthEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/livez", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	live := decodeBody[pulsehttp.HealthResponse](t, rec)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	rec = doJSON(t, r, http.MethodGet, "/readyz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decodeBody[pulsehttp.HealthResponse](t, rec).Status)
}
