package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pulsesocial/pulse/pkg/httpx"
	"github.com/pulsesocial/pulse/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newCodec(t *testing.T) *jwtx.HS256Codec {
	t.Helper()
	codec, err := jwtx.NewHS256([]byte(strings.Repeat("k", 32)), "pulse-api")
	require.NoError(t, err)
	return codec
}

func signToken(t *testing.T, codec *jwtx.HS256Codec, use string, ttl time.Duration) string {
	t.Helper()
	token, err := codec.Sign(jwtx.NewClaims(
		"01USER", "alice", "alice@example.com", use,
		ttl, "pulse-api", time.Now().UTC(),
	))
	require.NoError(t, err)
	return token
}

func TestRequireAuth(t *testing.T) {
	codec := newCodec(t)

	var seen jwtx.Claims
	handler := httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var ok bool
			seen, ok = httpx.IdentityFromContext(r.Context())
			require.True(t, ok)
			w.WriteHeader(http.StatusOK)
		}),
		httpx.RequireAuth(codec),
	)

	do := func(authz string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid access token", func(t *testing.T) {
		rec := do("Bearer " + signToken(t, codec, jwtx.UseAccess, time.Minute))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "01USER", seen.Subject)
		require.Equal(t, "alice", seen.Username)
	})

	// Every failure mode must present identically to the caller.
	failures := []struct {
		name  string
		authz string
	}{
		{"missing header", ""},
		{"not bearer", "Basic YWxpY2U6cHc="},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + signToken(t, codec, jwtx.UseAccess, -time.Minute)},
		{"refresh token on protected route", "Bearer " + signToken(t, codec, jwtx.UseRefresh, time.Minute)},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(tt.authz)
			require.Equal(t, http.StatusUnauthorized, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, map[string]string{"error": "Unauthorized"}, body,
				"401 body must be uniform across failure modes")
		})
	}

	t.Run("tampered token", func(t *testing.T) {
		token := signToken(t, codec, jwtx.UseAccess, time.Minute)
		rec := do("Bearer " + token[:len(token)-2] + "xx")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestChainOrder(t *testing.T) {
	var order []string
	mk := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
		mk("outer"), mk("inner"),
	)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "inner"}, order)
}
