package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saasbase/saasbase/internal/auth"
	"github.com/saasbase/saasbase/internal/user"
	"github.com/saasbase/saasbase/pkg/jwt"
	"github.com/saasbase/saasbase/pkg/tenant"
)

func newTokens(t *testing.T) *jwt.Service {
	t.Helper()
	tokens, err := jwt.New(jwt.Config{SigningKey: testSigningKey})
	require.NoError(t, err)
	return tokens
}

// serve runs the request through the auth middleware under the given tenant
// and returns the principal the inner handler observed.
func serve(t *testing.T, tokens *jwt.Service, tenantID, bearer string) (p auth.Principal, authed bool) {
	t.Helper()

	handler := auth.Middleware(tokens, nil)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		p, authed = auth.PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req = req.WithContext(tenant.WithID(req.Context(), tenantID))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return p, authed
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	subject := uuid.NewString()

	t.Run("valid token under matching tenant authenticates", func(t *testing.T) {
		t.Parallel()

		tokens := newTokens(t)
		access, err := tokens.NewAccessToken(subject, "t1", []string{"user", "admin"})
		require.NoError(t, err)

		p, authed := serve(t, tokens, "t1", access)
		require.True(t, authed)
		assert.Equal(t, subject, p.Subject)
		assert.True(t, p.HasRole(user.RoleAdmin))
	})

	t.Run("token issued under t1 is unauthenticated under t2", func(t *testing.T) {
		t.Parallel()

		tokens := newTokens(t)
		access, err := tokens.NewAccessToken(subject, "t1", []string{"user"})
		require.NoError(t, err)

		_, authed := serve(t, tokens, "t2", access)
		assert.False(t, authed)
	})

	t.Run("missing token proceeds unauthenticated", func(t *testing.T) {
		t.Parallel()

		_, authed := serve(t, newTokens(t), "t1", "")
		assert.False(t, authed)
	})

	t.Run("malformed token proceeds unauthenticated", func(t *testing.T) {
		t.Parallel()

		_, authed := serve(t, newTokens(t), "t1", "garbage")
		assert.False(t, authed)
	})

	t.Run("refresh token is not an access credential", func(t *testing.T) {
		t.Parallel()

		tokens := newTokens(t)
		refresh, err := tokens.NewRefreshToken(subject, "t1")
		require.NoError(t, err)

		_, authed := serve(t, tokens, "t1", refresh)
		assert.False(t, authed)
	})

	t.Run("unknown role names are dropped", func(t *testing.T) {
		t.Parallel()

		tokens := newTokens(t)
		access, err := tokens.NewAccessToken(subject, "t1", []string{"user", "superuser"})
		require.NoError(t, err)

		p, authed := serve(t, tokens, "t1", access)
		require.True(t, authed)
		assert.Equal(t, []user.Role{user.RoleUser}, p.Roles)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("authenticated passes", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{Subject: "u1"}))
		rec := httptest.NewRecorder()

		auth.RequireAuth(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unauthenticated gets 401 envelope", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		auth.RequireAuth(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "authentication required")
	})
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guard := auth.RequireRole(user.RoleAdmin)

	t.Run("admin passes", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		req = req.WithContext(auth.WithPrincipal(req.Context(),
			auth.Principal{Subject: "u1", Roles: []user.Role{user.RoleAdmin}}))
		rec := httptest.NewRecorder()

		guard(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("plain user gets 403", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		req = req.WithContext(auth.WithPrincipal(req.Context(),
			auth.Principal{Subject: "u1", Roles: []user.Role{user.RoleUser}}))
		rec := httptest.NewRecorder()

		guard(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated gets 401", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		guard(next).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
