package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/bazaar-api/internal/api/middleware"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/service/auth"
	"github.com/phrazzld/bazaar-api/internal/store"
	"github.com/phrazzld/bazaar-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// panickingTokens blows up on Validate.
type panickingTokens struct {
	auth.TokenService
}

func (panickingTokens) Validate(context.Context, string) (*auth.Claims, error) {
	panic("token parser exploded")
}

// failingResolver returns err for every subject.
type failingResolver struct {
	err error
}

func (f failingResolver) Resolve(context.Context, string) (*store.Identity, error) {
	return nil, f.err
}

// capture records the principal seen by the next handler.
type capture struct {
	called    bool
	principal auth.Principal
	found     bool
}

func (c *capture) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.principal, c.found = auth.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func serve(t *testing.T, mw *middleware.AuthMiddleware, header string) (*capture, *httptest.ResponseRecorder) {
	t.Helper()
	c := &capture{}
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	mw.Authenticate(c.handler()).ServeHTTP(rec, req)
	return c, rec
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	users := testutils.NewInMemoryUserStore()
	tokens := testutils.NewTestTokenService(t)
	mw := middleware.NewAuthMiddleware(tokens, auth.NewIdentityResolver(users))

	active := testutils.MustCreateUser(t, users, "active@example.com", domain.RoleUser, domain.RoleAdmin)
	inactive := testutils.MustCreateUser(t, users, "inactive@example.com")
	require.NoError(t, users.SetActive(context.Background(), inactive.ID, false))
	ghost, err := domain.NewUser("ghost@example.com", testutils.TestPassword)
	require.NoError(t, err)

	expired := testutils.IssueToken(t, testutils.NewTestTokenServiceAt(t, active.CreatedAt.AddDate(0, 0, -1)), active)

	testCases := []struct {
		name          string
		header        string
		wantPrincipal bool
	}{
		{name: "no header"},
		{name: "valid token", header: testutils.AuthHeader(t, tokens, active), wantPrincipal: true},
		{name: "lowercase scheme", header: "bearer " + testutils.IssueToken(t, tokens, active), wantPrincipal: true},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz"},
		{name: "bearer without token", header: "Bearer "},
		{name: "garbage token", header: "Bearer not.a.jwt"},
		{name: "expired token", header: "Bearer " + expired},
		{name: "inactive account", header: testutils.AuthHeader(t, tokens, inactive)},
		{name: "unknown subject", header: testutils.AuthHeader(t, tokens, ghost)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c, rec := serve(t, mw, tc.header)

			assert.True(t, c.called, "next handler must always run")
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tc.wantPrincipal, c.found)
			if tc.wantPrincipal {
				assert.Equal(t, active.ID, c.principal.UserID)
				assert.Equal(t, active.Email, c.principal.Email)
				assert.True(t, c.principal.Active)
			}
		})
	}
}

func TestAuthenticate_UsesCurrentRoles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users := testutils.NewInMemoryUserStore()
	tokens := testutils.NewTestTokenService(t)
	mw := middleware.NewAuthMiddleware(tokens, auth.NewIdentityResolver(users))

	user := testutils.MustCreateUser(t, users, "user@example.com", domain.RoleUser, domain.RoleAdmin)
	header := testutils.AuthHeader(t, tokens, user)
	require.NoError(t, users.SetRoles(ctx, user.ID, domain.NewRoleSet(domain.RoleUser)))

	c, _ := serve(t, mw, header)

	require.True(t, c.found)
	assert.False(t, c.principal.HasRole(domain.RoleAdmin), "revoked role must not come from the token")
	assert.Equal(t, 1, users.IdentityLoads)
}

func TestAuthenticate_DegradesToAnonymous(t *testing.T) {
	t.Parallel()
	users := testutils.NewInMemoryUserStore()
	tokens := testutils.NewTestTokenService(t)
	user := testutils.MustCreateUser(t, users, "user@example.com")
	header := testutils.AuthHeader(t, tokens, user)

	t.Run("panic while validating", func(t *testing.T) {
		t.Parallel()
		mw := middleware.NewAuthMiddleware(panickingTokens{}, auth.NewIdentityResolver(users))

		c, rec := serve(t, mw, header)

		assert.True(t, c.called)
		assert.False(t, c.found)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("identity store failure", func(t *testing.T) {
		t.Parallel()
		mw := middleware.NewAuthMiddleware(tokens, failingResolver{err: errors.New("connection refused")})

		c, _ := serve(t, mw, header)

		assert.True(t, c.called)
		assert.False(t, c.found)
	})
}
