package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/bazaar-api/internal/api/middleware"
	"github.com/phrazzld/bazaar-api/internal/api/shared"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/service/auth"
	"github.com/phrazzld/bazaar-api/internal/service/authz"
	"github.com/phrazzld/bazaar-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	users := testutils.NewInMemoryUserStore()
	tokens := testutils.NewTestTokenService(t)
	authn := middleware.NewAuthMiddleware(tokens, auth.NewIdentityResolver(users))
	policy := authz.MustPolicy(
		authz.PublicRoute(http.MethodGet, "/api/listings"),
		authz.Authenticated(http.MethodGet, "/api/auth/me"),
		authz.RequireRole("", "/api/admin/*", domain.RoleAdmin),
	)

	plain := testutils.MustCreateUser(t, users, "plain@example.com", domain.RoleUser)
	admin := testutils.MustCreateUser(t, users, "admin@example.com", domain.RoleUser, domain.RoleAdmin)
	// Same roles declared in the opposite order.
	reordered := testutils.MustCreateUser(t, users, "reordered@example.com", domain.RoleAdmin, domain.RoleUser)

	handler := authn.Authenticate(middleware.Authorize(policy)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	))

	testCases := []struct {
		name        string
		method      string
		path        string
		user        *domain.User
		wantStatus  int
		wantMessage string
	}{
		{name: "public without header", method: http.MethodGet, path: "/api/listings", wantStatus: http.StatusOK},
		{
			name:        "authenticated route without header",
			method:      http.MethodGet,
			path:        "/api/auth/me",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: shared.MsgAuthenticationRequired,
		},
		{
			name:        "unmatched route defaults to authenticated",
			method:      http.MethodPost,
			path:        "/api/unknown",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: shared.MsgAuthenticationRequired,
		},
		{name: "authenticated route with user", method: http.MethodGet, path: "/api/auth/me", user: plain, wantStatus: http.StatusOK},
		{
			name:        "admin route without header",
			method:      http.MethodGet,
			path:        "/api/admin/users",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: shared.MsgAuthenticationRequired,
		},
		{
			name:        "admin route with plain user",
			method:      http.MethodGet,
			path:        "/api/admin/users",
			user:        plain,
			wantStatus:  http.StatusForbidden,
			wantMessage: shared.MsgInsufficientPermission,
		},
		{name: "admin route with admin", method: http.MethodGet, path: "/api/admin/users", user: admin, wantStatus: http.StatusOK},
		{name: "role order is irrelevant", method: http.MethodPut, path: "/api/admin/users/x/roles", user: reordered, wantStatus: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.user != nil {
				req.Header.Set("Authorization", testutils.AuthHeader(t, tokens, tc.user))
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantMessage == "" {
				return
			}
			var body shared.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.wantMessage, body.Message)
			assert.Equal(t, tc.wantStatus, body.Status)
			assert.Equal(t, tc.path, body.Path)
			if tc.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
			}
		})
	}
}
