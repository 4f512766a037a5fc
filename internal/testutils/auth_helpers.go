package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/bazaar-api/internal/config"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/service/auth"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TestJWTSecret is a signing key for tests only.
const TestJWTSecret = "test-jwt-secret-that-is-32-chars-long"

// TestPassword satisfies the password policy.
const TestPassword = "correct-horse-battery"

// DefaultAuthConfig returns auth settings suitable for tests.
func DefaultAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            TestJWTSecret,
		TokenLifetimeMinutes: 60,
		BcryptCost:           bcrypt.MinCost,
	}
}

// NewTestTokenService returns a token service signing with TestJWTSecret.
func NewTestTokenService(t *testing.T) auth.TokenService {
	t.Helper()
	svc, err := auth.NewTokenService(DefaultAuthConfig())
	require.NoError(t, err, "failed to create test token service")
	return svc
}

// NewTestTokenServiceAt is NewTestTokenService with a frozen clock.
func NewTestTokenServiceAt(t *testing.T, now time.Time) auth.TokenService {
	t.Helper()
	svc, err := auth.NewTokenServiceWithClock(TestJWTSecret, time.Hour, func() time.Time { return now })
	require.NoError(t, err, "failed to create test token service")
	return svc
}

// NewTestHasher returns a bcrypt hasher at the minimum cost.
func NewTestHasher(t *testing.T) *auth.BcryptHasher {
	t.Helper()
	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return hasher
}

// IssueToken issues a token for user carrying its current roles.
func IssueToken(t *testing.T, tokens auth.TokenService, user *domain.User) string {
	t.Helper()
	issued, err := tokens.Issue(context.Background(), user.ID.String(), user.Roles)
	require.NoError(t, err, "failed to issue test token")
	return issued.Token
}

// AuthHeader returns an Authorization header value for user.
func AuthHeader(t *testing.T, tokens auth.TokenService, user *domain.User) string {
	t.Helper()
	return "Bearer " + IssueToken(t, tokens, user)
}
