package auth

import (
	"context"
	"time"

	"github.com/phrazzld/bazaar-api/internal/domain"
)

// TokenService issues and validates signed bearer tokens.
type TokenService interface {
	// Issue creates a token for subject carrying a snapshot of roles.
	// It fails only when the signing key is unusable.
	Issue(ctx context.Context, subject string, roles domain.RoleSet) (*IssuedToken, error)

	// Validate verifies the signature and then the expiry of tokenString.
	// Returns the claims, or one of ErrTokenExpired, ErrTokenMalformed,
	// ErrTokenUnsupported.
	Validate(ctx context.Context, tokenString string) (*Claims, error)
}

// IssuedToken is a freshly signed token and its expiry.
type IssuedToken struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims is the verified content of a token.
type Claims struct {
	// Subject is the user ID the token was issued for.
	Subject string

	// Roles is the role snapshot taken at issuance. The identity store is
	// authoritative; this copy is informational.
	Roles domain.RoleSet

	IssuedAt  time.Time
	ExpiresAt time.Time
}
