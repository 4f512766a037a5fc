package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/platform/logger"
	"github.com/phrazzld/bazaar-api/internal/store"
)

// UserByEmailGetter is the slice of store.UserStore the credential verifier needs.
type UserByEmailGetter interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// CredentialVerifier checks a login identifier and secret.
type CredentialVerifier interface {
	// Verify returns the matching active user. Unknown email, wrong password,
	// and an account that may not act all return ErrInvalidCredentials.
	// Any other error is an infrastructure failure.
	Verify(ctx context.Context, email, password string) (*domain.User, error)
}

type credentialVerifier struct {
	users     UserByEmailGetter
	passwords PasswordVerifier
	dummyHash string
}

var _ CredentialVerifier = (*credentialVerifier)(nil)

// NewCredentialVerifier creates a CredentialVerifier. hasher produces the
// dummy hash compared against when the email is unknown; it should use the
// same cost as stored hashes so both failure paths take comparable time.
func NewCredentialVerifier(
	users UserByEmailGetter,
	passwords PasswordVerifier,
	hasher PasswordHasher,
) (CredentialVerifier, error) {
	if users == nil || passwords == nil || hasher == nil {
		return nil, errors.New("credential verifier dependencies cannot be nil")
	}

	seed := make([]byte, 16)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("failed to generate dummy password: %w", err)
	}
	dummyHash, err := hasher.Hash(hex.EncodeToString(seed))
	if err != nil {
		return nil, fmt.Errorf("failed to create dummy hash: %w", err)
	}

	return &credentialVerifier{
		users:     users,
		passwords: passwords,
		dummyHash: dummyHash,
	}, nil
}

// Verify implements CredentialVerifier.
func (v *credentialVerifier) Verify(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContext(ctx)

	user, err := v.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		_ = v.passwords.Compare(v.dummyHash, password)
		log.Debug("login rejected", "reason", "unknown_identifier")
		return nil, ErrInvalidCredentials
	}

	if err := v.passwords.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login rejected", "reason", "wrong_secret", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	if !user.Active || user.Roles.IsEmpty() {
		log.Debug("login rejected", "reason", "inactive", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
