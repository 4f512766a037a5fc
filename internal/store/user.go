package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/bazaar-api/internal/domain"
)

// Identity is the authorization-relevant slice of a user record: who they
// are, which roles they currently hold, and whether the account may act.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Roles  domain.RoleSet
	Active bool
}

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user. The user must already carry HashedPassword.
	// Returns ErrEmailExists if the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID, including roles.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by email, including the password hash and roles.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns users ordered by creation time.
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)

	// SetActive enables or disables an account.
	// Returns ErrUserNotFound if the user does not exist.
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// SetRoles replaces the user's roles.
	// Returns ErrUserNotFound if the user does not exist.
	SetRoles(ctx context.Context, id uuid.UUID, roles domain.RoleSet) error

	// LoadIdentity reads the current roles and active flag in a single query.
	// It runs on every authenticated request.
	// Returns ErrUserNotFound if the user does not exist.
	LoadIdentity(ctx context.Context, id uuid.UUID) (*Identity, error)
}
