package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/platform/logger"
	"github.com/phrazzld/bazaar-api/internal/service/auth"
	"github.com/phrazzld/bazaar-api/internal/store"
)

// UserService provides account registration and administration.
type UserService interface {
	// Register creates an active account holding RoleUser.
	// Returns a domain.ErrValidation error for bad input and
	// store.ErrEmailExists when the email is taken.
	Register(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// ListUsers returns a page of users.
	ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error)

	// SetActive enables or disables an account. It takes effect on the
	// account's next request.
	SetActive(ctx context.Context, actor auth.Principal, id uuid.UUID, active bool) error

	// SetRoles replaces an account's roles. The set must not be empty.
	SetRoles(ctx context.Context, actor auth.Principal, id uuid.UUID, roles domain.RoleSet) error
}

type userServiceImpl struct {
	users  store.UserStore
	hasher auth.PasswordHasher
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users store.UserStore, hasher auth.PasswordHasher, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userServiceImpl{
		users:  users,
		hasher: hasher,
		logger: logger.With("component", "user_service"),
	}
}

// Register implements UserService.
func (s *userServiceImpl) Register(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	user.HashedPassword = hash
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, store.ErrEmailExists) {
			log.Error("failed to create user", "error", err)
		}
		return nil, err
	}

	log.Info("user registered", "user_id", user.ID)
	return user, nil
}

// GetUser implements UserService.
func (s *userServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers implements UserService.
func (s *userServiceImpl) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	limit, offset = normalizePage(limit, offset)
	return s.users.List(ctx, limit, offset)
}

// SetActive implements UserService.
func (s *userServiceImpl) SetActive(ctx context.Context, actor auth.Principal, id uuid.UUID, active bool) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !active && actor.UserID == id {
		return ErrSelfModification
	}
	if err := s.users.SetActive(ctx, id, active); err != nil {
		return err
	}

	log.Info("account active flag changed",
		"actor", actor.UserID,
		"user_id", id,
		"active", active)
	return nil
}

// SetRoles implements UserService.
func (s *userServiceImpl) SetRoles(ctx context.Context, actor auth.Principal, id uuid.UUID, roles domain.RoleSet) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if roles.IsEmpty() {
		return fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrEmptyRoles)
	}
	if actor.UserID == id && actor.HasRole(domain.RoleAdmin) && !roles.Has(domain.RoleAdmin) {
		return ErrSelfModification
	}
	if err := s.users.SetRoles(ctx, id, roles); err != nil {
		return err
	}

	log.Info("account roles changed",
		"actor", actor.UserID,
		"user_id", id,
		"roles", roles.String())
	return nil
}
