package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/bazaar-api/internal/store"
)

// IdentityLoader is the slice of store.UserStore the identity resolver needs.
type IdentityLoader interface {
	LoadIdentity(ctx context.Context, id uuid.UUID) (*store.Identity, error)
}

// IdentityResolver maps a token subject to the account's current state.
type IdentityResolver interface {
	// Resolve returns the identity for subject, ErrIdentityNotFound when no
	// such account exists, or ErrIdentityInactive when it may not act.
	Resolve(ctx context.Context, subject string) (*store.Identity, error)
}

type identityResolver struct {
	loader IdentityLoader
}

// NewIdentityResolver creates an IdentityResolver backed by loader.
func NewIdentityResolver(loader IdentityLoader) IdentityResolver {
	return &identityResolver{loader: loader}
}

// Resolve implements IdentityResolver.
func (r *identityResolver) Resolve(ctx context.Context, subject string) (*store.Identity, error) {
	id, err := uuid.Parse(subject)
	if err != nil || id == uuid.Nil {
		return nil, ErrIdentityNotFound
	}

	identity, err := r.loader.LoadIdentity(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}

	if !identity.Active || identity.Roles.IsEmpty() {
		return nil, ErrIdentityInactive
	}

	return identity, nil
}
