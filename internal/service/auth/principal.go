package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/store"
)

// AnonymousActor names the caller in logs when no principal is attached.
const AnonymousActor = "anonymous"

// Principal is the authenticated identity of the current request. It is
// built from the identity store on every request and is never persisted.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Roles  domain.RoleSet
	Active bool
}

// NewPrincipal builds a Principal from a resolved identity.
func NewPrincipal(identity *store.Identity) Principal {
	return Principal{
		UserID: identity.UserID,
		Email:  identity.Email,
		Roles:  identity.Roles,
		Active: identity.Active,
	}
}

// HasRole reports whether the principal currently holds r.
func (p Principal) HasRole(r domain.Role) bool {
	return p.Roles.Has(r)
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal attached to ctx, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// ActorFromContext identifies the caller for audit logs: the principal's
// user ID, or AnonymousActor.
func ActorFromContext(ctx context.Context) string {
	if p, ok := PrincipalFromContext(ctx); ok {
		return p.UserID.String()
	}
	return AnonymousActor
}
