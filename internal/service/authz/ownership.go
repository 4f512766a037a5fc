package authz

import (
	"github.com/google/uuid"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/service/auth"
)

// OwnershipPolicy decides who may mutate an owned resource. The owner
// always may. OverrideRoles names roles that may act on any resource;
// it is empty unless configured.
type OwnershipPolicy struct {
	OverrideRoles domain.RoleSet
}

// DefaultOwnershipPolicy returns the owner-only policy.
func DefaultOwnershipPolicy() OwnershipPolicy {
	return OwnershipPolicy{}
}

// CheckOwner returns ErrForbidden unless principal owns the resource or
// holds an override role.
func (o OwnershipPolicy) CheckOwner(principal auth.Principal, ownerID uuid.UUID) error {
	if principal.UserID != uuid.Nil && principal.UserID == ownerID {
		return nil
	}
	if principal.Roles.HasAny(o.OverrideRoles.Roles()...) {
		return nil
	}
	return ErrForbidden
}
