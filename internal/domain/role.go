package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Role is a capability tag granted to a user.
type Role string

const (
	// RoleUser is granted to every registered account.
	RoleUser Role = "USER"

	// RoleAdmin grants access to the administrative routes.
	RoleAdmin Role = "ADMIN"
)

// knownRoles lists every role the system understands.
var knownRoles = []Role{RoleUser, RoleAdmin}

// ParseRole converts a role name into a Role. Matching is case-insensitive.
func ParseRole(name string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(name)))
	if !slices.Contains(knownRoles, r) {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}
	return r, nil
}

// RoleSet is an immutable, duplicate-free set of roles. Its order is
// canonical (sorted), so two sets with the same members compare equal
// regardless of the order they were built from.
type RoleSet struct {
	roles []Role
}

// NewRoleSet builds a RoleSet from roles in any order, dropping duplicates.
func NewRoleSet(roles ...Role) RoleSet {
	out := slices.Clone(roles)
	slices.Sort(out)
	return RoleSet{roles: slices.Compact(out)}
}

// ParseRoles builds a RoleSet from role names, failing on the first unknown name.
func ParseRoles(names []string) (RoleSet, error) {
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		r, err := ParseRole(name)
		if err != nil {
			return RoleSet{}, err
		}
		roles = append(roles, r)
	}
	return NewRoleSet(roles...), nil
}

// Has reports whether the set contains r.
func (s RoleSet) Has(r Role) bool {
	_, found := slices.BinarySearch(s.roles, r)
	return found
}

// HasAny reports whether the set contains at least one of roles.
func (s RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Len returns the number of roles in the set.
func (s RoleSet) Len() int { return len(s.roles) }

// IsEmpty reports whether the set has no roles.
func (s RoleSet) IsEmpty() bool { return len(s.roles) == 0 }

// Roles returns a copy of the roles in canonical order.
func (s RoleSet) Roles() []Role { return slices.Clone(s.roles) }

// Strings returns the role names in canonical order.
func (s RoleSet) Strings() []string {
	out := make([]string, len(s.roles))
	for i, r := range s.roles {
		out[i] = string(r)
	}
	return out
}

// Equal reports whether both sets hold the same roles.
func (s RoleSet) Equal(other RoleSet) bool {
	return slices.Equal(s.roles, other.roles)
}

// String implements fmt.Stringer.
func (s RoleSet) String() string {
	return "[" + strings.Join(s.Strings(), ",") + "]"
}
