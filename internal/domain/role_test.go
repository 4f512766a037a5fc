package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoleSetIsOrderIndependent(t *testing.T) {
	a := NewRoleSet(RoleAdmin, RoleUser)
	b := NewRoleSet(RoleUser, RoleAdmin, RoleUser)

	assert.True(t, a.Equal(b))
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []string{"ADMIN", "USER"}, b.Strings())
	assert.Equal(t, "[ADMIN,USER]", b.String())
}

func TestRoleSetHas(t *testing.T) {
	s := NewRoleSet(RoleUser)

	assert.True(t, s.Has(RoleUser))
	assert.False(t, s.Has(RoleAdmin))
	assert.True(t, s.HasAny(RoleAdmin, RoleUser))
	assert.False(t, RoleSet{}.HasAny(RoleUser))
	assert.True(t, RoleSet{}.IsEmpty())
}

func TestRoleSetRolesReturnsCopy(t *testing.T) {
	s := NewRoleSet(RoleUser)
	roles := s.Roles()
	roles[0] = RoleAdmin

	assert.True(t, s.Has(RoleUser))
	assert.False(t, s.Has(RoleAdmin))
}

func TestParseRoles(t *testing.T) {
	s, err := ParseRoles([]string{"user", " Admin "})
	require.NoError(t, err)
	assert.True(t, s.Equal(NewRoleSet(RoleAdmin, RoleUser)))

	_, err = ParseRoles([]string{"USER", "ROOT"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownRole))
}
