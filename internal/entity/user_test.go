package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserGetRolesAlwaysContainsRoleUser(t *testing.T) {
	u := NewUser("elsa", "elsa@mail.com")
	assert.Equal(t, []string{RoleUser}, u.GetRoles())

	u.SetRoles(RoleAdmin, RoleUser, RoleAdmin)
	assert.Equal(t, []string{RoleAdmin, RoleUser}, u.GetRoles())
	assert.Equal(t, RoleSet{RoleAdmin}, u.Roles, "base role is never stored")
	assert.True(t, u.IsAdmin())

	u.Roles.Remove(RoleAdmin)
	assert.False(t, u.IsAdmin())
	assert.Contains(t, u.GetRoles(), RoleUser)
}

func TestRoleSetAddIgnoresBaseRole(t *testing.T) {
	var roles RoleSet
	roles.Add(RoleUser)
	roles.Add("")
	assert.Empty(t, roles)
	assert.True(t, roles.Has(RoleUser))
}

func TestNewUserIsInactive(t *testing.T) {
	u := NewUser("magic", "magic@mail.com")
	assert.False(t, u.IsActive)
	assert.False(t, u.IsVerified)
	assert.False(t, u.CreatedAt.IsZero())
	assert.Equal(t, "magic@mail.com", u.Identifier())
}

func TestMarkVerified(t *testing.T) {
	token := "abc"
	u := NewUser("magic", "magic@mail.com")
	u.EmailVerificationToken = &token

	u.MarkVerified()

	assert.True(t, u.IsVerified)
	assert.True(t, u.IsActive)
	assert.Nil(t, u.EmailVerificationToken)
}
