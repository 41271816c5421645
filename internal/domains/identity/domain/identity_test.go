package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Grants(t *testing.T) {
	cashier := Role{Name: "kasir", Permissions: []Permission{PermOrdersRead, PermOrdersPay}}
	admin := Role{Name: "admin", Permissions: []Permission{PermAll}}

	assert.True(t, cashier.Grants(PermOrdersPay))
	assert.False(t, cashier.Grants(PermOrdersCancel))
	assert.True(t, admin.Grants(PermUsersManage))
}

func TestRole_Validate(t *testing.T) {
	role := Role{Name: " front desk ", Permissions: []Permission{"orders.read", "orders.read", " orders.create"}}
	require.NoError(t, role.Validate())
	assert.Equal(t, "front desk", role.Name)
	assert.Equal(t, []Permission{PermOrdersRead, PermOrdersCreate}, role.Permissions)

	bad := Role{Name: "x", Permissions: []Permission{"orders.delete"}}
	require.ErrorIs(t, bad.Validate(), ErrUnknownPermission)
	require.ErrorIs(t, (&Role{}).Validate(), ErrEmptyName)
}

func TestUser_Password(t *testing.T) {
	user := User{Username: "Admin", RoleID: 1}
	require.ErrorIs(t, user.SetPassword("short"), ErrWeakPassword)
	require.NoError(t, user.SetPassword("rahasia123"))
	require.NoError(t, user.Validate())

	assert.Equal(t, "admin", user.Username)
	assert.NotEqual(t, "rahasia123", user.PasswordHash)
	assert.True(t, user.CheckPassword("rahasia123"))
	assert.False(t, user.CheckPassword("rahasia124"))
	assert.False(t, user.CheckPassword(""))
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	assert.True(t, Session{ExpiresAt: now}.Expired(now))
	assert.False(t, Session{ExpiresAt: now.Add(time.Second)}.Expired(now))
}

func TestPrincipal_CanNil(t *testing.T) {
	var p *Principal
	assert.False(t, p.Can(PermOrdersRead))
}
