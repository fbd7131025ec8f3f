// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package sec_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/locafleet/rental-api/internal/platform/sec"
)

/*
TestHashPassword verifies the bcrypt round trip: a hash never equals its
input, verifies against the original password, and rejects everything else.
*/
func TestHashPassword(t *testing.T) {
	hash, err := sec.HashPassword("s3cretpass", bcrypt.MinCost)
	require.NoError(t, err)

	// 1. Hashes are salted and never equal to the plain text.
	assert.NotEqual(t, "s3cretpass", hash)
	other, err := sec.HashPassword("s3cretpass", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)

	// 2. Verification.
	assert.True(t, sec.CheckPasswordHash("s3cretpass", hash))
	assert.False(t, sec.CheckPasswordHash("S3cretpass", hash))
	assert.False(t, sec.CheckPasswordHash("", hash))
	assert.False(t, sec.CheckPasswordHash("s3cretpass", "not-a-bcrypt-hash"))
}

/*
TestGenerateSecureToken verifies token entropy, encoding, and uniqueness.
*/
func TestGenerateSecureToken(t *testing.T) {
	seen := map[string]bool{}

	for i := 0; i < 64; i++ {
		token, err := sec.GenerateSecureToken(32)
		require.NoError(t, err)

		// 32 bytes of entropy survive the URL-safe encoding intact.
		raw, err := base64.RawURLEncoding.DecodeString(token)
		require.NoError(t, err)
		assert.Len(t, raw, 32)

		assert.False(t, seen[token], "tokens must never repeat")
		seen[token] = true
	}
}

/*
TestHashToken verifies that token digests are deterministic, hex-encoded
SHA-256, and distinct per token.
*/
func TestHashToken(t *testing.T) {
	first := sec.HashToken("token-a")

	assert.Len(t, first, 64)
	assert.Equal(t, first, sec.HashToken("token-a"))
	assert.NotEqual(t, first, sec.HashToken("token-b"))
	assert.NotEqual(t, "token-a", first)
}

/*
TestRolePermissions pins the permission matrix. Any change here is a
production authorization change and must be deliberate.
*/
func TestRolePermissions(t *testing.T) {
	tests := []struct {
		role    sec.Role
		granted []sec.Permission
		denied  []sec.Permission
	}{
		{
			role: sec.RoleAdmin,
			granted: []sec.Permission{
				sec.PermissionRead, sec.PermissionWrite, sec.PermissionDelete,
				sec.PermissionManageUsers, sec.PermissionViewReports, sec.PermissionBackup,
			},
		},
		{
			role: sec.RoleManager,
			granted: []sec.Permission{
				sec.PermissionRead, sec.PermissionWrite, sec.PermissionDelete,
				sec.PermissionViewReports, sec.PermissionBackup,
			},
			denied: []sec.Permission{sec.PermissionManageUsers},
		},
		{
			role:    sec.RoleEmployee,
			granted: []sec.Permission{sec.PermissionRead, sec.PermissionWrite, sec.PermissionViewReports},
			denied:  []sec.Permission{sec.PermissionDelete, sec.PermissionManageUsers, sec.PermissionBackup},
		},
		{
			role:    sec.RoleViewer,
			granted: []sec.Permission{sec.PermissionRead},
			denied: []sec.Permission{
				sec.PermissionWrite, sec.PermissionDelete,
				sec.PermissionManageUsers, sec.PermissionViewReports, sec.PermissionBackup,
			},
		},
	}

	for _, tc := range tests {
		t.Run(string(tc.role), func(t *testing.T) {
			assert.True(t, tc.role.Valid())
			assert.ElementsMatch(t, tc.granted, tc.role.Permissions())

			for _, permission := range tc.granted {
				assert.True(t, tc.role.Can(permission), "%s should grant %s", tc.role, permission)
			}
			for _, permission := range tc.denied {
				assert.False(t, tc.role.Can(permission), "%s should deny %s", tc.role, permission)
			}
		})
	}
}

/*
TestUnknownRoleDeniesEverything verifies the deny-by-default stance for
roles outside the static table.
*/
func TestUnknownRoleDeniesEverything(t *testing.T) {
	unknown := sec.Role("superuser")

	assert.False(t, unknown.Valid())
	assert.Empty(t, unknown.Permissions())
	for _, role := range sec.Roles() {
		for _, permission := range role.Permissions() {
			assert.False(t, unknown.Can(permission))
		}
	}
}

/*
TestPrincipalCan verifies the nil-safe authorization check on principals.
*/
func TestPrincipalCan(t *testing.T) {
	manager := &sec.Principal{UserID: "u-1", Username: "marie.dubois", Role: sec.RoleManager}

	assert.True(t, manager.Can(sec.PermissionDelete))
	assert.False(t, manager.Can(sec.PermissionManageUsers))

	var anonymous *sec.Principal
	assert.False(t, anonymous.Can(sec.PermissionRead))
}
