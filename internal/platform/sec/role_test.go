// Copyright (c) 2026 Housika. All rights reserved.

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/housika/housika-api/internal/platform/sec"
)

/*
TestCanActOnTarget_StrictSeniority checks that equal rank never suffices.
*/
func TestCanActOnTarget_StrictSeniority(t *testing.T) {
	for _, role := range sec.Hierarchy() {
		assert.False(t, sec.CanActOnTarget(role, role), "role %s acted on itself", role)
	}

	assert.True(t, sec.CanActOnTarget(sec.RoleAdmin, sec.RoleCustomerCare))
	assert.True(t, sec.CanActOnTarget(sec.RoleCEO, sec.RoleAdmin))
	assert.False(t, sec.CanActOnTarget(sec.RoleCustomerCare, sec.RoleAdmin))
	assert.False(t, sec.CanActOnTarget(sec.RoleTenant, sec.RoleLandlord))
}

/*
TestCanActOnTarget_UnknownRoleFailsClosed verifies -1 ranks deny.
*/
func TestCanActOnTarget_UnknownRoleFailsClosed(t *testing.T) {
	assert.Equal(t, -1, sec.Rank("unknown"))
	assert.False(t, sec.CanActOnTarget("unknown", sec.RoleTenant))
	assert.False(t, sec.CanActOnTarget(sec.RoleCEO, "unknown"))
	assert.False(t, sec.CanActOnTarget("", ""))
}

/*
TestRank_FollowsHierarchy checks indexes and ordering.
*/
func TestRank_FollowsHierarchy(t *testing.T) {
	assert.Equal(t, 0, sec.Rank(sec.RoleTenant))
	assert.Equal(t, len(sec.Hierarchy())-1, sec.Rank(sec.RoleCEO))
	assert.Less(t, sec.Rank(sec.RoleLandlord), sec.Rank(sec.RoleDual))
	assert.Less(t, sec.Rank(sec.RoleDual), sec.Rank(sec.RoleCustomerCare))
}

/*
TestParseRole_LegacySpellings maps stored legacy values.
*/
func TestParseRole_LegacySpellings(t *testing.T) {
	tests := []struct {
		raw  string
		want sec.Role
	}{
		{"customer care", sec.RoleCustomerCare},
		{"Real Estate Company", sec.RoleRealEstateCompany},
		{"user", sec.RoleTenant},
		{" Landlord ", sec.RoleLandlord},
		{"wizard", sec.Role("wizard")},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, sec.ParseRole(tt.raw))
		})
	}
	assert.False(t, sec.ParseRole("wizard").IsKnown())
}

/*
TestVisibleRoles limits listing to the actor's rank.
*/
func TestVisibleRoles(t *testing.T) {
	assert.Equal(t, []sec.Role{sec.RoleTenant}, sec.VisibleRoles(sec.RoleTenant))
	assert.Len(t, sec.VisibleRoles(sec.RoleCEO), len(sec.Hierarchy()))
	assert.NotContains(t, sec.VisibleRoles(sec.RoleCustomerCare), sec.RoleAdmin)
	assert.Contains(t, sec.VisibleRoles(sec.RoleCustomerCare), sec.RoleCustomerCare)
	assert.Nil(t, sec.VisibleRoles("unknown"))
}

func TestOutranking(t *testing.T) {
	assert.Equal(t, []sec.Role{sec.RoleAdmin, sec.RoleCEO}, sec.Outranking(sec.RoleCustomerCare))
	assert.Empty(t, sec.Outranking(sec.RoleCEO))
	assert.Len(t, sec.Outranking(sec.RoleTenant), len(sec.Hierarchy())-1)
	assert.Nil(t, sec.Outranking("unknown"))

	for _, role := range sec.Outranking(sec.RoleLandlord) {
		assert.True(t, sec.CanActOnTarget(role, sec.RoleLandlord), role)
	}
}

/*
TestPasswordHash round-trips bcrypt.
*/
func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("correct horse")
	assert.NoError(t, err)
	assert.True(t, sec.CheckPasswordHash("correct horse", hash))
	assert.False(t, sec.CheckPasswordHash("wrong horse", hash))
}

/*
TestGenerateOTP produces numeric codes of the requested width.
*/
func TestGenerateOTP(t *testing.T) {
	code, err := sec.GenerateOTP(6)
	assert.NoError(t, err)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}
}
