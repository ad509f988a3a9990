// Copyright (c) 2026 Housika. All rights reserved.

package sec

import "strings"

// # User Roles

// Role is the authorization level granted to an account.
type Role string

const (
	// Default role for registered renters
	RoleTenant Role = "tenant"

	// Acts for a real estate company on individual listings
	RoleAgent Role = "agent"

	// Organisation publishing many properties
	RoleRealEstateCompany Role = "real_estate_company"

	// Owns and lists properties
	RoleLandlord Role = "landlord"

	// Both rents and lists properties
	RoleDual Role = "dual"

	// Support staff; restricted grantor of roles
	RoleCustomerCare Role = "customer_care"

	// Platform administration
	RoleAdmin Role = "admin"

	// Reserved top role, only obtainable once through the bootstrap gate
	RoleCEO Role = "ceo"
)

// # Role Hierarchy

// hierarchy is the single canonical seniority order, most junior first.
// Every allow-list in the codebase is expressed in terms of these constants.
var hierarchy = []Role{
	RoleTenant,
	RoleAgent,
	RoleRealEstateCompany,
	RoleLandlord,
	RoleDual,
	RoleCustomerCare,
	RoleAdmin,
	RoleCEO,
}

// Hierarchy returns a copy of the canonical role order, most junior first.
func Hierarchy() []Role {
	out := make([]Role, len(hierarchy))
	copy(out, hierarchy)
	return out
}

// legacyAliases maps spellings found in older account records to roles.
var legacyAliases = map[string]Role{
	"user":                RoleTenant,
	"customer care":       RoleCustomerCare,
	"real estate company": RoleRealEstateCompany,
}

// ParseRole normalises a stored or requested role string.
//
// Unknown values are returned unchanged so that [Rank] reports them as -1;
// they are never coerced to a default.
func ParseRole(raw string) Role {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := legacyAliases[normalized]; ok {
		return alias
	}
	return Role(normalized)
}

// Rank returns the index of r in the hierarchy, or -1 if r is unrecognized.
//
// Callers must treat -1 as a hard authorization failure.
func Rank(r Role) int {
	for index, candidate := range hierarchy {
		if candidate == r {
			return index
		}
	}
	return -1
}

// IsKnown reports whether r appears in the hierarchy.
func (r Role) IsKnown() bool {
	return Rank(r) >= 0
}

// CanActOnTarget reports whether actor strictly outranks target.
//
// Equal rank is never sufficient, and an unknown role on either side denies.
func CanActOnTarget(actor, target Role) bool {
	actorRank := Rank(actor)
	targetRank := Rank(target)
	if actorRank < 0 || targetRank < 0 {
		return false
	}
	return actorRank > targetRank
}

// VisibleRoles returns the roles an actor may list: its own rank and below.
// The reserved top role sees every role. Unknown actors see nothing.
func VisibleRoles(actor Role) []Role {
	actorRank := Rank(actor)
	if actorRank < 0 {
		return nil
	}
	if actor == RoleCEO {
		return Hierarchy()
	}
	return Hierarchy()[:actorRank+1]
}

// Outranking returns the roles strictly above target. Unknown targets are
// outranked by nobody.
func Outranking(target Role) []Role {
	targetRank := Rank(target)
	if targetRank < 0 {
		return nil
	}
	return Hierarchy()[targetRank+1:]
}

// RoleStrings converts roles to their wire form.
func RoleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for index, role := range roles {
		out[index] = string(role)
	}
	return out
}
