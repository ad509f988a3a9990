// Copyright (c) 2026 Housika. All rights reserved.

/*
Package access decides whether an actor may perform a role-sensitive action.

Rank comparisons live in [sec]; this package adds the self-service transition
table, the direct-assignment allow-lists and the one-shot gate for the
reserved role. Every list here is built from the [sec] role constants.
*/
package access

import (
	"context"
	"fmt"
	"slices"

	"github.com/housika/housika-api/internal/platform/sec"
)

// # Allow-lists

var (
	// transitions lists the roles a bearer may voluntarily move to.
	transitions = map[sec.Role][]sec.Role{
		sec.RoleTenant:            {sec.RoleLandlord, sec.RoleDual, sec.RoleRealEstateCompany, sec.RoleAgent},
		sec.RoleLandlord:          {sec.RoleRealEstateCompany, sec.RoleAgent},
		sec.RoleRealEstateCompany: {sec.RoleLandlord, sec.RoleAgent, sec.RoleTenant},
	}

	// registrable roles may be chosen at sign-up without the gate.
	registrable = []sec.Role{sec.RoleTenant, sec.RoleLandlord, sec.RoleDual}

	// restrictedGrants is all a restricted grantor may hand out.
	restrictedGrants = []sec.Role{sec.RoleDual, sec.RoleLandlord, sec.RoleRealEstateCompany}

	broadGrantors      = []sec.Role{sec.RoleAdmin, sec.RoleCEO}
	restrictedGrantors = []sec.Role{sec.RoleCustomerCare}
	accountCreators    = []sec.Role{sec.RoleAdmin, sec.RoleCustomerCare, sec.RoleCEO}
)

// Resolver evaluates role transitions and grants.
type Resolver struct {
	gate ReservedRoleGate
}

// NewResolver wires the reserved-role gate into a resolver.
func NewResolver(gate ReservedRoleGate) *Resolver {
	return &Resolver{gate: gate}
}

/*
CanSelfUpgradeTo reports whether the holder of current may become requested.

Description: Requests for the reserved role consume the one-shot gate as part
of the check, so at most one caller in the deployment's lifetime is ever told
yes. Other requests follow the transition table.

Parameters:
  - ctx: context.Context
  - current: sec.Role
  - requested: sec.Role

Returns:
  - bool: whether the transition is allowed
  - error: gate storage failure
*/
func (resolver *Resolver) CanSelfUpgradeTo(ctx context.Context, current, requested sec.Role) (bool, error) {
	if !current.IsKnown() || !requested.IsKnown() {
		return false, nil
	}
	if requested == sec.RoleCEO {
		return resolver.consumeGate(ctx)
	}
	return slices.Contains(transitions[current], requested), nil
}

/*
CanRegisterAs reports whether a new account may start with the requested role.

Parameters:
  - ctx: context.Context
  - requested: sec.Role (empty means tenant)

Returns:
  - bool
  - error: gate storage failure
*/
func (resolver *Resolver) CanRegisterAs(ctx context.Context, requested sec.Role) (bool, error) {
	if requested == "" {
		return true, nil
	}
	if requested == sec.RoleCEO {
		return resolver.consumeGate(ctx)
	}
	return slices.Contains(registrable, requested), nil
}

func (resolver *Resolver) consumeGate(ctx context.Context) (bool, error) {
	claimed, err := resolver.gate.TryConsume(ctx)
	if err != nil {
		return false, fmt.Errorf("access_gate_failed: %w", err)
	}
	return claimed, nil
}

// CanAssignRoleDirectly reports whether actor may set another account's role
// to requested. The reserved role is never assignable this way.
func CanAssignRoleDirectly(actor, requested sec.Role, actorIsRestrictedGrantor bool) bool {
	if requested == sec.RoleCEO || !requested.IsKnown() || !actor.IsKnown() {
		return false
	}
	if actorIsRestrictedGrantor {
		return slices.Contains(restrictedGrants, requested)
	}
	return slices.Contains(broadGrantors, actor)
}

// IsRestrictedGrantor reports whether role grants from the narrow list only.
func IsRestrictedGrantor(role sec.Role) bool {
	return slices.Contains(restrictedGrantors, role)
}

// AccountCreators returns the roles allowed to create accounts for others.
func AccountCreators() []sec.Role {
	return slices.Clone(accountCreators)
}

// CanCreateAccounts reports whether actor may create accounts for others.
func CanCreateAccounts(actor sec.Role) bool {
	return slices.Contains(accountCreators, actor)
}
