// Package auth resolves effective permissions from role references and
// issues and validates bearer tokens.
package auth

import (
	"context"
	"fmt"
	"sort"

	"budget/internal/core"
)

const (
	// RolePrefix tags role-derived authorities apart from plain capabilities.
	RolePrefix = "ROLE_"

	// DefaultRole is embedded in tokens for users with no assigned roles.
	DefaultRole = "USER"
)

// RoleStore supplies role records for a set of role IDs. Unknown IDs are
// simply absent from the result, not an error.
type RoleStore interface {
	FindRolesByIDs(ctx context.Context, ids []string) ([]core.Role, error)
}

// Authorities is a set of resolved permission tags: role tags plus
// capability names. It is recomputed per request and never cached.
type Authorities map[string]struct{}

func (a Authorities) Has(name string) bool {
	_, ok := a[name]
	return ok
}

func (a Authorities) HasAny(names ...string) bool {
	for _, name := range names {
		if a.Has(name) {
			return true
		}
	}
	return false
}

// Resolver derives effective authorities from a user's role references.
// It is stateless; every call hits the role store.
type Resolver struct {
	roles RoleStore
}

func NewResolver(roles RoleStore) *Resolver {
	return &Resolver{roles: roles}
}

// DeriveAuthorities resolves role references and unions one "ROLE_"+name tag
// per role with every capability name those roles carry. An empty or fully
// unresolvable reference set yields an empty set, not an error: the caller
// denies access on an empty set.
func (r *Resolver) DeriveAuthorities(ctx context.Context, roleIDs []string) (Authorities, error) {
	authorities := make(Authorities)
	if len(roleIDs) == 0 {
		return authorities, nil
	}

	roles, err := r.roles.FindRolesByIDs(ctx, roleIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}

	for _, role := range roles {
		authorities[RolePrefix+role.Name] = struct{}{}
		for _, capability := range role.CapabilityNames {
			authorities[capability] = struct{}{}
		}
	}
	return authorities, nil
}

// RoleNames returns the names of all resolved roles.
func (r *Resolver) RoleNames(ctx context.Context, roleIDs []string) (map[string]struct{}, error) {
	names := make(map[string]struct{})
	if len(roleIDs) == 0 {
		return names, nil
	}

	roles, err := r.roles.FindRolesByIDs(ctx, roleIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}
	for _, role := range roles {
		names[role.Name] = struct{}{}
	}
	return names, nil
}

// CapabilityNames returns the union of capability names across all
// resolved roles.
func (r *Resolver) CapabilityNames(ctx context.Context, roleIDs []string) (map[string]struct{}, error) {
	capabilities := make(map[string]struct{})
	if len(roleIDs) == 0 {
		return capabilities, nil
	}

	roles, err := r.roles.FindRolesByIDs(ctx, roleIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}
	for _, role := range roles {
		for _, capability := range role.CapabilityNames {
			capabilities[capability] = struct{}{}
		}
	}
	return capabilities, nil
}

// PrimaryRole picks the single role embedded in an authentication token.
// Role names come from a set, so the pick must be deterministic: the
// lexicographically smallest name wins, and a roleless user falls back to
// DefaultRole.
func (r *Resolver) PrimaryRole(ctx context.Context, roleIDs []string) (string, error) {
	names, err := r.RoleNames(ctx, roleIDs)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return DefaultRole, nil
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	return sorted[0], nil
}

// HasRole reports whether the role references resolve to the named role.
func (r *Resolver) HasRole(ctx context.Context, roleIDs []string, roleName string) (bool, error) {
	names, err := r.RoleNames(ctx, roleIDs)
	if err != nil {
		return false, err
	}
	_, ok := names[roleName]
	return ok, nil
}

// HasCapability reports whether the role references grant the named capability.
func (r *Resolver) HasCapability(ctx context.Context, roleIDs []string, capability string) (bool, error) {
	capabilities, err := r.CapabilityNames(ctx, roleIDs)
	if err != nil {
		return false, err
	}
	_, ok := capabilities[capability]
	return ok, nil
}
