package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"budget/internal/core"
)

// SeedDefaultRoles creates the USER and ADMIN roles on first startup.
// It is a no-op when any role already exists.
func (r *SQLiteRepository) SeedDefaultRoles(ctx context.Context) error {
	count, err := r.CountRoles(ctx)
	if err != nil {
		return fmt.Errorf("seed default roles: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	defaults := []core.Role{
		{
			ID:          uuid.NewString(),
			Name:        "USER",
			Description: "Standard user with basic permissions",
			CapabilityNames: []string{
				"CREATE_TRANSACTION",
				"VIEW_OWN_TRANSACTIONS",
				"VIEW_CATEGORIES",
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          uuid.NewString(),
			Name:        "ADMIN",
			Description: "Administrator with full system access",
			CapabilityNames: []string{
				"CREATE_TRANSACTION",
				"VIEW_ALL_TRANSACTIONS",
				"DELETE_TRANSACTIONS",
				"MANAGE_USERS",
				"MANAGE_CATEGORIES",
				"MANAGE_ROLES",
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	for _, role := range defaults {
		if err := r.CreateRole(ctx, role); err != nil {
			return fmt.Errorf("seed default roles: %w", err)
		}
	}

	slog.InfoContext(ctx, "Default roles seeded", "count", len(defaults))
	return nil
}
