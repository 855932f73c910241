package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"budget/internal/core"
)

func (r *SQLiteRepository) CreateRole(ctx context.Context, role core.Role) error {
	capabilities, err := marshalStrings(role.CapabilityNames)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO roles (id, name, description, capability_names, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		role.ID, role.Name, role.Description, capabilities, role.CreatedAt, role.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetRoleByName(ctx context.Context, name string) (*core.Role, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, capability_names, created_at, updated_at
		FROM roles WHERE name = ?`, name)

	role, err := scanRole(row)
	if err != nil {
		return nil, fmt.Errorf("get role by name: %w", err)
	}
	return role, nil
}

// FindRolesByIDs returns the roles matching the given IDs. Unknown IDs are
// absent from the result.
func (r *SQLiteRepository) FindRolesByIDs(ctx context.Context, ids []string) ([]core.Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, capability_names, created_at, updated_at
		FROM roles WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("find roles by ids: %w", err)
	}
	defer rows.Close()

	var roles []core.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("find roles by ids: %w", err)
		}
		roles = append(roles, *role)
	}
	return roles, rows.Err()
}

func (r *SQLiteRepository) CountRoles(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count roles: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(row rowScanner) (*core.Role, error) {
	var role core.Role
	var capabilities string
	err := row.Scan(&role.ID, &role.Name, &role.Description, &capabilities,
		&role.CreatedAt, &role.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	role.CapabilityNames, err = unmarshalStrings(capabilities)
	if err != nil {
		return nil, err
	}
	return &role, nil
}
