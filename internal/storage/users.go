package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budget/internal/core"
)

func (r *SQLiteRepository) CreateUser(ctx context.Context, user core.User) error {
	roleIDs, err := marshalStrings(user.RoleIDs)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, email, active, firstname, lastname, role_ids, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash, user.Email, user.Active,
		user.Firstname, user.Lastname, roleIDs, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (*core.User, error) {
	row := r.db.QueryRowContext(ctx, userSelect+` WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	row := r.db.QueryRowContext(ctx, userSelect+` WHERE username = ?`, username)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

func (r *SQLiteRepository) ListUsers(ctx context.Context, limit, offset int) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx, userSelect+` ORDER BY username LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *SQLiteRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (r *SQLiteRepository) UpdateUser(ctx context.Context, user core.User) error {
	roleIDs, err := marshalStrings(user.RoleIDs)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET username = ?, password_hash = ?, email = ?, active = ?, firstname = ?, lastname = ?, role_ids = ?, updated_at = ?
		WHERE id = ?`,
		user.Username, user.PasswordHash, user.Email, user.Active,
		user.Firstname, user.Lastname, roleIDs, user.UpdatedAt, user.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

const userSelect = `
	SELECT id, username, password_hash, email, active, firstname, lastname, role_ids, created_at, updated_at
	FROM users`

func scanUser(row rowScanner) (*core.User, error) {
	var user core.User
	var roleIDs string
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Email,
		&user.Active, &user.Firstname, &user.Lastname, &roleIDs,
		&user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	user.RoleIDs, err = unmarshalStrings(roleIDs)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
