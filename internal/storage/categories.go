package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budget/internal/core"
)

func (r *SQLiteRepository) CreateCategory(ctx context.Context, category core.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, description, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		category.ID, category.Name, category.Description, category.Color,
		category.CreatedAt, category.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (*core.Category, error) {
	row := r.db.QueryRowContext(ctx, categorySelect+` WHERE id = ?`, id)
	category, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

func (r *SQLiteRepository) GetCategoryByName(ctx context.Context, name string) (*core.Category, error) {
	row := r.db.QueryRowContext(ctx, categorySelect+` WHERE name = ?`, name)
	category, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return category, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, categorySelect+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}

// SearchCategories matches category names containing the given fragment,
// case-insensitively.
func (r *SQLiteRepository) SearchCategories(ctx context.Context, nameFragment string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		categorySelect+` WHERE name LIKE '%' || ? || '%' COLLATE NOCASE ORDER BY name`,
		nameFragment)
	if err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, category core.Category) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, description = ?, color = ?, updated_at = ?
		WHERE id = ?`,
		category.Name, category.Description, category.Color, category.UpdatedAt, category.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

const categorySelect = `
	SELECT id, name, description, color, created_at, updated_at
	FROM categories`

func scanCategory(row rowScanner) (*core.Category, error) {
	var category core.Category
	err := row.Scan(&category.ID, &category.Name, &category.Description,
		&category.Color, &category.CreatedAt, &category.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func collectCategories(rows *sql.Rows) ([]core.Category, error) {
	var categories []core.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *category)
	}
	return categories, rows.Err()
}
