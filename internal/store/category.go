// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uzmanrehber/rehber-go/internal/model"
)

const categoryColumns = `id, name_tr, name_en, slug_tr, slug_en, description_tr, description_en,
	icon, display_order, is_active, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	err := row.Scan(
		&c.ID, &c.NameTR, &c.NameEN, &c.SlugTR, &c.SlugEN,
		&c.DescriptionTR, &c.DescriptionEN, &c.Icon,
		&c.DisplayOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories returns categories ordered by display order, with the
// count of active guides each one owns.
func (s *Store) ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	query := `
		SELECT c.id, c.name_tr, c.name_en, c.slug_tr, c.slug_en,
			c.description_tr, c.description_en, c.icon,
			c.display_order, c.is_active, c.created_at, c.updated_at,
			COUNT(g.id) AS guide_count
		FROM categories c
		LEFT JOIN guides g ON g.category_id = c.id AND g.is_active = 1`
	if activeOnly {
		query += ` WHERE c.is_active = 1`
	}
	query += ` GROUP BY c.id ORDER BY c.display_order, c.id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(
			&c.ID, &c.NameTR, &c.NameEN, &c.SlugTR, &c.SlugEN,
			&c.DescriptionTR, &c.DescriptionEN, &c.Icon,
			&c.DisplayOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
			&c.GuideCount,
		); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategoryByID returns a category, or nil when it does not exist.
func (s *Store) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category %d: %w", id, err)
	}
	return c, nil
}

// GetCategoryBySlug returns an active category by its locale-specific
// slug, or nil when no row matches.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug, locale string) (*model.Category, error) {
	column := "slug_tr"
	if model.IsSecondaryLocale(locale) {
		column = "slug_en"
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE `+column+` = ? AND is_active = 1`, slug)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category by slug %q: %w", slug, err)
	}
	return c, nil
}

// InsertCategory inserts a category and returns its new id.
func (s *Store) InsertCategory(ctx context.Context, c *model.Category) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (name_tr, name_en, slug_tr, slug_en,
			description_tr, description_en, icon, display_order, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.NameTR, c.NameEN, c.SlugTR, c.SlugEN,
		c.DescriptionTR, c.DescriptionEN, c.Icon,
		c.DisplayOrder, c.IsActive, c.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting category: %w", err)
	}
	return res.LastInsertId()
}

// UpdateCategory overwrites all mutable fields of a category.
func (s *Store) UpdateCategory(ctx context.Context, c *model.Category) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name_tr = ?, name_en = ?, slug_tr = ?, slug_en = ?,
			description_tr = ?, description_en = ?, icon = ?,
			display_order = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		c.NameTR, c.NameEN, c.SlugTR, c.SlugEN,
		c.DescriptionTR, c.DescriptionEN, c.Icon,
		c.DisplayOrder, c.IsActive, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating category %d: %w", c.ID, err)
	}
	return nil
}

// DeleteCategory removes a category. Returns false when no row existed.
func (s *Store) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting category %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CategoryExists reports whether a category row exists.
func (s *Store) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM categories WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// CategoryHasGuides reports whether any guide still references the category.
func (s *Store) CategoryHasGuides(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM guides WHERE category_id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
