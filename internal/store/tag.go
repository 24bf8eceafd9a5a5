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

const tagColumns = `id, name_tr, name_en, slug_tr, slug_en, color, created_at`

func scanTag(row interface{ Scan(...any) error }) (*model.Tag, error) {
	var t model.Tag
	err := row.Scan(&t.ID, &t.NameTR, &t.NameEN, &t.SlugTR, &t.SlugEN, &t.Color, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTags returns all tags ordered by Turkish name.
func (s *Store) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags ORDER BY name_tr`)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tags []model.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}

// GetTagByID returns a tag or nil when it does not exist.
func (s *Store) GetTagByID(ctx context.Context, id int64) (*model.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ?`, id)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting tag %d: %w", id, err)
	}
	return t, nil
}

// GetTagBySlug returns a tag by its locale-specific slug, or nil.
func (s *Store) GetTagBySlug(ctx context.Context, slug, locale string) (*model.Tag, error) {
	column := "slug_tr"
	if model.IsSecondaryLocale(locale) {
		column = "slug_en"
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE `+column+` = ?`, slug)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting tag by slug %q: %w", slug, err)
	}
	return t, nil
}

// ListGuidesByTag returns the tag's active guides, newest first.
func (s *Store) ListGuidesByTag(ctx context.Context, tagID int64) ([]model.Guide, error) {
	return s.listGuides(ctx, `
		SELECT `+guideColumnsPrefixed("g")+`
		FROM guides g
		JOIN guide_tags gt ON gt.guide_id = g.id
		WHERE gt.tag_id = ? AND g.is_active = 1
		ORDER BY g.created_at DESC`, tagID)
}

// InsertTag inserts a tag and returns its new id.
func (s *Store) InsertTag(ctx context.Context, t *model.Tag) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (name_tr, name_en, slug_tr, slug_en, color, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.NameTR, t.NameEN, t.SlugTR, t.SlugEN, t.Color, t.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("inserting tag: %w", err)
	}
	return res.LastInsertId()
}

// UpdateTag overwrites all mutable fields of a tag.
func (s *Store) UpdateTag(ctx context.Context, t *model.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tags SET name_tr = ?, name_en = ?, slug_tr = ?, slug_en = ?, color = ?
		WHERE id = ?`,
		t.NameTR, t.NameEN, t.SlugTR, t.SlugEN, t.Color, t.ID)
	if err != nil {
		return fmt.Errorf("updating tag %d: %w", t.ID, err)
	}
	return nil
}

// DeleteTag removes a tag. Guide links cascade.
func (s *Store) DeleteTag(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting tag %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
