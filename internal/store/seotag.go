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

// ListSeoTags returns all SEO tags ordered by Turkish name.
func (s *Store) ListSeoTags(ctx context.Context) ([]model.SeoTag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name_tr, name_en, created_at FROM seo_tags ORDER BY name_tr`)
	if err != nil {
		return nil, fmt.Errorf("listing seo tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tags []model.SeoTag
	for rows.Next() {
		var t model.SeoTag
		if err := rows.Scan(&t.ID, &t.NameTR, &t.NameEN, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning seo tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// GetSeoTagByID returns an SEO tag or nil when it does not exist.
func (s *Store) GetSeoTagByID(ctx context.Context, id int64) (*model.SeoTag, error) {
	var t model.SeoTag
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name_tr, name_en, created_at FROM seo_tags WHERE id = ?`, id).
		Scan(&t.ID, &t.NameTR, &t.NameEN, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting seo tag %d: %w", id, err)
	}
	return &t, nil
}

// InsertSeoTag inserts an SEO tag and returns its new id.
func (s *Store) InsertSeoTag(ctx context.Context, t *model.SeoTag) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO seo_tags (name_tr, name_en, created_at) VALUES (?, ?, ?)`,
		t.NameTR, t.NameEN, t.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("inserting seo tag: %w", err)
	}
	return res.LastInsertId()
}

// UpdateSeoTag overwrites the names of an SEO tag.
func (s *Store) UpdateSeoTag(ctx context.Context, t *model.SeoTag) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE seo_tags SET name_tr = ?, name_en = ? WHERE id = ?`,
		t.NameTR, t.NameEN, t.ID)
	if err != nil {
		return fmt.Errorf("updating seo tag %d: %w", t.ID, err)
	}
	return nil
}

// DeleteSeoTag removes an SEO tag. Guide links cascade.
func (s *Store) DeleteSeoTag(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM seo_tags WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting seo tag %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
