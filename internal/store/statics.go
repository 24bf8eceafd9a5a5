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

const pageColumns = `id, title_tr, title_en, slug_tr, slug_en,
	content_tr, content_en, is_active, created_at, updated_at`

func scanPage(row interface{ Scan(...any) error }) (*model.StaticPage, error) {
	var p model.StaticPage
	err := row.Scan(&p.ID, &p.TitleTR, &p.TitleEN, &p.SlugTR, &p.SlugEN,
		&p.ContentTR, &p.ContentEN, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListStaticPages returns static pages ordered by Turkish title.
func (s *Store) ListStaticPages(ctx context.Context, activeOnly bool) ([]model.StaticPage, error) {
	query := `SELECT ` + pageColumns + ` FROM static_pages`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY title_tr`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing static pages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pages []model.StaticPage
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning static page: %w", err)
		}
		pages = append(pages, *p)
	}
	return pages, rows.Err()
}

// GetStaticPageByID returns a page or nil when it does not exist.
func (s *Store) GetStaticPageByID(ctx context.Context, id int64) (*model.StaticPage, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM static_pages WHERE id = ?`, id)
	p, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting static page %d: %w", id, err)
	}
	return p, nil
}

// GetStaticPageBySlug returns an active page by its locale-specific
// slug, or nil when no row matches.
func (s *Store) GetStaticPageBySlug(ctx context.Context, slug, locale string) (*model.StaticPage, error) {
	column := "slug_tr"
	if model.IsSecondaryLocale(locale) {
		column = "slug_en"
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+pageColumns+` FROM static_pages WHERE `+column+` = ? AND is_active = 1`, slug)
	p, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting static page by slug %q: %w", slug, err)
	}
	return p, nil
}

// InsertStaticPage inserts a page and returns its new id.
func (s *Store) InsertStaticPage(ctx context.Context, p *model.StaticPage) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO static_pages (title_tr, title_en, slug_tr, slug_en,
			content_tr, content_en, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.TitleTR, p.TitleEN, p.SlugTR, p.SlugEN,
		p.ContentTR, p.ContentEN, p.IsActive, p.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("inserting static page: %w", err)
	}
	return res.LastInsertId()
}

// UpdateStaticPage overwrites all mutable fields of a page.
func (s *Store) UpdateStaticPage(ctx context.Context, p *model.StaticPage) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE static_pages SET title_tr = ?, title_en = ?, slug_tr = ?, slug_en = ?,
			content_tr = ?, content_en = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		p.TitleTR, p.TitleEN, p.SlugTR, p.SlugEN,
		p.ContentTR, p.ContentEN, p.IsActive, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("updating static page %d: %w", p.ID, err)
	}
	return nil
}

// DeleteStaticPage removes a page.
func (s *Store) DeleteStaticPage(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM static_pages WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting static page %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListSettings returns all site settings ordered by key.
func (s *Store) ListSettings(ctx context.Context) ([]model.SiteSetting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, key, value, updated_at FROM site_settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var settings []model.SiteSetting
	for rows.Next() {
		var st model.SiteSetting
		if err := rows.Scan(&st.ID, &st.Key, &st.Value, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

// GetSetting returns a setting by key, or nil when it does not exist.
func (s *Store) GetSetting(ctx context.Context, key string) (*model.SiteSetting, error) {
	var st model.SiteSetting
	err := s.db.QueryRowContext(ctx,
		`SELECT id, key, value, updated_at FROM site_settings WHERE key = ?`, key).
		Scan(&st.ID, &st.Key, &st.Value, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting setting %q: %w", key, err)
	}
	return &st, nil
}

// UpsertSetting sets a setting value, inserting the key when absent.
func (s *Store) UpsertSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO site_settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("upserting setting %q: %w", key, err)
	}
	return nil
}
