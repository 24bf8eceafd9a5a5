// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/uzmanrehber/rehber-go/internal/model"
)

const guideColumns = `id, category_id, title_tr, title_en, slug_tr, slug_en,
	summary_tr, summary_en, content_tr, content_en,
	meta_description_tr, meta_description_en, seo_keywords_tr, seo_keywords_en,
	is_featured, display_order, is_active, translated, view_count,
	created_at, updated_at, published_at`

func scanGuide(row interface{ Scan(...any) error }) (*model.Guide, error) {
	var g model.Guide
	err := row.Scan(
		&g.ID, &g.CategoryID, &g.TitleTR, &g.TitleEN, &g.SlugTR, &g.SlugEN,
		&g.SummaryTR, &g.SummaryEN, &g.ContentTR, &g.ContentEN,
		&g.MetaDescriptionTR, &g.MetaDescriptionEN, &g.SeoKeywordsTR, &g.SeoKeywordsEN,
		&g.IsFeatured, &g.DisplayOrder, &g.IsActive, &g.Translated, &g.ViewCount,
		&g.CreatedAt, &g.UpdatedAt, &g.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) listGuides(ctx context.Context, query string, args ...any) ([]model.Guide, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing guides: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var guides []model.Guide
	for rows.Next() {
		g, err := scanGuide(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning guide: %w", err)
		}
		guides = append(guides, *g)
	}
	return guides, rows.Err()
}

// ListGuides returns guides ordered newest first.
func (s *Store) ListGuides(ctx context.Context, activeOnly bool) ([]model.Guide, error) {
	query := `SELECT ` + guideColumns + ` FROM guides`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY created_at DESC, id DESC`
	return s.listGuides(ctx, query)
}

// ListGuidesByCategory returns a category's guides ordered by display
// order, then newest first.
func (s *Store) ListGuidesByCategory(ctx context.Context, categoryID int64, activeOnly bool) ([]model.Guide, error) {
	query := `SELECT ` + guideColumns + ` FROM guides WHERE category_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY display_order, created_at DESC`
	return s.listGuides(ctx, query, categoryID)
}

// ListFeaturedGuides returns up to count active featured guides, newest first.
func (s *Store) ListFeaturedGuides(ctx context.Context, count int) ([]model.Guide, error) {
	return s.listGuides(ctx,
		`SELECT `+guideColumns+` FROM guides
		WHERE is_active = 1 AND is_featured = 1
		ORDER BY created_at DESC LIMIT ?`, count)
}

// ListRecentGuides returns up to count active guides, newest first.
func (s *Store) ListRecentGuides(ctx context.Context, count int) ([]model.Guide, error) {
	return s.listGuides(ctx,
		`SELECT `+guideColumns+` FROM guides
		WHERE is_active = 1
		ORDER BY created_at DESC LIMIT ?`, count)
}

// GetGuideByID returns a guide with its relations loaded, or nil when
// it does not exist.
func (s *Store) GetGuideByID(ctx context.Context, id int64) (*model.Guide, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+guideColumns+` FROM guides WHERE id = ?`, id)
	g, err := scanGuide(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting guide %d: %w", id, err)
	}
	if err := s.loadGuideRelations(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// GetGuideBySlug returns an active guide by its locale-specific slug
// with relations loaded, or nil when no row matches.
func (s *Store) GetGuideBySlug(ctx context.Context, slug, locale string) (*model.Guide, error) {
	column := "slug_tr"
	if model.IsSecondaryLocale(locale) {
		column = "slug_en"
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+guideColumns+` FROM guides WHERE `+column+` = ? AND is_active = 1`, slug)
	g, err := scanGuide(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting guide by slug %q: %w", slug, err)
	}
	if err := s.loadGuideRelations(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// loadGuideRelations populates category, tags, SEO tags and code blocks.
func (s *Store) loadGuideRelations(ctx context.Context, g *model.Guide) error {
	category, err := s.GetCategoryByID(ctx, g.CategoryID)
	if err != nil {
		return err
	}
	g.Category = category

	tagRows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name_tr, t.name_en, t.slug_tr, t.slug_en, t.color, t.created_at
		FROM tags t
		JOIN guide_tags gt ON gt.tag_id = t.id
		WHERE gt.guide_id = ?
		ORDER BY t.name_tr`, g.ID)
	if err != nil {
		return fmt.Errorf("loading guide tags: %w", err)
	}
	defer func() { _ = tagRows.Close() }()
	for tagRows.Next() {
		var t model.Tag
		if err := tagRows.Scan(&t.ID, &t.NameTR, &t.NameEN, &t.SlugTR, &t.SlugEN, &t.Color, &t.CreatedAt); err != nil {
			return fmt.Errorf("scanning guide tag: %w", err)
		}
		g.Tags = append(g.Tags, t)
	}
	if err := tagRows.Err(); err != nil {
		return err
	}

	seoRows, err := s.db.QueryContext(ctx, `
		SELECT st.id, st.name_tr, st.name_en, st.created_at
		FROM seo_tags st
		JOIN guide_seo_tags gst ON gst.seo_tag_id = st.id
		WHERE gst.guide_id = ?
		ORDER BY st.name_tr`, g.ID)
	if err != nil {
		return fmt.Errorf("loading guide seo tags: %w", err)
	}
	defer func() { _ = seoRows.Close() }()
	for seoRows.Next() {
		var t model.SeoTag
		if err := seoRows.Scan(&t.ID, &t.NameTR, &t.NameEN, &t.CreatedAt); err != nil {
			return fmt.Errorf("scanning guide seo tag: %w", err)
		}
		g.SeoTags = append(g.SeoTags, t)
	}
	if err := seoRows.Err(); err != nil {
		return err
	}

	blocks, err := s.ListCodeBlocks(ctx, g.ID)
	if err != nil {
		return err
	}
	g.CodeBlocks = blocks
	return nil
}

// ListRelatedGuides returns a guide's related guides in display order.
// Inactive related guides are filtered out.
func (s *Store) ListRelatedGuides(ctx context.Context, guideID int64) ([]model.Guide, error) {
	return s.listGuides(ctx, `
		SELECT `+guideColumnsPrefixed("g")+`
		FROM guides g
		JOIN related_guides rg ON rg.related_guide_id = g.id
		WHERE rg.guide_id = ? AND g.is_active = 1
		ORDER BY rg.display_order`, guideID)
}

// guideColumnsPrefixed qualifies the guide column list with a table alias.
func guideColumnsPrefixed(alias string) string {
	cols := strings.Split(guideColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

// InsertGuide inserts a guide and returns its new id.
func (s *Store) InsertGuide(ctx context.Context, g *model.Guide) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO guides (category_id, title_tr, title_en, slug_tr, slug_en,
			summary_tr, summary_en, content_tr, content_en,
			meta_description_tr, meta_description_en, seo_keywords_tr, seo_keywords_en,
			is_featured, display_order, is_active, translated, view_count,
			created_at, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.CategoryID, g.TitleTR, g.TitleEN, g.SlugTR, g.SlugEN,
		g.SummaryTR, g.SummaryEN, g.ContentTR, g.ContentEN,
		g.MetaDescriptionTR, g.MetaDescriptionEN, g.SeoKeywordsTR, g.SeoKeywordsEN,
		g.IsFeatured, g.DisplayOrder, g.IsActive, g.Translated, g.ViewCount,
		g.CreatedAt, g.PublishedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting guide: %w", err)
	}
	return res.LastInsertId()
}

// UpdateGuide overwrites all mutable fields of a guide.
func (s *Store) UpdateGuide(ctx context.Context, g *model.Guide) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE guides SET category_id = ?, title_tr = ?, title_en = ?,
			slug_tr = ?, slug_en = ?, summary_tr = ?, summary_en = ?,
			content_tr = ?, content_en = ?,
			meta_description_tr = ?, meta_description_en = ?,
			seo_keywords_tr = ?, seo_keywords_en = ?,
			is_featured = ?, display_order = ?, is_active = ?, translated = ?,
			updated_at = ?, published_at = ?
		WHERE id = ?`,
		g.CategoryID, g.TitleTR, g.TitleEN,
		g.SlugTR, g.SlugEN, g.SummaryTR, g.SummaryEN,
		g.ContentTR, g.ContentEN,
		g.MetaDescriptionTR, g.MetaDescriptionEN,
		g.SeoKeywordsTR, g.SeoKeywordsEN,
		g.IsFeatured, g.DisplayOrder, g.IsActive, g.Translated,
		g.UpdatedAt, g.PublishedAt, g.ID,
	)
	if err != nil {
		return fmt.Errorf("updating guide %d: %w", g.ID, err)
	}
	return nil
}

// DeleteGuide removes a guide. Relation rows cascade.
func (s *Store) DeleteGuide(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM guides WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting guide %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GuideExists reports whether a guide row exists.
func (s *Store) GuideExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM guides WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// IncrementGuideViewCount bumps the popularity counter by one.
func (s *Store) IncrementGuideViewCount(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE guides SET view_count = view_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("incrementing view count for guide %d: %w", id, err)
	}
	return nil
}

// replaceLinks deletes all link rows for ownerID and inserts the given
// set inside one transaction.
func (s *Store) replaceLinks(ctx context.Context, deleteQuery, insertQuery string, ownerID int64, insert func(*sql.Stmt, int) error, count int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, deleteQuery, ownerID); err != nil {
		return fmt.Errorf("clearing links: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("preparing link insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := 0; i < count; i++ {
		if err := insert(stmt, i); err != nil {
			return fmt.Errorf("inserting link: %w", err)
		}
	}

	return tx.Commit()
}

// SetGuideTags replaces the guide's tag links with the given set.
func (s *Store) SetGuideTags(ctx context.Context, guideID int64, tagIDs []int64) error {
	return s.replaceLinks(ctx,
		`DELETE FROM guide_tags WHERE guide_id = ?`,
		`INSERT INTO guide_tags (guide_id, tag_id) VALUES (?, ?)`,
		guideID,
		func(stmt *sql.Stmt, i int) error {
			_, err := stmt.ExecContext(ctx, guideID, tagIDs[i])
			return err
		},
		len(tagIDs),
	)
}

// SetGuideSeoTags replaces the guide's SEO tag links with the given set.
func (s *Store) SetGuideSeoTags(ctx context.Context, guideID int64, seoTagIDs []int64) error {
	return s.replaceLinks(ctx,
		`DELETE FROM guide_seo_tags WHERE guide_id = ?`,
		`INSERT INTO guide_seo_tags (guide_id, seo_tag_id) VALUES (?, ?)`,
		guideID,
		func(stmt *sql.Stmt, i int) error {
			_, err := stmt.ExecContext(ctx, guideID, seoTagIDs[i])
			return err
		},
		len(seoTagIDs),
	)
}

// SetRelatedGuides replaces the guide's related-guide links. The input
// order becomes the display rank.
func (s *Store) SetRelatedGuides(ctx context.Context, guideID int64, relatedIDs []int64) error {
	return s.replaceLinks(ctx,
		`DELETE FROM related_guides WHERE guide_id = ?`,
		`INSERT INTO related_guides (guide_id, related_guide_id, display_order) VALUES (?, ?, ?)`,
		guideID,
		func(stmt *sql.Stmt, i int) error {
			_, err := stmt.ExecContext(ctx, guideID, relatedIDs[i], i)
			return err
		},
		len(relatedIDs),
	)
}

// ListRelatedGuideLinks returns the raw link rows in display order.
func (s *Store) ListRelatedGuideLinks(ctx context.Context, guideID int64) ([]model.RelatedGuide, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT guide_id, related_guide_id, display_order
		FROM related_guides WHERE guide_id = ? ORDER BY display_order`, guideID)
	if err != nil {
		return nil, fmt.Errorf("listing related guide links: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var links []model.RelatedGuide
	for rows.Next() {
		var l model.RelatedGuide
		if err := rows.Scan(&l.GuideID, &l.RelatedGuideID, &l.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scanning related guide link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// SearchGuides runs a case-insensitive substring search over titles and
// summaries in the requested locale. English searches also match the
// Turkish title so untranslated guides stay findable. Results are
// ranked by title-prefix match, then by view count.
func (s *Store) SearchGuides(ctx context.Context, query, locale string, limit int) ([]model.Guide, error) {
	needle := "%" + strings.ToLower(query) + "%"
	prefix := strings.ToLower(query) + "%"

	if model.IsSecondaryLocale(locale) {
		return s.listGuides(ctx, `
			SELECT `+guideColumns+` FROM guides
			WHERE is_active = 1 AND (
				LOWER(COALESCE(title_en, '')) LIKE ?
				OR LOWER(COALESCE(summary_en, '')) LIKE ?
				OR LOWER(title_tr) LIKE ?
			)
			ORDER BY (LOWER(COALESCE(title_en, '')) LIKE ?) DESC, view_count DESC
			LIMIT ?`,
			needle, needle, needle, prefix, limit)
	}

	return s.listGuides(ctx, `
		SELECT `+guideColumns+` FROM guides
		WHERE is_active = 1 AND (
			LOWER(title_tr) LIKE ?
			OR LOWER(COALESCE(summary_tr, '')) LIKE ?
		)
		ORDER BY (LOWER(title_tr) LIKE ?) DESC, view_count DESC
		LIMIT ?`,
		needle, needle, prefix, limit)
}

// ReplaceCodeBlocks swaps a guide's embedded code samples for the given
// ordered set.
func (s *Store) ReplaceCodeBlocks(ctx context.Context, guideID int64, blocks []model.CodeBlock) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM code_blocks WHERE guide_id = ?`, guideID); err != nil {
		return fmt.Errorf("clearing code blocks: %w", err)
	}

	for i, b := range blocks {
		translations, err := json.Marshal(b.Translations)
		if err != nil {
			return fmt.Errorf("encoding code block translations: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO code_blocks (guide_id, block_id, source_language, source_code,
				translations, display_order, title, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			guideID, b.BlockID, b.SourceLanguage, b.SourceCode,
			string(translations), i, b.Title, b.CreatedAt,
		); err != nil {
			return fmt.Errorf("inserting code block: %w", err)
		}
	}

	return tx.Commit()
}

// UpdateCodeBlockTranslations overwrites the translation map of one
// code block, addressed by its stable block id within the guide.
func (s *Store) UpdateCodeBlockTranslations(ctx context.Context, guideID int64, blockID string, translations map[string]string) error {
	encoded, err := json.Marshal(translations)
	if err != nil {
		return fmt.Errorf("encoding code block translations: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE code_blocks SET translations = ?, updated_at = CURRENT_TIMESTAMP
		WHERE guide_id = ? AND block_id = ?`,
		string(encoded), guideID, blockID)
	if err != nil {
		return fmt.Errorf("updating code block translations: %w", err)
	}
	return nil
}

// ListCodeBlocks returns a guide's code samples in display order.
func (s *Store) ListCodeBlocks(ctx context.Context, guideID int64) ([]model.CodeBlock, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guide_id, block_id, source_language, source_code,
			translations, display_order, title, created_at, updated_at
		FROM code_blocks WHERE guide_id = ? ORDER BY display_order`, guideID)
	if err != nil {
		return nil, fmt.Errorf("listing code blocks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var blocks []model.CodeBlock
	for rows.Next() {
		var b model.CodeBlock
		var translations string
		if err := rows.Scan(&b.ID, &b.GuideID, &b.BlockID, &b.SourceLanguage, &b.SourceCode,
			&translations, &b.DisplayOrder, &b.Title, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning code block: %w", err)
		}
		if err := json.Unmarshal([]byte(translations), &b.Translations); err != nil {
			return nil, fmt.Errorf("decoding code block translations: %w", err)
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}
