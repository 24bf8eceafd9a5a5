// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Guide is the main content entity: a categorized bilingual article.
// Turkish fields are authoritative; English fields mirror them and are
// populated best-effort by the translation gateway. Translated records
// whether the English title translation succeeded - other fields may be
// absent without clearing it.
type Guide struct {
	ID         int64 `json:"id"`
	CategoryID int64 `json:"category_id"`

	TitleTR   string         `json:"title_tr"`
	TitleEN   sql.NullString `json:"title_en"`
	SlugTR    string         `json:"slug_tr"`
	SlugEN    sql.NullString `json:"slug_en"`
	SummaryTR sql.NullString `json:"summary_tr"`
	SummaryEN sql.NullString `json:"summary_en"`
	ContentTR string         `json:"content_tr"`
	ContentEN sql.NullString `json:"content_en"`

	MetaDescriptionTR sql.NullString `json:"meta_description_tr"`
	MetaDescriptionEN sql.NullString `json:"meta_description_en"`
	SeoKeywordsTR     sql.NullString `json:"seo_keywords_tr"`
	SeoKeywordsEN     sql.NullString `json:"seo_keywords_en"`

	IsFeatured   bool `json:"is_featured"`
	DisplayOrder int  `json:"display_order"`
	IsActive     bool `json:"is_active"`
	Translated   bool `json:"translated"`
	ViewCount    int64 `json:"view_count"`

	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   sql.NullTime `json:"updated_at"`
	PublishedAt sql.NullTime `json:"published_at"`

	// Loaded relations (absent unless the query asked for them)
	Category   *Category   `json:"category,omitempty"`
	Tags       []Tag       `json:"tags,omitempty"`
	SeoTags    []SeoTag    `json:"seo_tags,omitempty"`
	CodeBlocks []CodeBlock `json:"code_blocks,omitempty"`
}

// Title returns the title for the requested locale, falling back to
// Turkish when the English side is absent.
func (g *Guide) Title(locale string) string {
	if IsSecondaryLocale(locale) && g.TitleEN.Valid {
		return g.TitleEN.String
	}
	return g.TitleTR
}

// Slug returns the slug for the requested locale, falling back to the
// Turkish slug when the English one is absent.
func (g *Guide) Slug(locale string) string {
	if IsSecondaryLocale(locale) && g.SlugEN.Valid {
		return g.SlugEN.String
	}
	return g.SlugTR
}

// Content returns the body for the requested locale with Turkish fallback.
func (g *Guide) Content(locale string) string {
	if IsSecondaryLocale(locale) && g.ContentEN.Valid {
		return g.ContentEN.String
	}
	return g.ContentTR
}

// RelatedGuide is an ordered link between two guides. DisplayOrder is
// the explicit display rank of the related guide.
type RelatedGuide struct {
	GuideID        int64 `json:"guide_id"`
	RelatedGuideID int64 `json:"related_guide_id"`
	DisplayOrder   int   `json:"display_order"`
}

// CodeBlock is an embedded code sample within a guide. Translations
// maps a target programming language name to the translated source.
type CodeBlock struct {
	ID             int64             `json:"id"`
	GuideID        int64             `json:"guide_id"`
	BlockID        string            `json:"block_id"`
	SourceLanguage string            `json:"source_language"`
	SourceCode     string            `json:"source_code"`
	Translations   map[string]string `json:"translations"`
	DisplayOrder   int               `json:"display_order"`
	Title          sql.NullString    `json:"title"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      sql.NullTime      `json:"updated_at"`
}
