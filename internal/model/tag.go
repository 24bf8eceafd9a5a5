// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Tag is a reader-facing label attached to guides.
type Tag struct {
	ID        int64          `json:"id"`
	NameTR    string         `json:"name_tr"`
	NameEN    sql.NullString `json:"name_en"`
	SlugTR    string         `json:"slug_tr"`
	SlugEN    sql.NullString `json:"slug_en"`
	Color     sql.NullString `json:"color"`
	CreatedAt time.Time      `json:"created_at"`
}

// Name returns the tag name for the requested locale with Turkish fallback.
func (t *Tag) Name(locale string) string {
	if IsSecondaryLocale(locale) && t.NameEN.Valid {
		return t.NameEN.String
	}
	return t.NameTR
}

// SeoTag is a crawler-facing label. Unlike Tag it carries no slug: it
// never appears in a URL.
type SeoTag struct {
	ID        int64          `json:"id"`
	NameTR    string         `json:"name_tr"`
	NameEN    sql.NullString `json:"name_en"`
	CreatedAt time.Time      `json:"created_at"`
}

// Name returns the SEO tag name for the requested locale with Turkish fallback.
func (t *SeoTag) Name(locale string) string {
	if IsSecondaryLocale(locale) && t.NameEN.Valid {
		return t.NameEN.String
	}
	return t.NameTR
}
