// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Category groups guides. Names, slugs and descriptions exist per
// locale; the English side is populated by the translation gateway and
// may be absent.
type Category struct {
	ID            int64          `json:"id"`
	NameTR        string         `json:"name_tr"`
	NameEN        sql.NullString `json:"name_en"`
	SlugTR        string         `json:"slug_tr"`
	SlugEN        sql.NullString `json:"slug_en"`
	DescriptionTR sql.NullString `json:"description_tr"`
	DescriptionEN sql.NullString `json:"description_en"`
	Icon          sql.NullString `json:"icon"`
	DisplayOrder  int            `json:"display_order"`
	IsActive      bool           `json:"is_active"`
	GuideCount    int            `json:"guide_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     sql.NullTime   `json:"updated_at"`
}

// Name returns the category name for the requested locale, falling back
// to Turkish when the English side is absent.
func (c *Category) Name(locale string) string {
	if IsSecondaryLocale(locale) && c.NameEN.Valid {
		return c.NameEN.String
	}
	return c.NameTR
}

// Slug returns the slug for the requested locale, falling back to the
// Turkish slug when the English one is absent.
func (c *Category) Slug(locale string) string {
	if IsSecondaryLocale(locale) && c.SlugEN.Valid {
		return c.SlugEN.String
	}
	return c.SlugTR
}
