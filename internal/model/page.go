// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// StaticPage is a slugged bilingual page outside the guide catalog
// (about, contact, legal notices).
type StaticPage struct {
	ID        int64          `json:"id"`
	TitleTR   string         `json:"title_tr"`
	TitleEN   sql.NullString `json:"title_en"`
	SlugTR    string         `json:"slug_tr"`
	SlugEN    sql.NullString `json:"slug_en"`
	ContentTR string         `json:"content_tr"`
	ContentEN sql.NullString `json:"content_en"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt sql.NullTime   `json:"updated_at"`
}

// SiteSetting is a key/value configuration row editable by the admin.
type SiteSetting struct {
	ID        int64        `json:"id"`
	Key       string       `json:"key"`
	Value     string       `json:"value"`
	UpdatedAt sql.NullTime `json:"updated_at"`
}

// VisitorLog is a captured page view. Statistics over these rows are
// computed elsewhere; the core only appends and prunes.
type VisitorLog struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Path      string    `json:"path"`
	Locale    string    `json:"locale"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	Device    string    `json:"device"`
	IPHash    string    `json:"ip_hash"`
	CreatedAt time.Time `json:"created_at"`
}
