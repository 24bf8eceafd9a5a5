// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the content resolvers: cache-aside readers and
// translating writers over the store. Each resolver owns the cache keys
// of its entity kind and invalidates by prefix after every mutation.
// Not-found reads return (nil, nil); translation failures are absorbed
// and logged, never returned.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/uzmanrehber/rehber-go/internal/translate"
)

// Cache TTLs. Guides churn faster than the taxonomy around them.
const (
	categoryTTL = time.Hour
	guideTTL    = 30 * time.Minute
	tagTTL      = time.Hour
	staticsTTL  = time.Hour
)

var (
	// ErrCategoryHasGuides rejects deleting a category that still owns
	// guides. Surfaced to the admin as a validation message.
	ErrCategoryHasGuides = errors.New("category still has guides")

	// ErrDuplicateSlug maps a unique-index violation on a slug column.
	ErrDuplicateSlug = errors.New("slug already in use")

	// ErrRequiredField rejects a write with an empty primary title or name.
	ErrRequiredField = errors.New("required field is empty")
)

// Translator is the slice of the translation gateway the resolvers use.
// *translate.Translator satisfies it; tests substitute fakes.
type Translator interface {
	TranslateText(ctx context.Context, text string) translate.Result
	TranslateBundle(ctx context.Context, fields map[string]string) map[string]translate.Result
	TranslateCode(ctx context.Context, sourceLang, targetLang, code string) translate.Result
	SuggestMetadata(ctx context.Context, title, content string) (*translate.MetaSuggestion, error)
}

// sanitizeHTML strips scripts and event handlers from authored bodies
// while keeping ordinary formatting markup.
var sanitizeHTML = bluemonday.UGCPolicy().Sanitize
