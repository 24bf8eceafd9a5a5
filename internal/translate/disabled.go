// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"context"
	"errors"
)

// ErrDisabled is returned by operations that cannot degrade gracefully
// when no translation provider is configured.
var ErrDisabled = errors.New("translate: no provider configured")

// Disabled is a no-op provider used when the API key is absent. Every
// field comes back untranslated so content can still be published in
// the source language.
type Disabled struct{}

func (Disabled) TranslateText(_ context.Context, text string) Result {
	return Result{SourceText: text}
}

func (Disabled) TranslateBundle(_ context.Context, fields map[string]string) map[string]Result {
	results := make(map[string]Result, len(fields))
	for name, text := range fields {
		results[name] = Result{SourceText: text}
	}
	return results
}

func (Disabled) TranslateCode(_ context.Context, _, _, code string) Result {
	return Result{SourceText: code}
}

func (Disabled) SuggestMetadata(context.Context, string, string) (*MetaSuggestion, error) {
	return nil, ErrDisabled
}
