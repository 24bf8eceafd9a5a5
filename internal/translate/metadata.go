// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/uzmanrehber/rehber-go/internal/util"
)

const metadataSystemPrompt = `You are an SEO assistant for a Turkish technical publishing site.
Given an article title and body, produce SEO metadata in the article's own language.
Respond with exactly two lines in this format:
META_DESCRIPTION: <a single-sentence description of at most 160 characters>
KEYWORDS: <5-8 comma-separated keywords>
Return nothing else.`

// MetaSuggestion is provider-produced SEO metadata for an article.
type MetaSuggestion struct {
	Description string
	Keywords    string
}

// SuggestMetadata asks the provider for a meta description and keyword
// list for the given article. The description is truncated to the
// standard 160-character limit regardless of what the provider returns.
// A reply with neither expected line yields an empty suggestion, not an
// error; only provider failures surface as errors.
func (t *Translator) SuggestMetadata(ctx context.Context, title, content string) (*MetaSuggestion, error) {
	prompt := fmt.Sprintf("Title: %s\n\nArticle:\n%s", title, util.StripHTML(content))
	out, err := t.call(ctx, metadataSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("suggesting metadata: %w", err)
	}
	return parseMetaSuggestion(out), nil
}

// parseMetaSuggestion extracts the two expected line-prefixed fields.
// Unknown lines are ignored so minor provider chatter does not break
// the parse.
func parseMetaSuggestion(out string) *MetaSuggestion {
	var s MetaSuggestion
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "META_DESCRIPTION:"):
			desc := strings.TrimSpace(strings.TrimPrefix(line, "META_DESCRIPTION:"))
			s.Description = util.TruncateMeta(desc, util.MetaDescriptionMax)
		case strings.HasPrefix(line, "KEYWORDS:"):
			s.Keywords = strings.TrimSpace(strings.TrimPrefix(line, "KEYWORDS:"))
		}
	}
	return &s
}
