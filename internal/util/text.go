// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "strings"

// MetaDescriptionMax is the hard limit for meta description fields.
const MetaDescriptionMax = 160

// TruncateMeta trims the string and hard-truncates it to max characters
// including a trailing "..." when truncation occurs. Truncation is
// rune-safe and never cuts inside a multibyte character.
func TruncateMeta(s string, max int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	cut := strings.TrimRight(string(runes[:max-3]), " \t\n")
	return cut + "..."
}

// StripHTML removes markup tags and collapses whitespace, leaving plain
// text suitable for feeding into metadata prompts.
func StripHTML(s string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			sb.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
