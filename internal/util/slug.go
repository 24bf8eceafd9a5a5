// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions including
// URL slug generation with Turkish transliteration and Unicode
// normalization support.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// turkishASCII maps Turkish letters to their closest ASCII letter.
// Generic Unicode folding is not enough here: dotless ı and dotted İ
// must both land on plain "i", which no decomposition produces.
var turkishASCII = map[rune]string{
	'ç': "c", 'Ç': "c",
	'ğ': "g", 'Ğ': "g",
	'ı': "i", 'I': "i",
	'İ': "i",
	'ö': "o", 'Ö': "o",
	'ş': "s", 'Ş': "s",
	'ü': "u", 'Ü': "u",
}

var (
	// slugInvalid matches characters that cannot appear in a slug
	slugInvalid = regexp.MustCompile(`[^a-z0-9\s-]+`)
	// whitespaceRun matches runs of whitespace
	whitespaceRun = regexp.MustCompile(`\s+`)
	// hyphenRun matches consecutive hyphens
	hyphenRun = regexp.MustCompile(`-{2,}`)
)

// GenerateSlug converts human text to a URL-safe slug. It transliterates
// Turkish letters through a fixed table, lowercases, strips remaining
// diacritics via canonical decomposition, transliterates any leftover
// non-Latin script to ASCII, removes everything outside [a-z0-9 -],
// collapses whitespace and hyphen runs, and trims hyphens.
// It is pure and total: empty input yields the empty string.
func GenerateSlug(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if repl, ok := turkishASCII[r]; ok {
			sb.WriteString(repl)
		} else {
			sb.WriteRune(r)
		}
	}

	result := strings.ToLower(sb.String())

	// Decompose accented letters and drop the combining marks
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ = transform.String(t, result)

	// Non-Latin scripts (Cyrillic, Greek, CJK) survive decomposition;
	// fold them to ASCII instead of dropping the whole word.
	result = strings.ToLower(unidecode.Unidecode(result))

	result = slugInvalid.ReplaceAllString(result, "")
	result = whitespaceRun.ReplaceAllString(result, "-")
	result = hyphenRun.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}
