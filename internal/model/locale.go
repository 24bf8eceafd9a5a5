// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the content entities of the bilingual guide
// catalog. Turkish is the authoritative locale; English fields are
// derived by machine translation and may be absent.
package model

// Locales.
const (
	LocaleTR = "tr"
	LocaleEN = "en"
)

// IsSecondaryLocale reports whether the locale is the derived one.
func IsSecondaryLocale(locale string) bool {
	return locale == LocaleEN
}
