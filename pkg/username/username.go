// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

// Package username canonicalizes login identifiers into a stable ASCII form.
//
// # Usage
//
// The case-sensitivity policy of usernames is fixed at creation time: every
// username is canonicalized once when the account is created and the same
// canonical form is used for every subsequent lookup. Two usernames that
// differ only by case or diacritics resolve to the same account.
package username

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical converts an arbitrary Unicode username into its canonical form.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Converts to lowercase.
// 4. Trims surrounding whitespace.
func Canonical(s string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	// 2. Lowercase and trim
	return strings.TrimSpace(strings.ToLower(result))
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
