// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package username_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/locafleet/rental-api/pkg/username"
)

/*
TestCanonical verifies case folding, accent stripping, and trimming, and
that distinct identifiers stay distinct.
*/
func TestCanonical(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already_canonical", input: "marie.dubois", want: "marie.dubois"},
		{name: "uppercase_folded", input: "Marie.DUBOIS", want: "marie.dubois"},
		{name: "accents_stripped", input: "josé.garcía", want: "jose.garcia"},
		{name: "accents_and_case", input: "JOSÉ.GARCÍA", want: "jose.garcia"},
		{name: "whitespace_trimmed", input: "  marie.dubois\t", want: "marie.dubois"},
		{name: "cedilla_and_circumflex", input: "François.Côté", want: "francois.cote"},
		{name: "empty_input", input: "", want: ""},
		{name: "only_whitespace", input: "   ", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, username.Canonical(tc.input))
		})
	}

	// Distinct identifiers must never collapse into each other.
	assert.NotEqual(t, username.Canonical("marie.dubois"), username.Canonical("maria.dubois"))
}

/*
TestCanonicalIsIdempotent verifies that canonicalizing twice is a no-op,
which is what makes stored canonical forms safe to re-canonicalize.
*/
func TestCanonicalIsIdempotent(t *testing.T) {
	inputs := []string{"Marie.DUBOIS", "josé.garcía", "  Admin  "}

	for _, input := range inputs {
		once := username.Canonical(input)
		assert.Equal(t, once, username.Canonical(once))
	}
}
