// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locafleet/rental-api/internal/platform/apperr"
	"github.com/locafleet/rental-api/internal/platform/validate"
)

/*
TestValidatorRules exercises each rule in isolation.
*/
func TestValidatorRules(t *testing.T) {
	tests := []struct {
		name      string
		run       func(v *validate.Validator)
		wantError bool
	}{
		{
			name:      "required_passes",
			run:       func(v *validate.Validator) { v.Required("username", "marie.dubois") },
			wantError: false,
		},
		{
			name:      "required_fails_on_blank",
			run:       func(v *validate.Validator) { v.Required("username", "   ") },
			wantError: true,
		},
		{
			name:      "min_len_counts_runes",
			run:       func(v *validate.Validator) { v.MinLen("password", "héllo!", 6) },
			wantError: false,
		},
		{
			name:      "min_len_fails_below",
			run:       func(v *validate.Validator) { v.MinLen("password", "abc", 6) },
			wantError: true,
		},
		{
			name:      "max_len_fails_above",
			run:       func(v *validate.Validator) { v.MaxLen("fullname", "aaaaaa", 5) },
			wantError: true,
		},
		{
			name:      "email_passes",
			run:       func(v *validate.Validator) { v.Email("email", "marie@locafleet.app") },
			wantError: false,
		},
		{
			name:      "email_fails_on_garbage",
			run:       func(v *validate.Validator) { v.Email("email", "not-an-email") },
			wantError: true,
		},
		{
			name:      "username_passes_canonical",
			run:       func(v *validate.Validator) { v.Username("username", "marie.dubois_01") },
			wantError: false,
		},
		{
			name:      "username_fails_on_uppercase",
			run:       func(v *validate.Validator) { v.Username("username", "Marie.Dubois") },
			wantError: true,
		},
		{
			name:      "username_fails_too_short",
			run:       func(v *validate.Validator) { v.Username("username", "ab") },
			wantError: true,
		},
		{
			name:      "username_fails_on_leading_dot",
			run:       func(v *validate.Validator) { v.Username("username", ".marie") },
			wantError: true,
		},
		{
			name:      "uuid_passes",
			run:       func(v *validate.Validator) { v.UUID("id", "0195a4c2-58a1-7cc3-9f2e-3b5d8a41c970") },
			wantError: false,
		},
		{
			name:      "uuid_fails_on_garbage",
			run:       func(v *validate.Validator) { v.UUID("id", "not-a-uuid") },
			wantError: true,
		},
		{
			name:      "one_of_passes",
			run:       func(v *validate.Validator) { v.OneOf("role", "manager", "admin", "manager", "viewer") },
			wantError: false,
		},
		{
			name:      "one_of_fails_outside_set",
			run:       func(v *validate.Validator) { v.OneOf("role", "root", "admin", "manager", "viewer") },
			wantError: true,
		},
		{
			name:      "custom_fails_when_condition_true",
			run:       func(v *validate.Validator) { v.Custom("role", true, "Unknown role") },
			wantError: true,
		},
		{
			name:      "custom_passes_when_condition_false",
			run:       func(v *validate.Validator) { v.Custom("role", false, "Unknown role") },
			wantError: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := &validate.Validator{}
			tc.run(v)

			if tc.wantError {
				assert.True(t, v.HasErrors())
				assert.Error(t, v.Err())
			} else {
				assert.False(t, v.HasErrors())
				assert.NoError(t, v.Err())
			}
		})
	}
}

/*
TestValidatorCollectsAllFailures verifies that the chain does not stop at
the first failure: every failed field appears in the error details.
*/
func TestValidatorCollectsAllFailures(t *testing.T) {
	v := &validate.Validator{}
	v.
		Required("username", "").
		MinLen("password", "abc", 6).
		Email("email", "bogus")

	err := v.Err()
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	require.Len(t, appError.Details, 3)

	fields := []string{}
	for _, detail := range appError.Details {
		fields = append(fields, detail.Field)
	}
	assert.ElementsMatch(t, []string{"username", "password", "email"}, fields)
}

/*
TestRequiredError verifies the single-field error shortcut.
*/
func TestRequiredError(t *testing.T) {
	err := validate.RequiredError("role", "Unknown role")

	require.NotNil(t, err)
	assert.Equal(t, "VALIDATION_ERROR", err.Code)
	require.Len(t, err.Details, 1)
	assert.Equal(t, "role", err.Details[0].Field)
	assert.Equal(t, "Unknown role", err.Details[0].Message)
}
