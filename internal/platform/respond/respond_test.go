// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package respond_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locafleet/rental-api/internal/platform/apperr"
	"github.com/locafleet/rental-api/internal/platform/respond"
)

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) respond.ErrorEnvelope {
	t.Helper()
	var envelope respond.ErrorEnvelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	return envelope
}

/*
TestErrorMapsAppErrors verifies the status and envelope produced for the
typed error taxonomy.
*/
func TestErrorMapsAppErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not_found",
			err:        apperr.NotFound("User"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "validation_error",
			err:        apperr.ValidationError("Validation failed", apperr.FieldError{Field: "username", Message: "This field is required"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "session_expired",
			err:        apperr.SessionExpired(),
			wantStatus: http.StatusUnauthorized,
			wantCode:   apperr.CodeSessionExpired,
		},
		{
			name:       "permission_denied",
			err:        apperr.PermissionDenied(),
			wantStatus: http.StatusForbidden,
			wantCode:   apperr.CodePermissionDenied,
		},
		{
			name:       "store_unavailable",
			err:        apperr.StoreUnavailable(fmt.Errorf("connection refused")),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apperr.CodeStoreUnavailable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()

			respond.Error(recorder, httptest.NewRequest("GET", "/", nil), tc.err)

			assert.Equal(t, tc.wantStatus, recorder.Code)
			envelope := decodeError(t, recorder)
			assert.Equal(t, tc.wantCode, envelope.Code)
		})
	}
}

/*
TestErrorCollapsesAccountLocked verifies that a lockout response is
indistinguishable on the wire from a plain credential failure.
*/
func TestErrorCollapsesAccountLocked(t *testing.T) {
	lockedRecorder := httptest.NewRecorder()
	invalidRecorder := httptest.NewRecorder()

	respond.Error(lockedRecorder, httptest.NewRequest("POST", "/api/v1/auth/login", nil), apperr.AccountLocked())
	respond.Error(invalidRecorder, httptest.NewRequest("POST", "/api/v1/auth/login", nil), apperr.InvalidCredentials())

	assert.Equal(t, invalidRecorder.Code, lockedRecorder.Code)
	assert.Equal(t, invalidRecorder.Body.String(), lockedRecorder.Body.String())

	envelope := decodeError(t, lockedRecorder)
	assert.Equal(t, apperr.CodeInvalidCredentials, envelope.Code)
	assert.Equal(t, "Invalid username or password", envelope.Error)
}

/*
TestErrorHidesInternalCauses verifies that raw Go errors become opaque 500
responses with no server-side detail leaked.
*/
func TestErrorHidesInternalCauses(t *testing.T) {
	recorder := httptest.NewRecorder()

	respond.Error(recorder, httptest.NewRequest("GET", "/", nil), fmt.Errorf("pq: duplicate key value violates unique constraint"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	envelope := decodeError(t, recorder)
	assert.Equal(t, "INTERNAL_ERROR", envelope.Code)
	assert.NotContains(t, envelope.Error, "duplicate key")
}

/*
TestSuccessEnvelopes verifies the success helpers' envelopes and statuses.
*/
func TestSuccessEnvelopes(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		respond.OK(recorder, map[string]string{"status": "fine"})

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.JSONEq(t, `{"data":{"status":"fine"}}`, recorder.Body.String())
	})

	t.Run("created", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		respond.Created(recorder, map[string]string{"id": "u-1"})

		assert.Equal(t, http.StatusCreated, recorder.Code)
		assert.JSONEq(t, `{"data":{"id":"u-1"}}`, recorder.Body.String())
	})

	t.Run("no_content", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		respond.NoContent(recorder)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Empty(t, recorder.Body.String())
	})
}
