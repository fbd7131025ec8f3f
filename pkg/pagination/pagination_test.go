// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/locafleet/rental-api/pkg/pagination"
)

/*
TestFromRequest verifies query parsing and clamping of abusive values.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{name: "defaults", query: "", wantPage: 1, wantLimit: 20},
		{name: "explicit_values", query: "?page=3&limit=50", wantPage: 3, wantLimit: 50},
		{name: "zero_page_clamped", query: "?page=0", wantPage: 1, wantLimit: 20},
		{name: "negative_page_clamped", query: "?page=-5", wantPage: 1, wantLimit: 20},
		{name: "excessive_limit_clamped", query: "?limit=10000", wantPage: 1, wantLimit: 20},
		{name: "garbage_ignored", query: "?page=abc&limit=xyz", wantPage: 1, wantLimit: 20},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/v1/users"+tc.query, nil)

			params := pagination.FromRequest(r)

			assert.Equal(t, tc.wantPage, params.Page)
			assert.Equal(t, tc.wantLimit, params.Limit)
		})
	}
}

/*
TestOffset verifies the SQL OFFSET derivation.
*/
func TestOffset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 20, pagination.Params{Page: 2, Limit: 20}.Offset())
	assert.Equal(t, 90, pagination.Params{Page: 10, Limit: 10}.Offset())
	assert.Equal(t, 0, pagination.Params{Page: 0, Limit: 20}.Offset())
}

/*
TestNewMeta verifies the total-pages arithmetic, including partial pages.
*/
func TestNewMeta(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		total      int
		wantPages  int
	}{
		{name: "exact_division", page: 1, limit: 20, total: 40, wantPages: 2},
		{name: "partial_last_page", page: 1, limit: 20, total: 41, wantPages: 3},
		{name: "empty_result", page: 1, limit: 20, total: 0, wantPages: 0},
		{name: "single_item", page: 1, limit: 20, total: 1, wantPages: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			meta := pagination.NewMeta(tc.page, tc.limit, tc.total)

			assert.Equal(t, tc.page, meta.Page)
			assert.Equal(t, tc.limit, meta.Limit)
			assert.Equal(t, tc.total, meta.Total)
			assert.Equal(t, tc.wantPages, meta.TotalPages)
		})
	}
}
