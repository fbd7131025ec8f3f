// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package audit

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/locafleet/rental-api/internal/platform/middleware"
	"github.com/locafleet/rental-api/internal/platform/respond"
	"github.com/locafleet/rental-api/internal/platform/sec"
	"github.com/locafleet/rental-api/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements the audit trail browsing endpoints.
type Handler struct {
	store Store
}

// NewHandler constructs a new [Handler] over the given audit store.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Routes returns a [chi.Router] with the audit endpoints.
// Every route requires the view_reports permission.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequirePermission(sec.PermissionViewReports))

	router.Get("/", handler.list)

	return router
}

/*
List returns a filtered, paginated view of the audit trail, newest first.

GET /api/v1/audit?username=&action=&resource=&from=&to=&page=&limit=

Description: The from/to parameters accept RFC 3339 timestamps; malformed
values are ignored rather than rejected, matching the tolerant filter
semantics of the reporting UI.

Response:
  - 200: Paginated list of audit records
  - 403: ErrForbidden: Caller lacks view_reports
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	filter := Filter{
		Username: request.URL.Query().Get("username"),
		Action:   request.URL.Query().Get("action"),
		Resource: request.URL.Query().Get("resource"),
	}
	if raw := request.URL.Query().Get("from"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.From = parsed
		}
	}
	if raw := request.URL.Query().Get("to"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.To = parsed
		}
	}

	records, total, err := handler.store.List(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, records, pagination.NewMeta(params.Page, params.Limit, total))
}
