// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

/*
Package audit implements the append-only security audit trail.

Every security-relevant operation (logins, failed attempts, lockouts,
account administration, password changes) produces a timestamped record.
Records are persisted asynchronously and best-effort: a failing audit store
must never abort the operation that triggered the record.

# Architecture

  - Record: The immutable audit entry.
  - Logger: Buffered asynchronous writer with a single worker, preserving
    per-process ordering.
  - Store: Abstracted persistence (PostgreSQL in production).
*/
package audit

import (
	"context"
	"time"

	"github.com/locafleet/rental-api/pkg/pagination"
)

// # Actions

// Audit action identifiers. These are stable API: reporting tooling filters
// on them, so renaming one is a breaking change.
const (
	ActionLogin           = "login"
	ActionLoginFailed     = "login_failed"
	ActionLogout          = "logout"
	ActionAccountLocked   = "account_locked"
	ActionUserCreated     = "user_created"
	ActionUserDeactivated = "user_deactivated"
	ActionUserActivated   = "user_activated"
	ActionRoleChanged     = "role_changed"
	ActionPasswordChanged = "password_changed"
	ActionPasswordReset   = "password_reset"
	ActionResetRequested  = "password_reset_requested"
)

// SystemActor identifies records produced by the system itself rather than
// a logged-in user (e.g. first-run bootstrap).
const SystemActor = "system"

// # Domain Entities

// Record is a single append-only audit entry. Resource identifies the
// entity the action targeted (usually an account ID), distinct from the
// actor who performed it.
type Record struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter narrows an audit trail listing. Zero values mean "no constraint".
type Filter struct {
	Username string
	Action   string
	Resource string
	From     time.Time
	To       time.Time
}

// # Data Access

// Store defines the persistence contract for audit records.
type Store interface {

	/*
		Append persists one audit record.

		Parameters:
		  - context: context.Context
		  - record: *Record

		Returns:
		  - error: Persistence failures
	*/
	Append(context context.Context, record *Record) error

	/*
		List returns a page of records matching the filter, newest first,
		plus the total match count.

		Parameters:
		  - context: context.Context
		  - filter: Filter
		  - params: pagination.Params

		Returns:
		  - []Record: Page of records
		  - int: Total match count
		  - error: Retrieval failures
	*/
	List(context context.Context, filter Filter, params pagination.Params) ([]Record, int, error)
}
