// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package auth

import (
	"context"
	"time"

	"github.com/locafleet/rental-api/internal/platform/sec"
	"github.com/locafleet/rental-api/pkg/pagination"
)

// # User Data Access

// UserRepository defines the data access contract for staff accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByUsername returns the account with the given canonical username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a brand-new staff account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		List returns a page of accounts ordered by creation time, plus the
		total number of accounts.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []User: Page of accounts
		  - int: Total account count
		  - error: Retrieval failures
	*/
	List(context context.Context, params pagination.Params) ([]User, int, error)

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		UpdateRole replaces the user's role.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - role: sec.Role

		Returns:
		  - error: Persistence failures
	*/
	UpdateRole(context context.Context, userID string, role sec.Role) error

	/*
		SetActive toggles the account's active flag.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - active: bool

		Returns:
		  - error: Persistence failures
	*/
	SetActive(context context.Context, userID string, active bool) error

	/*
		RecordFailure atomically increments the failed-attempt counter and,
		when the counter reaches the threshold, sets the lockout deadline.

		The increment and the lock decision happen in a single statement so
		concurrent failed attempts cannot lose updates or double-lock.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - threshold: int (Attempts at which the account locks)
		  - lockedUntil: time.Time (Deadline to set when the threshold is reached)

		Returns:
		  - int: The counter value after the increment
		  - bool: True exactly when this call crossed the threshold
		  - error: Persistence failures
	*/
	RecordFailure(context context.Context, userID string, threshold int, lockedUntil time.Time) (int, bool, error)

	/*
		RecordSuccess resets the failed-attempt counter, clears any lockout
		deadline, and stamps the last successful login time.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - loginAt: time.Time

		Returns:
		  - error: Persistence failures
	*/
	RecordSuccess(context context.Context, userID string, loginAt time.Time) error

	/*
		ResetLockout clears the failed-attempt counter and lockout deadline
		without touching the last-login stamp. Used by administrative
		password resets.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	ResetLockout(context context.Context, userID string) error

	/*
		CountActiveAdmins returns the number of active accounts holding the
		admin role. Used to enforce the last-admin safeguard.

		Parameters:
		  - context: context.Context

		Returns:
		  - int: Active admin count
		  - error: Retrieval failures
	*/
	CountActiveAdmins(context context.Context) (int, error)

	/*
		CountAll returns the total number of accounts, active or not.

		Parameters:
		  - context: context.Context

		Returns:
		  - int: Account count
		  - error: Retrieval failures
	*/
	CountAll(context context.Context) (int, error)
}

// # Session Data Access

// SessionRepository defines the data access contract for active sessions.
//
// Sessions are stored server-side: destroying a row invalidates the token
// immediately, with no propagation delay.
type SessionRepository interface {

	/*
		Create persists a new session for an authenticated login.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByTokenHash returns the session matching the given token hash,
		expired or not. Expiry is the caller's decision.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - *Session: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	/*
		Delete removes a specific session.

		Parameters:
		  - context: context.Context
		  - sessionID: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, sessionID string) error

	/*
		DeleteAllForUser removes every session belonging to the userID.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteAllForUser(context context.Context, userID string) error

	/*
		DeleteOthers removes every session belonging to the userID except
		the one with the given token hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - keepTokenHash: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteOthers(context context.Context, userID, keepTokenHash string) error

	/*
		DeleteExpired physically removes sessions whose expiry is at or
		before the given instant.

		Parameters:
		  - context: context.Context
		  - now: time.Time

		Returns:
		  - int64: Number of sessions removed
		  - error: Persistence failures
	*/
	DeleteExpired(context context.Context, now time.Time) (int64, error)
}

// # Volatile Data Access

// ResetTokenRepository defines the contract for storing volatile password reset tokens.
type ResetTokenRepository interface {

	/*
		Set stores a reset token associated with a userID for a limited duration.

		Parameters:
		  - context: context.Context
		  - token: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, token string, userID string, ttl time.Duration) error

	/*
		Get retrieves the userID associated with a given reset token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - string: UserID
		  - error: Retrieval failures
	*/
	Get(context context.Context, token string) (string, error)

	/*
		Delete removes a reset token after successful use.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, token string) error
}
