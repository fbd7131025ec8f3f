// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

// Postgres implementations of the auth storage contracts.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped inline to the
// domain-specific [apperr.AppError] kinds (NotFound, SessionNotFound,
// StoreUnavailable) so no storage implementation details leak upward.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/locafleet/rental-api/internal/platform/apperr"
	"github.com/locafleet/rental-api/internal/platform/database/schema"
	"github.com/locafleet/rental-api/internal/platform/sec"
	"github.com/locafleet/rental-api/pkg/pagination"
)

// userColumns is the canonical SELECT column list for auth.account.
var userColumns = fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
	schema.AuthUser.ID, schema.AuthUser.Username, schema.AuthUser.Password,
	schema.AuthUser.Role, schema.AuthUser.FullName, schema.AuthUser.Email,
	schema.AuthUser.IsActive, schema.AuthUser.LoginAttempts, schema.AuthUser.LockedUntil,
	schema.AuthUser.LastLogin, schema.AuthUser.CreatedAt, schema.AuthUser.UpdatedAt,
)

// scanUser hydrates one User from a row using the userColumns order.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.FullName,
		&user.Email,
		&user.IsActive,
		&user.LoginAttempts,
		&user.LockedUntil,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// # User Repository

// PostgresUserRepository implements the [UserRepository] interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new staff account into the auth.account table.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		schema.AuthUser.Table,
		schema.AuthUser.ID, schema.AuthUser.Username, schema.AuthUser.Password,
		schema.AuthUser.Role, schema.AuthUser.FullName, schema.AuthUser.Email,
		schema.AuthUser.IsActive, schema.AuthUser.CreatedAt, schema.AuthUser.UpdatedAt,
	)

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.FullName,
		user.Email,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return apperr.StoreUnavailable(fmt.Errorf("postgres_user_repo_create_failed: %w", err))
	}

	return nil
}

/*
FindByID retrieves a user record by their unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or storage availability errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		userColumns, schema.AuthUser.Table, schema.AuthUser.ID,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, apperr.StoreUnavailable(fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err))
	}

	return user, nil
}

/*
FindByUsername retrieves a user record by their canonical username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or storage availability errors
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		userColumns, schema.AuthUser.Table, schema.AuthUser.Username,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, apperr.StoreUnavailable(fmt.Errorf("postgres_user_repo_find_by_username_failed: %w", err))
	}

	return user, nil
}

/*
List returns a page of accounts ordered by creation time, plus the total.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []User: Page of accounts
  - int: Total account count
  - error: Retrieval failures
*/
func (repository *PostgresUserRepository) List(context context.Context, params pagination.Params) ([]User, int, error) {

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", schema.AuthUser.Table)

	var total int
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, apperr.StoreUnavailable(fmt.Errorf("postgres_user_repo_count_failed: %w", err))
	}

	listQuery := fmt.Sprintf(`
		SELECT %s FROM %s
		ORDER BY %s
		LIMIT $1 OFFSET $2`,
		userColumns, schema.AuthUser.Table, schema.AuthUser.CreatedAt,
	)

	rows, err := repository.pool.Query(context, listQuery, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, apperr.StoreUnavailable(fmt.Errorf("postgres_user_repo_list_failed: %w", err))
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, apperr.StoreUnavailable(fmt.Errorf("postgres_user_repo_scan_failed: %w", err))
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, apperr.StoreUnavailable(fmt.Errorf("postgres_user_repo_rows_failed: %w", err))
	}

	return users, total, nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1`,
		schema.AuthUser.Table, schema.AuthUser.Password, schema.AuthUser.UpdatedAt, schema.AuthUser.ID,
	)

	_, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return apperr.StoreUnavailable(fmt.Errorf("postgres_user_repo_update_password_failed: %w", err))
	}

	return nil
}

/*
UpdateRole replaces the user's role.

Parameters:
  - context: context.Context
  - userID: string
  - role: sec.Role

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdateRole(context context.Context, userID string, role sec.Role) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1`,
		schema.AuthUser.Table, schema.AuthUser.Role, schema.AuthUser.UpdatedAt, schema.AuthUser.ID,
	)

	_, err := repository.pool.Exec(context, query, userID, role, time.Now())
	if err != nil {
		return apperr.StoreUnavailable(fmt.Errorf("postgres_user_repo_update_role_failed: %w", err))
	}

	return nil
}

/*
SetActive toggles the account's active flag.

Parameters:
  - context: context.Context
  - userID: string
  - active: bool

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) SetActive(context context.Context, userID string, active bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1`,
		schema.AuthUser.Table, schema.AuthUser.IsActive, schema.AuthUser.UpdatedAt, schema.AuthUser.ID,
	)

	_, err := repository.pool.Exec(context, query, userID, active, time.Now())
	if err != nil {
		return apperr.StoreUnavailable(fmt.Errorf("postgres_user_repo_set_active_failed: %w", err))
	}

	return nil
}

/*
RecordFailure atomically increments the failed-attempt counter and sets the
lockout deadline when the counter reaches the threshold.

Description: A single UPDATE ... RETURNING statement, so concurrent failed
attempts serialize on the row lock: no increments are lost and exactly one
call observes the crossing of the threshold.

Parameters:
  - context: context.Context
  - userID: string
  - threshold: int
  - lockedUntil: time.Time

Returns:
  - int: Counter value after the increment
  - bool: True exactly when this call crossed the threshold
  - error: Execution errors
*/
func (repository *PostgresUserRepository) RecordFailure(context context.Context, userID string, threshold int, lockedUntil time.Time) (int, bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s + 1,
		    %s = CASE WHEN %s + 1 >= $2 THEN $3 ELSE %s END,
		    %s = $4
		WHERE %s = $1
		RETURNING %s`,
		schema.AuthUser.Table,
		schema.AuthUser.LoginAttempts, schema.AuthUser.LoginAttempts,
		schema.AuthUser.LockedUntil, schema.AuthUser.LoginAttempts, schema.AuthUser.LockedUntil,
		schema.AuthUser.UpdatedAt,
		schema.AuthUser.ID,
		schema.AuthUser.LoginAttempts,
	)

	var attempts int
	err := repository.pool.QueryRow(context, query, userID, threshold, lockedUntil, time.Now()).Scan(&attempts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, apperr.NotFound("User")
		}
		return 0, false, apperr.StoreUnavailable(fmt.Errorf("postgres_user_repo_record_failure_failed: %w", err))
	}

	// The crossing happens exactly once: only the attempt that lands on the
	// threshold reports the lock transition.
	return attempts, attempts == threshold, nil
}

/*
RecordSuccess resets the failure accounting and stamps the login time.

Parameters:
  - context: context.Context
  - userID: string
  - loginAt: time.Time

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) RecordSuccess(context context.Context, userID string, loginAt time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = 0, %s = NULL, %s = $2, %s = $2
		WHERE %s = $1`,
		schema.AuthUser.Table,
		schema.AuthUser.LoginAttempts, schema.AuthUser.LockedUntil,
		schema.AuthUser.LastLogin, schema.AuthUser.UpdatedAt,
		schema.AuthUser.ID,
	)

	_, err := repository.pool.Exec(context, query, userID, loginAt)
	if err != nil {
		return apperr.StoreUnavailable(fmt.Errorf("postgres_user_repo_record_success_failed: %w", err))
	}

	return nil
}

/*
ResetLockout clears the failure accounting without touching the login stamp.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) ResetLockout(context context.Context, userID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = 0, %s = NULL, %s = $2
		WHERE %s = $1`,
		schema.AuthUser.Table,
		schema.AuthUser.LoginAttempts, schema.AuthUser.LockedUntil, schema.AuthUser.UpdatedAt,
		schema.AuthUser.ID,
	)

	_, err := repository.pool.Exec(context, query, userID, time.Now())
	if err != nil {
		return apperr.StoreUnavailable(fmt.Errorf("postgres_user_repo_reset_lockout_failed: %w", err))
	}

	return nil
}

/*
CountActiveAdmins returns the number of active administrator accounts.

Parameters:
  - context: context.Context

Returns:
  - int: Active admin count
  - error: Execution errors
*/
func (repository *PostgresUserRepository) CountActiveAdmins(context context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1 AND %s = TRUE`,
		schema.AuthUser.Table, schema.AuthUser.Role, schema.AuthUser.IsActive,
	)

	var count int
	if err := repository.pool.QueryRow(context, query, sec.RoleAdmin).Scan(&count); err != nil {
		return 0, apperr.StoreUnavailable(fmt.Errorf("postgres_user_repo_count_admins_failed: %w", err))
	}

	return count, nil
}

/*
CountAll returns the total number of accounts.

Parameters:
  - context: context.Context

Returns:
  - int: Account count
  - error: Execution errors
*/
func (repository *PostgresUserRepository) CountAll(context context.Context) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", schema.AuthUser.Table)

	var count int
	if err := repository.pool.QueryRow(context, query).Scan(&count); err != nil {
		return 0, apperr.StoreUnavailable(fmt.Errorf("postgres_user_repo_count_all_failed: %w", err))
	}

	return count, nil
}

// # Session Repository

// PostgresSessionRepository implements the [SessionRepository] interface.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL implementation of SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

/*
Create persists a new session record into the auth.session table.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Storage failures
*/
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		schema.AuthSession.Table,
		schema.AuthSession.ID, schema.AuthSession.UserID, schema.AuthSession.TokenHash,
		schema.AuthSession.IPAddress, schema.AuthSession.UserAgent,
		schema.AuthSession.ExpiresAt, schema.AuthSession.CreatedAt,
	)

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.IPAddress,
		session.UserAgent,
		session.ExpiresAt,
		session.CreatedAt,
	)

	if err != nil {
		return apperr.StoreUnavailable(fmt.Errorf("postgres_session_repo_create_failed: %w", err))
	}

	return nil
}

/*
FindByTokenHash retrieves a session by its unique token hash.

Description: Returns the row whether or not it has expired; the session
manager decides what expiry means (and deletes lazily).

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *Session: Hydrated session metadata
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresSessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.AuthSession.ID, schema.AuthSession.UserID, schema.AuthSession.TokenHash,
		schema.AuthSession.IPAddress, schema.AuthSession.UserAgent,
		schema.AuthSession.ExpiresAt, schema.AuthSession.CreatedAt,
		schema.AuthSession.Table,
		schema.AuthSession.TokenHash,
	)

	session := &Session{}
	err := repository.pool.QueryRow(context, query, tokenHash).Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.IPAddress,
		&session.UserAgent,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.SessionNotFound()
		}
		return nil, apperr.StoreUnavailable(fmt.Errorf("postgres_session_repo_find_failed: %w", err))
	}

	return session, nil
}

/*
Delete removes a specific session.

Parameters:
  - context: context.Context
  - sessionID: string

Returns:
  - error: Deletion failures
*/
func (repository *PostgresSessionRepository) Delete(context context.Context, sessionID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		schema.AuthSession.Table, schema.AuthSession.ID,
	)

	_, err := repository.pool.Exec(context, query, sessionID)
	if err != nil {
		return apperr.StoreUnavailable(fmt.Errorf("postgres_session_repo_delete_failed: %w", err))
	}

	return nil
}

/*
DeleteAllForUser removes every session belonging to the userID.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Batch deletion failures
*/
func (repository *PostgresSessionRepository) DeleteAllForUser(context context.Context, userID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		schema.AuthSession.Table, schema.AuthSession.UserID,
	)

	_, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return apperr.StoreUnavailable(fmt.Errorf("postgres_session_repo_delete_all_failed: %w", err))
	}

	return nil
}

/*
DeleteOthers removes every session for the userID except the given token hash.

Parameters:
  - context: context.Context
  - userID: string
  - keepTokenHash: string

Returns:
  - error: Filtered deletion failures
*/
func (repository *PostgresSessionRepository) DeleteOthers(context context.Context, userID, keepTokenHash string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND %s != $2",
		schema.AuthSession.Table, schema.AuthSession.UserID, schema.AuthSession.TokenHash,
	)

	_, err := repository.pool.Exec(context, query, userID, keepTokenHash)
	if err != nil {
		return apperr.StoreUnavailable(fmt.Errorf("postgres_session_repo_delete_others_failed: %w", err))
	}

	return nil
}

/*
DeleteExpired permanently removes sessions at or past their expiration.

Description: Storage reclamation for the background sweep.

Parameters:
  - context: context.Context
  - now: time.Time

Returns:
  - int64: Number of sessions removed
  - error: Cleanup failures
*/
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context, now time.Time) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s <= $1",
		schema.AuthSession.Table, schema.AuthSession.ExpiresAt,
	)

	tag, err := repository.pool.Exec(context, query, now)
	if err != nil {
		return 0, apperr.StoreUnavailable(fmt.Errorf("postgres_session_repo_delete_expired_failed: %w", err))
	}

	return tag.RowsAffected(), nil
}
