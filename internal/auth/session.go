// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/locafleet/rental-api/internal/platform/apperr"
	"github.com/locafleet/rental-api/internal/platform/sec"
	"github.com/locafleet/rental-api/pkg/uuid"
)

// # Session Manager

/*
Sessions manages the lifecycle of authenticated sessions.

Tokens handed to clients are random 256-bit strings; only their SHA-256
digest is stored, so a database leak never exposes usable tokens. Validation
always consults the store, which is what makes deactivation and mass
invalidation take effect immediately.

# Concurrency

Sessions is safe for concurrent use: all state lives in the repositories.
*/
type Sessions struct {
	sessionRepository SessionRepository
	userRepository    UserRepository
	duration          time.Duration

	// now is injectable for tests; production uses time.Now.
	now func() time.Time
}

// NewSessions constructs a session manager with the given fixed session lifetime.
func NewSessions(sessionRepo SessionRepository, userRepo UserRepository, duration time.Duration) *Sessions {
	if duration <= 0 {
		duration = DefaultSessionDuration
	}
	return &Sessions{
		sessionRepository: sessionRepo,
		userRepository:    userRepo,
		duration:          duration,
		now:               time.Now,
	}
}

/*
Create establishes a new session for the given user and returns the plain
bearer token alongside the stored session record.

The plain token exists only in this return value. It is never logged and
never persisted.

Parameters:
  - context: context.Context
  - user: *User
  - ipAddress: string
  - userAgent: string

Returns:
  - string: The plain bearer token to hand to the client
  - *Session: The persisted session record
  - error: Token generation or persistence failures
*/
func (sessions *Sessions) Create(context context.Context, user *User, ipAddress, userAgent string) (string, *Session, error) {

	// Generate the bearer token. 32 bytes of entropy from crypto/rand.
	token, err := sec.GenerateSecureToken(SessionTokenLength)
	if err != nil {
		return "", nil, fmt.Errorf("auth_session_token_generation_failed: %w", err)
	}

	now := sessions.now()
	session := &Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(token),
		IPAddress: ipAddress,
		UserAgent: userAgent,
		ExpiresAt: now.Add(sessions.duration),
		CreatedAt: now,
	}

	if err := sessions.sessionRepository.Create(context, session); err != nil {
		return "", nil, err
	}

	return token, session, nil
}

/*
Validate resolves a bearer token into an authenticated principal.

Description: Looks up the session by token hash, enforces expiry lazily
(deleting the stale row), and re-checks the owning account on every call so
a deactivated user is rejected immediately.

Validation never extends the session: expiry is absolute.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *sec.Principal: The authenticated identity
  - error: SessionNotFound, SessionExpired, AccountInactive, or StoreUnavailable
*/
func (sessions *Sessions) Validate(context context.Context, token string) (*sec.Principal, error) {

	// ── 1. Resolve the token hash into a session row ──
	tokenHash := sec.HashToken(token)
	session, err := sessions.sessionRepository.FindByTokenHash(context, tokenHash)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeStoreUnavailable) {
			return nil, err
		}
		return nil, apperr.SessionNotFound()
	}

	// ── 2. Lazy expiry: delete the stale row and reject ──
	if session.ExpiredAt(sessions.now()) {
		_ = sessions.sessionRepository.Delete(context, session.ID)
		return nil, apperr.SessionExpired()
	}

	// ── 3. Re-check the owning account on every validation ──
	user, err := sessions.userRepository.FindByID(context, session.UserID)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeStoreUnavailable) {
			return nil, err
		}
		// Orphaned session: the account is gone, so is the session.
		_ = sessions.sessionRepository.Delete(context, session.ID)
		return nil, apperr.SessionNotFound()
	}

	if !user.IsActive {
		// Deactivation invalidates sessions with no grace period.
		_ = sessions.sessionRepository.DeleteAllForUser(context, user.ID)
		return nil, apperr.AccountInactive()
	}

	return &sec.Principal{
		UserID:           user.ID,
		Username:         user.Username,
		Role:             user.Role,
		SessionTokenHash: tokenHash,
	}, nil
}

// ValidateToken satisfies the middleware session-validation contract.
func (sessions *Sessions) ValidateToken(context context.Context, token string) (*sec.Principal, error) {
	return sessions.Validate(context, token)
}

/*
Destroy removes the session identified by the given bearer token.

Description: Idempotent — destroying an unknown or already-destroyed token
is a successful no-op, so logout never fails for an already-logged-out client.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: StoreUnavailable only
*/
func (sessions *Sessions) Destroy(context context.Context, token string) error {

	tokenHash := sec.HashToken(token)
	session, err := sessions.sessionRepository.FindByTokenHash(context, tokenHash)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeStoreUnavailable) {
			return err
		}
		// Already gone: logout is idempotent.
		return nil
	}

	return sessions.sessionRepository.Delete(context, session.ID)
}

/*
DestroyAllForUser removes every session belonging to the given user.

Description: Used on deactivation, role revocation, and password resets so
the change takes effect immediately across all of the user's devices.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Persistence failures
*/
func (sessions *Sessions) DestroyAllForUser(context context.Context, userID string) error {
	return sessions.sessionRepository.DeleteAllForUser(context, userID)
}

/*
DestroyOthers removes every session for the user except the current one.

Parameters:
  - context: context.Context
  - userID: string
  - keepTokenHash: string

Returns:
  - error: Persistence failures
*/
func (sessions *Sessions) DestroyOthers(context context.Context, userID, keepTokenHash string) error {
	return sessions.sessionRepository.DeleteOthers(context, userID, keepTokenHash)
}

/*
PurgeExpired physically removes all sessions past their expiry.

Description: Storage reclamation only. Expiry is already enforced lazily at
validation time, so correctness never depends on this sweep running.

Parameters:
  - context: context.Context

Returns:
  - int64: Number of sessions removed
  - error: Persistence failures
*/
func (sessions *Sessions) PurgeExpired(context context.Context) (int64, error) {
	return sessions.sessionRepository.DeleteExpired(context, sessions.now())
}

/*
PurgeLoop runs [Sessions.PurgeExpired] on a fixed interval until the context
is cancelled. Each sweep runs under its own deadline so a stalled store
cannot wedge the loop or hold a connection indefinitely.

Parameters:
  - ctx: context.Context cancelling the loop
  - interval: time.Duration between sweeps
  - timeout: time.Duration bounding each sweep (zero means unbounded)
  - logger: *slog.Logger
*/
func (sessions *Sessions) PurgeLoop(ctx context.Context, interval, timeout time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := ctx, context.CancelFunc(func() {})
			if timeout > 0 {
				sweepCtx, cancel = context.WithTimeout(ctx, timeout)
			}
			purged, err := sessions.PurgeExpired(sweepCtx)
			cancel()
			if err != nil {
				logger.Error("session_purge_failed", slog.Any("error", err))
				continue
			}
			if purged > 0 {
				logger.Info("session_purge_completed", slog.Int64("purged", purged))
			}
		}
	}
}
