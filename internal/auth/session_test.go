// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package auth

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locafleet/rental-api/internal/platform/apperr"
	"github.com/locafleet/rental-api/internal/platform/sec"
)

// sessionFixture wires a Sessions manager against in-memory stores.
type sessionFixture struct {
	users    *memoryUserRepo
	store    *memorySessionRepo
	clock    *fakeClock
	sessions *Sessions
	user     *User
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	fixture := &sessionFixture{
		users: newMemoryUserRepo(),
		store: newMemorySessionRepo(),
		clock: newFakeClock(),
	}
	fixture.sessions = NewSessions(fixture.store, fixture.users, DefaultSessionDuration)
	fixture.sessions.now = fixture.clock.Now

	fixture.user = &User{
		ID:       "u-1",
		Username: "marie.dubois",
		Role:     sec.RoleManager,
		IsActive: true,
	}
	fixture.users.put(fixture.user)

	return fixture
}

/*
TestSessionsCreateAndValidate verifies that a freshly created session
resolves into a principal carrying the account's identity and role.
*/
func TestSessionsCreateAndValidate(t *testing.T) {
	fixture := newSessionFixture(t)

	// 1. Create returns the plain token; only its digest is stored.
	token, session, err := fixture.sessions.Create(context.Background(), fixture.user, "10.0.0.1", "test-agent")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotEqual(t, token, session.TokenHash)
	assert.Equal(t, sec.HashToken(token), session.TokenHash)
	assert.Equal(t, fixture.clock.Now().Add(DefaultSessionDuration), session.ExpiresAt)

	// 2. Validation resolves the principal.
	principal, err := fixture.sessions.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", principal.UserID)
	assert.Equal(t, "marie.dubois", principal.Username)
	assert.Equal(t, sec.RoleManager, principal.Role)
	assert.Equal(t, session.TokenHash, principal.SessionTokenHash)
}

/*
TestSessionsValidateUnknownToken verifies that an unknown token is rejected
as a missing session rather than an expired one.
*/
func TestSessionsValidateUnknownToken(t *testing.T) {
	fixture := newSessionFixture(t)

	_, err := fixture.sessions.Validate(context.Background(), "never-issued")

	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeSessionNotFound))
}

/*
TestSessionsAbsoluteExpiry verifies that validation never extends a session:
the expiry instant is fixed at creation no matter how often the session is
used, and the stale row is deleted lazily on the first rejected validation.
*/
func TestSessionsAbsoluteExpiry(t *testing.T) {
	fixture := newSessionFixture(t)

	token, session, err := fixture.sessions.Create(context.Background(), fixture.user, "", "")
	require.NoError(t, err)
	issuedExpiry := session.ExpiresAt

	// 1. Heavy use right up to the deadline never moves the expiry.
	for i := 0; i < 3; i++ {
		fixture.clock.Advance(2 * time.Hour)
		_, err := fixture.sessions.Validate(context.Background(), token)
		require.NoError(t, err)
	}

	stored, err := fixture.store.FindByTokenHash(context.Background(), sec.HashToken(token))
	require.NoError(t, err)
	assert.Equal(t, issuedExpiry, stored.ExpiresAt, "validation must not slide the expiry")

	// 2. One step past the deadline the session is rejected and reaped.
	fixture.clock.Advance(2*time.Hour + time.Second)
	_, err = fixture.sessions.Validate(context.Background(), token)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeSessionExpired))
	assert.Equal(t, 0, fixture.store.count())

	// 3. The second attempt finds nothing at all.
	_, err = fixture.sessions.Validate(context.Background(), token)
	assert.True(t, apperr.IsCode(err, apperr.CodeSessionNotFound))
}

/*
TestSessionsDeactivatedOwner verifies that sessions of a deactivated
account are rejected and purged on the next validation.
*/
func TestSessionsDeactivatedOwner(t *testing.T) {
	fixture := newSessionFixture(t)

	token, _, err := fixture.sessions.Create(context.Background(), fixture.user, "", "")
	require.NoError(t, err)
	_, _, err = fixture.sessions.Create(context.Background(), fixture.user, "", "")
	require.NoError(t, err)

	// Deactivate the owner behind the session manager's back.
	require.NoError(t, fixture.users.SetActive(context.Background(), "u-1", false))

	_, err = fixture.sessions.Validate(context.Background(), token)

	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeAccountInactive))
	assert.Equal(t, 0, fixture.store.count(), "all of the owner's sessions must be purged")
}

/*
TestSessionsOrphanedSession verifies that a session whose account row has
disappeared is treated as missing and cleaned up.
*/
func TestSessionsOrphanedSession(t *testing.T) {
	fixture := newSessionFixture(t)

	orphan := &User{ID: "u-gone", Username: "ghost", Role: sec.RoleViewer, IsActive: true}
	fixture.users.put(orphan)

	token, _, err := fixture.sessions.Create(context.Background(), orphan, "", "")
	require.NoError(t, err)

	fixture.users.mu.Lock()
	delete(fixture.users.users, "u-gone")
	fixture.users.mu.Unlock()

	_, err = fixture.sessions.Validate(context.Background(), token)

	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeSessionNotFound))
	assert.Equal(t, 0, fixture.store.count())
}

/*
TestSessionsDestroyIdempotent verifies that destroying a session twice, or
destroying a token that was never issued, succeeds silently.
*/
func TestSessionsDestroyIdempotent(t *testing.T) {
	fixture := newSessionFixture(t)

	token, _, err := fixture.sessions.Create(context.Background(), fixture.user, "", "")
	require.NoError(t, err)

	require.NoError(t, fixture.sessions.Destroy(context.Background(), token))
	assert.Equal(t, 0, fixture.store.count())

	assert.NoError(t, fixture.sessions.Destroy(context.Background(), token))
	assert.NoError(t, fixture.sessions.Destroy(context.Background(), "never-issued"))
}

/*
TestSessionsDestroyOthers verifies that a rotation keeps exactly the
designated session alive.
*/
func TestSessionsDestroyOthers(t *testing.T) {
	fixture := newSessionFixture(t)

	keepToken, _, err := fixture.sessions.Create(context.Background(), fixture.user, "", "")
	require.NoError(t, err)
	dropToken, _, err := fixture.sessions.Create(context.Background(), fixture.user, "", "")
	require.NoError(t, err)

	err = fixture.sessions.DestroyOthers(context.Background(), "u-1", sec.HashToken(keepToken))
	require.NoError(t, err)

	_, err = fixture.sessions.Validate(context.Background(), keepToken)
	assert.NoError(t, err)
	_, err = fixture.sessions.Validate(context.Background(), dropToken)
	assert.Error(t, err)
}

/*
TestSessionsPurgeExpired verifies that the background sweep removes exactly
the sessions past their deadline.
*/
func TestSessionsPurgeExpired(t *testing.T) {
	fixture := newSessionFixture(t)

	// Two sessions issued now, one issued four hours later.
	_, _, err := fixture.sessions.Create(context.Background(), fixture.user, "", "")
	require.NoError(t, err)
	_, _, err = fixture.sessions.Create(context.Background(), fixture.user, "", "")
	require.NoError(t, err)

	fixture.clock.Advance(4 * time.Hour)
	freshToken, _, err := fixture.sessions.Create(context.Background(), fixture.user, "", "")
	require.NoError(t, err)

	// Move past the first two deadlines but not the third.
	fixture.clock.Advance(DefaultSessionDuration - 2*time.Hour)

	purged, err := fixture.sessions.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)
	assert.Equal(t, 1, fixture.store.count())

	_, err = fixture.sessions.Validate(context.Background(), freshToken)
	assert.NoError(t, err)
}

// sweepObservingSessionRepo records whether each expiry sweep ran under a
// deadline-bounded context.
type sweepObservingSessionRepo struct {
	*memorySessionRepo
	mu      sync.Mutex
	bounded []bool
}

func (repo *sweepObservingSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	_, hasDeadline := ctx.Deadline()
	repo.mu.Lock()
	repo.bounded = append(repo.bounded, hasDeadline)
	repo.mu.Unlock()
	return repo.memorySessionRepo.DeleteExpired(ctx, now)
}

func (repo *sweepObservingSessionRepo) sweeps() []bool {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	out := make([]bool, len(repo.bounded))
	copy(out, repo.bounded)
	return out
}

/*
TestSessionsPurgeLoop verifies that the background loop reclaims expired
rows and runs every sweep under its own deadline.
*/
func TestSessionsPurgeLoop(t *testing.T) {
	store := &sweepObservingSessionRepo{memorySessionRepo: newMemorySessionRepo()}
	users := newMemoryUserRepo()
	clock := newFakeClock()

	sessions := NewSessions(store, users, DefaultSessionDuration)
	sessions.now = clock.Now

	user := &User{ID: "u-1", Username: "marie.dubois", Role: sec.RoleManager, IsActive: true}
	users.put(user)

	_, _, err := sessions.Create(context.Background(), user, "", "")
	require.NoError(t, err)
	_, _, err = sessions.Create(context.Background(), user, "", "")
	require.NoError(t, err)
	clock.Advance(DefaultSessionDuration + time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	go sessions.PurgeLoop(ctx, 2*time.Millisecond, time.Second, logger)

	require.Eventually(t, func() bool { return store.count() == 0 },
		2*time.Second, 5*time.Millisecond, "the loop must reclaim expired rows")

	sweeps := store.sweeps()
	require.NotEmpty(t, sweeps)
	for _, boundedSweep := range sweeps {
		assert.True(t, boundedSweep, "each sweep must carry its own deadline")
	}
}
