// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package auth

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/locafleet/rental-api/internal/audit"
	"github.com/locafleet/rental-api/internal/platform/apperr"
	"github.com/locafleet/rental-api/internal/platform/sec"
	"github.com/locafleet/rental-api/pkg/pagination"
)

// In-memory doubles for the storage contracts. They mirror the atomicity
// guarantees of the real Postgres repositories (mutex in place of row locks)
// so concurrency tests exercise the same semantics.

// # User repository double

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*User
	// failing, when set, makes every operation return a storage failure.
	failing bool
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[string]*User{}}
}

func (repo *memoryUserRepo) put(user *User) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *user
	repo.users[user.ID] = &clone
}

func (repo *memoryUserRepo) get(id string) *User {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[id]; ok {
		clone := *user
		return &clone
	}
	return nil
}

func (repo *memoryUserRepo) err() error {
	if repo.failing {
		return apperr.StoreUnavailable(nil)
	}
	return nil
}

func (repo *memoryUserRepo) FindByID(_ context.Context, id string) (*User, error) {
	if err := repo.err(); err != nil {
		return nil, err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	user, ok := repo.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (repo *memoryUserRepo) FindByUsername(_ context.Context, username string) (*User, error) {
	if err := repo.err(); err != nil {
		return nil, err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, user := range repo.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryUserRepo) Create(_ context.Context, user *User) error {
	if err := repo.err(); err != nil {
		return err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *user
	repo.users[user.ID] = &clone
	return nil
}

func (repo *memoryUserRepo) List(_ context.Context, params pagination.Params) ([]User, int, error) {
	if err := repo.err(); err != nil {
		return nil, 0, err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()

	all := make([]User, 0, len(repo.users))
	for _, user := range repo.users {
		all = append(all, *user)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	total := len(all)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (repo *memoryUserRepo) UpdatePassword(_ context.Context, userID, newHash string) error {
	if err := repo.err(); err != nil {
		return err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[userID]; ok {
		user.PasswordHash = newHash
	}
	return nil
}

func (repo *memoryUserRepo) UpdateRole(_ context.Context, userID string, role sec.Role) error {
	if err := repo.err(); err != nil {
		return err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[userID]; ok {
		user.Role = role
	}
	return nil
}

func (repo *memoryUserRepo) SetActive(_ context.Context, userID string, active bool) error {
	if err := repo.err(); err != nil {
		return err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[userID]; ok {
		user.IsActive = active
	}
	return nil
}

func (repo *memoryUserRepo) RecordFailure(_ context.Context, userID string, threshold int, lockedUntil time.Time) (int, bool, error) {
	if err := repo.err(); err != nil {
		return 0, false, err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	user, ok := repo.users[userID]
	if !ok {
		return 0, false, apperr.NotFound("User")
	}
	user.LoginAttempts++
	if user.LoginAttempts >= threshold {
		deadline := lockedUntil
		user.LockedUntil = &deadline
	}
	return user.LoginAttempts, user.LoginAttempts == threshold, nil
}

func (repo *memoryUserRepo) RecordSuccess(_ context.Context, userID string, loginAt time.Time) error {
	if err := repo.err(); err != nil {
		return err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[userID]; ok {
		user.LoginAttempts = 0
		user.LockedUntil = nil
		stamp := loginAt
		user.LastLogin = &stamp
	}
	return nil
}

func (repo *memoryUserRepo) ResetLockout(_ context.Context, userID string) error {
	if err := repo.err(); err != nil {
		return err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if user, ok := repo.users[userID]; ok {
		user.LoginAttempts = 0
		user.LockedUntil = nil
	}
	return nil
}

func (repo *memoryUserRepo) CountActiveAdmins(_ context.Context) (int, error) {
	if err := repo.err(); err != nil {
		return 0, err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	count := 0
	for _, user := range repo.users {
		if user.Role == sec.RoleAdmin && user.IsActive {
			count++
		}
	}
	return count, nil
}

func (repo *memoryUserRepo) CountAll(_ context.Context) (int, error) {
	if err := repo.err(); err != nil {
		return 0, err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.users), nil
}

// # Session repository double

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*Session // by ID
	failing  bool
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: map[string]*Session{}}
}

func (repo *memorySessionRepo) err() error {
	if repo.failing {
		return apperr.StoreUnavailable(nil)
	}
	return nil
}

func (repo *memorySessionRepo) count() int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.sessions)
}

func (repo *memorySessionRepo) Create(_ context.Context, session *Session) error {
	if err := repo.err(); err != nil {
		return err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	clone := *session
	repo.sessions[session.ID] = &clone
	return nil
}

func (repo *memorySessionRepo) FindByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	if err := repo.err(); err != nil {
		return nil, err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, session := range repo.sessions {
		if session.TokenHash == tokenHash {
			clone := *session
			return &clone, nil
		}
	}
	return nil, apperr.SessionNotFound()
}

func (repo *memorySessionRepo) Delete(_ context.Context, sessionID string) error {
	if err := repo.err(); err != nil {
		return err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	delete(repo.sessions, sessionID)
	return nil
}

func (repo *memorySessionRepo) DeleteAllForUser(_ context.Context, userID string) error {
	if err := repo.err(); err != nil {
		return err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for id, session := range repo.sessions {
		if session.UserID == userID {
			delete(repo.sessions, id)
		}
	}
	return nil
}

func (repo *memorySessionRepo) DeleteOthers(_ context.Context, userID, keepTokenHash string) error {
	if err := repo.err(); err != nil {
		return err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for id, session := range repo.sessions {
		if session.UserID == userID && session.TokenHash != keepTokenHash {
			delete(repo.sessions, id)
		}
	}
	return nil
}

func (repo *memorySessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	if err := repo.err(); err != nil {
		return 0, err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	var purged int64
	for id, session := range repo.sessions {
		if !now.Before(session.ExpiresAt) {
			delete(repo.sessions, id)
			purged++
		}
	}
	return purged, nil
}

// # Reset token repository double

type memoryResetRepo struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemoryResetRepo() *memoryResetRepo {
	return &memoryResetRepo{tokens: map[string]string{}}
}

func (repo *memoryResetRepo) Set(_ context.Context, token, userID string, _ time.Duration) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.tokens[token] = userID
	return nil
}

func (repo *memoryResetRepo) Get(_ context.Context, token string) (string, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	userID, ok := repo.tokens[token]
	if !ok {
		return "", apperr.NotFound("Reset token is invalid or expired")
	}
	return userID, nil
}

func (repo *memoryResetRepo) Delete(_ context.Context, token string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	delete(repo.tokens, token)
	return nil
}

// # Auditor double

type recordingAuditor struct {
	mu      sync.Mutex
	records []audit.Record
}

func (auditor *recordingAuditor) Record(record audit.Record) {
	auditor.mu.Lock()
	defer auditor.mu.Unlock()
	auditor.records = append(auditor.records, record)
}

// actions returns the recorded action names in submission order.
func (auditor *recordingAuditor) actions() []string {
	auditor.mu.Lock()
	defer auditor.mu.Unlock()
	out := make([]string, 0, len(auditor.records))
	for _, record := range auditor.records {
		out = append(out, record.Action)
	}
	return out
}

// last returns the most recent record carrying the given action, or nil.
func (auditor *recordingAuditor) last(action string) *audit.Record {
	auditor.mu.Lock()
	defer auditor.mu.Unlock()
	for i := len(auditor.records) - 1; i >= 0; i-- {
		if auditor.records[i].Action == action {
			record := auditor.records[i]
			return &record
		}
	}
	return nil
}

// countAction returns how many records carry the given action.
func (auditor *recordingAuditor) countAction(action string) int {
	auditor.mu.Lock()
	defer auditor.mu.Unlock()
	count := 0
	for _, record := range auditor.records {
		if record.Action == action {
			count++
		}
	}
	return count
}
