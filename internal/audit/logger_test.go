// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package audit_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locafleet/rental-api/internal/audit"
	"github.com/locafleet/rental-api/pkg/pagination"
)

// capturingStore records appended entries and can be gated to simulate a
// slow or failing backend.
type capturingStore struct {
	mu      sync.Mutex
	records []audit.Record

	// gate, when non-nil, blocks Append until the channel is closed.
	gate chan struct{}
	// entered, when non-nil, receives one signal as each Append starts.
	entered chan struct{}
	// failAppend makes every Append return an error.
	failAppend bool
}

func (store *capturingStore) Append(_ context.Context, record *audit.Record) error {
	if store.entered != nil {
		store.entered <- struct{}{}
	}
	if store.gate != nil {
		<-store.gate
	}
	if store.failAppend {
		return fmt.Errorf("append failed")
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	store.records = append(store.records, *record)
	return nil
}

func (store *capturingStore) List(_ context.Context, _ audit.Filter, _ pagination.Params) ([]audit.Record, int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	out := make([]audit.Record, len(store.records))
	copy(out, store.records)
	return out, len(out), nil
}

func (store *capturingStore) actions() []string {
	store.mu.Lock()
	defer store.mu.Unlock()
	out := make([]string, 0, len(store.records))
	for _, record := range store.records {
		out = append(out, record.Action)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestLoggerPersistsInOrder verifies that queued records are written by the
single worker in submission order, with IDs and timestamps assigned.
*/
func TestLoggerPersistsInOrder(t *testing.T) {
	store := &capturingStore{}
	logger := audit.NewLogger(store, discardLogger(), 16)

	// 1. Submit a burst of records from one caller.
	for i := 0; i < 5; i++ {
		logger.Record(audit.Record{
			Username: "marie.dubois",
			Action:   fmt.Sprintf("action-%d", i),
		})
	}

	// 2. Close drains the queue before returning.
	logger.Close()

	require.Len(t, store.records, 5)
	assert.Equal(t, []string{"action-0", "action-1", "action-2", "action-3", "action-4"}, store.actions())

	for _, record := range store.records {
		assert.NotEmpty(t, record.ID)
		assert.False(t, record.CreatedAt.IsZero())
	}
}

/*
TestLoggerDropsWhenFull verifies that Record never blocks: once the queue
is full, further records are dropped instead of stalling the caller.
*/
func TestLoggerDropsWhenFull(t *testing.T) {
	gate := make(chan struct{})
	store := &capturingStore{gate: gate, entered: make(chan struct{}, 1)}
	logger := audit.NewLogger(store, discardLogger(), 1)

	// 1. Occupy the worker: wait until it is inside Append, blocked on the
	//    gate, so the queue is verifiably empty again.
	logger.Record(audit.Record{Action: "kept-by-worker"})
	<-store.entered

	// 2. The next record fills the one-slot queue; everything after that
	//    must be dropped without blocking the caller.
	logger.Record(audit.Record{Action: "kept-in-queue"})
	for i := 0; i < 10; i++ {
		logger.Record(audit.Record{Action: "dropped"})
	}

	// 3. Release the store and drain.
	close(gate)
	logger.Close()

	assert.Equal(t, []string{"kept-by-worker", "kept-in-queue"}, store.actions())
}

/*
TestLoggerSurvivesStoreFailure verifies that persistence failures are
swallowed: the worker keeps running and Close still returns.
*/
func TestLoggerSurvivesStoreFailure(t *testing.T) {
	store := &capturingStore{failAppend: true}
	logger := audit.NewLogger(store, discardLogger(), 16)

	logger.Record(audit.Record{Action: audit.ActionLogin, Username: "marie.dubois"})
	logger.Record(audit.Record{Action: audit.ActionLogout, Username: "marie.dubois"})

	logger.Close()

	assert.Empty(t, store.records)
}

/*
TestLoggerCloseIsIdempotent verifies that closing twice does not panic.
*/
func TestLoggerCloseIsIdempotent(t *testing.T) {
	store := &capturingStore{}
	logger := audit.NewLogger(store, discardLogger(), 4)

	logger.Record(audit.Record{Action: audit.ActionLogin})

	logger.Close()
	assert.NotPanics(t, func() { logger.Close() })
	assert.Len(t, store.records, 1)
}
