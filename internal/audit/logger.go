// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/locafleet/rental-api/internal/platform/metrics"
	"github.com/locafleet/rental-api/pkg/uuid"
)

// # Asynchronous Logger

const (
	// defaultQueueSize bounds the in-flight record buffer.
	defaultQueueSize = 1024

	// writeTimeout bounds each persistence attempt so a stalled store
	// cannot wedge the worker.
	writeTimeout = 5 * time.Second
)

/*
Logger is a buffered, asynchronous audit writer.

Records are queued on a channel and drained by a single worker goroutine, so
records from one caller are persisted in the order they were submitted.
Record never blocks the caller: when the queue is full the record is dropped
and counted, because stalling a login on a slow audit store is worse than a
gap in the trail.

# Shutdown

Close stops accepting records, drains the queue, and waits for the worker
to finish.
*/
type Logger struct {
	store  Store
	logger *slog.Logger
	queue  chan *Record

	closeOnce sync.Once
	done      chan struct{}

	// now is injectable for tests; production uses time.Now.
	now func() time.Time
}

// NewLogger constructs and starts an asynchronous audit logger.
// A queueSize of zero or less selects the default.
func NewLogger(store Store, logger *slog.Logger, queueSize int) *Logger {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	auditLogger := &Logger{
		store:  store,
		logger: logger,
		queue:  make(chan *Record, queueSize),
		done:   make(chan struct{}),
		now:    time.Now,
	}

	go auditLogger.run()

	return auditLogger
}

/*
Record queues one audit entry for persistence. It never blocks.

Description: Assigns the record ID and timestamp, then enqueues. If the
queue is full the record is dropped and the drop counter incremented.

Parameters:
  - record: Record (ID and CreatedAt are assigned here)
*/
func (auditLogger *Logger) Record(record Record) {
	record.ID = uuid.New()
	record.CreatedAt = auditLogger.now()

	select {
	case auditLogger.queue <- &record:
	default:
		metrics.AuditRecordsDroppedTotal.Inc()
		auditLogger.logger.Warn("audit_record_dropped",
			slog.String("action", record.Action),
			slog.String("username", record.Username),
		)
	}
}

// Close stops the logger, drains queued records, and waits for the worker.
func (auditLogger *Logger) Close() {
	auditLogger.closeOnce.Do(func() {
		close(auditLogger.queue)
		<-auditLogger.done
	})
}

// run is the single worker loop: channel order is persistence order.
func (auditLogger *Logger) run() {
	defer close(auditLogger.done)

	for record := range auditLogger.queue {
		auditLogger.persist(record)
	}
}

// persist writes one record with a bounded timeout. Failures are logged and
// counted, never propagated.
func (auditLogger *Logger) persist(record *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := auditLogger.store.Append(ctx, record); err != nil {
		metrics.AuditWriteFailuresTotal.Inc()
		auditLogger.logger.Error("audit_write_failed",
			slog.String("action", record.Action),
			slog.String("username", record.Username),
			slog.String("error", err.Error()),
		)
		return
	}

	metrics.AuditRecordsTotal.Inc()
}
