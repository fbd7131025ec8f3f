// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

// Package metrics defines and registers all custom Prometheus metrics for the
// LocaFleet API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialization and exposed by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "locafleet"

// # Authentication metrics

// LoginsTotal counts authentication attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", "locked", "store_unavailable"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of authentication attempts, by outcome.",
	},
	[]string{"result"},
)

// LockoutsTotal counts lockout transitions (an account crossing the
// failed-attempt threshold). Exactly one increment per transition.
var LockoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lockouts_total",
		Help:      "Total number of accounts transitioned into the locked state.",
	},
)

// # Audit trail metrics
//
// The audit logger is best-effort by design: a persistence failure must never
// abort the security operation that triggered it. These counters are the
// out-of-band reporting channel that lets operators detect audit-trail gaps.

// AuditRecordsTotal counts audit records successfully persisted.
var AuditRecordsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_records_total",
		Help:      "Total number of audit records successfully persisted.",
	},
)

// AuditWriteFailuresTotal counts audit records that failed to persist.
var AuditWriteFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_failures_total",
		Help:      "Total number of audit records that could not be persisted.",
	},
)

// AuditRecordsDroppedTotal counts audit records discarded because the
// logger's queue was full.
var AuditRecordsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_records_dropped_total",
		Help:      "Total number of audit records dropped due to a full queue.",
	},
)
