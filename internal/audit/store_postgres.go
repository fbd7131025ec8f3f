// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/locafleet/rental-api/internal/platform/database/schema"
	"github.com/locafleet/rental-api/internal/platform/dberr"
	"github.com/locafleet/rental-api/pkg/pagination"
)

// # Audit Store

// PostgresStore implements the [Store] interface using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of the audit [Store].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

/*
Append persists one audit record into the auth.auditlog table.

Parameters:
  - context: context.Context
  - record: *Record

Returns:
  - error: Persistence failures
*/
func (repository *PostgresStore) Append(context context.Context, record *Record) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		schema.AuthAuditLog.Table,
		schema.AuthAuditLog.ID, schema.AuthAuditLog.ActorID, schema.AuthAuditLog.Username,
		schema.AuthAuditLog.Action, schema.AuthAuditLog.Resource, schema.AuthAuditLog.Detail,
		schema.AuthAuditLog.IPAddress, schema.AuthAuditLog.CreatedAt,
	)

	_, err := repository.pool.Exec(context, query,
		record.ID,
		record.ActorID,
		record.Username,
		record.Action,
		record.Resource,
		record.Detail,
		record.IPAddress,
		record.CreatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "postgres_audit_store_append_failed")
	}

	return nil
}

/*
List returns a page of audit records matching the filter, newest first.

Description: Filters are combined with AND; zero-valued filter fields are
ignored. The total count uses the same predicate so pagination metadata
stays consistent with the page contents.

Parameters:
  - context: context.Context
  - filter: Filter
  - params: pagination.Params

Returns:
  - []Record: Page of records
  - int: Total match count
  - error: Retrieval failures
*/
func (repository *PostgresStore) List(context context.Context, filter Filter, params pagination.Params) ([]Record, int, error) {

	// ── 1. Build the shared predicate ──
	where := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.Username != "" {
		where += fmt.Sprintf(" AND %s = $%d", schema.AuthAuditLog.Username, argIndex)
		args = append(args, filter.Username)
		argIndex++
	}
	if filter.Action != "" {
		where += fmt.Sprintf(" AND %s = $%d", schema.AuthAuditLog.Action, argIndex)
		args = append(args, filter.Action)
		argIndex++
	}
	if filter.Resource != "" {
		where += fmt.Sprintf(" AND %s = $%d", schema.AuthAuditLog.Resource, argIndex)
		args = append(args, filter.Resource)
		argIndex++
	}
	if !filter.From.IsZero() {
		where += fmt.Sprintf(" AND %s >= $%d", schema.AuthAuditLog.CreatedAt, argIndex)
		args = append(args, filter.From)
		argIndex++
	}
	if !filter.To.IsZero() {
		where += fmt.Sprintf(" AND %s <= $%d", schema.AuthAuditLog.CreatedAt, argIndex)
		args = append(args, filter.To)
		argIndex++
	}

	// ── 2. Total match count ──
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", schema.AuthAuditLog.Table, where)

	var total int
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_audit_store_count_failed")
	}

	// ── 3. Page of records, newest first ──
	listQuery := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s %s
		ORDER BY %s DESC
		LIMIT $%d OFFSET $%d`,
		schema.AuthAuditLog.ID, schema.AuthAuditLog.ActorID, schema.AuthAuditLog.Username,
		schema.AuthAuditLog.Action, schema.AuthAuditLog.Resource, schema.AuthAuditLog.Detail,
		schema.AuthAuditLog.IPAddress, schema.AuthAuditLog.CreatedAt,
		schema.AuthAuditLog.Table, where,
		schema.AuthAuditLog.CreatedAt,
		argIndex, argIndex+1,
	)
	args = append(args, params.Limit, params.Offset())

	rows, err := repository.pool.Query(context, listQuery, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_audit_store_list_failed")
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		record := Record{}
		if err := rows.Scan(
			&record.ID,
			&record.ActorID,
			&record.Username,
			&record.Action,
			&record.Resource,
			&record.Detail,
			&record.IPAddress,
			&record.CreatedAt,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "postgres_audit_store_scan_failed")
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "postgres_audit_store_rows_failed")
	}

	return records, total, nil
}
