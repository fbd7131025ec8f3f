// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/locafleet/rental-api/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// Anything that is not a clean "no rows" outcome — connectivity failures,
// statement timeouts, cancelled contexts — is classified as STORE_UNAVAILABLE
// so callers can distinguish "the record does not exist" from "the store
// cannot answer right now".
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Bounded-timeout and cancellation outcomes are availability failures.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.StoreUnavailable(fmt.Errorf("%s: %w", action, err))
	}

	// 3. Every other database error is an availability failure too: the
	// caller asked a well-formed question and the store could not answer.
	return apperr.StoreUnavailable(fmt.Errorf("%s: %w", action, err))
}
