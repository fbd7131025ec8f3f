// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package auth

import "time"

// # Authentication Constraints

const (
	// DefaultLockoutThreshold is the number of consecutive failed attempts
	// after which an account is temporarily locked.
	DefaultLockoutThreshold = 5

	// DefaultLockoutDuration is how long a lockout lasts once triggered.
	DefaultLockoutDuration = 30 * time.Minute

	// DefaultSessionDuration is the absolute lifetime of a session token.
	// There is no sliding window: validation never extends it.
	DefaultSessionDuration = 8 * time.Hour

	// SessionTokenLength is the byte length of the random session token.
	SessionTokenLength = 32

	// ResetTokenTTL is the duration a password reset token remains valid.
	// Short-lived (1 hour) for security.
	ResetTokenTTL = 1 * time.Hour

	// ResetTokenLength is the byte length of the random password reset token.
	ResetTokenLength = 32
)

// dummyPasswordHash is a valid bcrypt digest of a throwaway string. When a
// login names an unknown, inactive, or locked account, the service still runs
// one bcrypt comparison against this digest so the response time matches the
// known-user path and usernames cannot be probed through timing.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
