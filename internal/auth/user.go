// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

/*
Package auth implements the identity, session, and authorization core of the
LocaFleet rental management backend.

It defines the domain entities (User, Session) and the business rules for
credential verification, brute-force lockout, session lifecycle, and
role-based permission checks.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to staff identity.
*/
package auth

import (
	"time"

	"github.com/locafleet/rental-api/internal/platform/sec"
)

// # Domain Entities

// User represents a staff account of the LocaFleet backend.
type User struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.Role `json:"role"`
	FullName     string   `json:"full_name"`
	Email        string   `json:"email,omitempty"`
	IsActive     bool     `json:"is_active"`

	// Brute-force accounting. Never serialized: lockout state must not be
	// observable through any API response.
	LoginAttempts int        `json:"-"`
	LockedUntil   *time.Time `json:"-"`

	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// LockedAt reports whether the account is locked at the given instant.
func (user *User) LockedAt(now time.Time) bool {
	return user.LockedUntil != nil && now.Before(*user.LockedUntil)
}

// Session represents an active authenticated session.
//
// Sessions have a fixed absolute lifetime: ExpiresAt is set once at creation
// and never extended by validation.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"` // SHA-256 of the bearer token. Omitted for security.
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// ExpiredAt reports whether the session is past its expiry at the given instant.
func (session *Session) ExpiredAt(now time.Time) bool {
	return !now.Before(session.ExpiresAt)
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername        = "username"
	FieldPassword        = "password"
	FieldRole            = "role"
	FieldFullName        = "full_name"
	FieldEmail           = "email"
	FieldToken           = "token"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldSessionToken    = "session_token"
	FieldExpiresAt       = "expires_at"
	FieldUser            = "user"
	FieldMessage         = "message"
)
