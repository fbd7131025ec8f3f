// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package sec

// Principal is the authenticated identity attached to a request after its
// session token has been validated against the session store.
//
// # Why a separate type?
//
// Middleware and transport helpers need the caller's identity without
// importing the auth domain package. Principal carries exactly the fields
// required for authorization decisions and log enrichment — never the
// password hash, never the raw session token.
type Principal struct {
	// UserID is the owning account's UUID.
	UserID string

	// Username is the canonical login identifier.
	Username string

	// Role drives every permission check for this request.
	Role Role

	// SessionToken is the SHA-256 digest of the presented bearer token,
	// kept so handlers can destroy the current session (logout).
	SessionTokenHash string
}

// Can reports whether the principal's role grants the permission.
func (p *Principal) Can(permission Permission) bool {
	if p == nil {
		return false
	}
	return p.Role.Can(permission)
}
