// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

// Package sec provides cryptographic primitives and access-control tables.
//
// # Architecture
//
// This package isolates security-sensitive code (password hashing, token
// generation, the role/permission table) from the domain logic. It acts as an
// Infrastructure service injected into the Application layer.
package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt cost used when no explicit cost is configured.
const DefaultHashCost = bcrypt.DefaultCost

// HashPassword hashes a plain-text password using the bcrypt algorithm.
//
// The produced digest embeds a per-call random salt and the cost parameter,
// so the cost can be raised later without invalidating stored digests:
// verification always recomputes under the parameters embedded in the digest.
func HashPassword(plainTextPassword string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
// The comparison is constant-time and a mismatch is reported as false, never
// as an error.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
