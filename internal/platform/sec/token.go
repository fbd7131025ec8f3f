// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// # Secure Tokens

// GenerateSecureToken returns a URL-safe random token built from byteLength
// bytes of cryptographically secure randomness. 32 bytes gives 256 bits of
// entropy, comfortably above the 128-bit floor required for bearer tokens.
func GenerateSecureToken(byteLength int) (string, error) {
	raw := make([]byte, byteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("sec: failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// HashToken returns the SHA-256 hex digest of a token.
//
// Only the digest is persisted: a leaked session table row is not a usable
// bearer credential.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
