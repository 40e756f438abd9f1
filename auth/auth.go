// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random UUID string for entity primary keys.
func NewID() string {
	return uuid.NewString()
}

// GenerateReceiptToken creates the opaque proof-of-participation token
// returned after a successful ballot cast. It is random, not derived from
// voter identity, and never persisted alongside the voter's choices.
func GenerateReceiptToken() (string, error) {
	b := make([]byte, 24) // 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate receipt token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// GenerateVoterID creates a public voter identifier of the form VOTER#####.
// Uniqueness is enforced by the voter table's unique index; callers retry on
// collision.
func GenerateVoterID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(100000))
	if err != nil {
		return "", fmt.Errorf("failed to generate voter ID: %w", err)
	}
	return fmt.Sprintf("VOTER%05d", n.Int64()), nil
}
