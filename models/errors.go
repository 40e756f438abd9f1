// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"fmt"
	"time"
)

// Machine-readable error codes returned to clients.
const (
	CodeElectionNotActive = "ELECTION_NOT_ACTIVE"
	CodeVoterNotFound     = "NOT_FOUND"
	CodeAlreadyVoted      = "ALREADY_VOTED"
	CodeInvalidSelection  = "INVALID_SELECTION"
	CodeConfigError       = "CONFIG_ERROR"
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeStorageConflict   = "STORAGE_CONFLICT"
)

var (
	ErrElectionNotActive = errors.New("election is not active")
	ErrVoterNotFound     = errors.New("voter not found")
	ErrPermissionDenied  = errors.New("permission denied")

	// ErrStorageConflict means this call lost the compare-and-set race on the
	// voter's has_voted flag to a concurrent call. Callers retry the voter
	// lookup once and surface AlreadyVoted if it confirms.
	ErrStorageConflict = errors.New("storage conflict")
)

// AlreadyVotedError carries proof of the prior vote so voting-station clients
// can show the voter when their ballot was recorded.
type AlreadyVotedError struct {
	VoterID string
	Name    string
	VotedAt time.Time
}

func (e *AlreadyVotedError) Error() string {
	return fmt.Sprintf("voter %s (%s) already voted at %s", e.VoterID, e.Name, e.VotedAt.Format(time.RFC3339))
}

// InvalidSelectionError reports a malformed position or candidate reference
// in a cast-ballot request.
type InvalidSelectionError struct {
	Reason string
}

func (e *InvalidSelectionError) Error() string {
	return "invalid selection: " + e.Reason
}

// ConfigError means the election's voting window could not be resolved.
// Callers treat it as "voting not permitted", never as a crash.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("election config: bad %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
