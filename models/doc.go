// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - ValidateVoterRequest: voter_id
  - CastBallotRequest: voter_id, selections, abstentions
  - CreateElectionRequest / UpdateWindowRequest: voting window fields
  - CreatePositionRequest, CreateCandidateRequest, RegisterVoterRequest
  - CreateRoleRequest: name, permissions

# Response Types

Types for JSON responses:

  - PhaseResponse: phase, time_remaining_seconds, display
  - ValidateVoterResponse: success, voter, error_code
  - CastBallotResponse: success, receipt_token
  - BallotOptionsResponse: per-position eligible candidate lists
  - PositionResults, VotingPatterns, TimelineEntry: tabulation shapes
  - ErrorResponse: error, message, code (plus voter for ALREADY_VOTED)

# Domain Types

Internal data structures:

  - Election: voting window config and running counters
  - Voter: demographics plus the has_voted flag and voted_at timestamp
  - Position: an electable office
  - Candidate: contestant with an optional eligibility filter
  - Ballot: one voter's decision for one position (nil candidate = abstention)
  - Role: named permission set
  - ActivityLogEntry: append-only audit record

# Errors

Typed, recoverable error values used by the casting protocol:

	ErrElectionNotActive, ErrVoterNotFound, ErrPermissionDenied,
	ErrStorageConflict, *AlreadyVotedError, *InvalidSelectionError,
	*ConfigError

# Permissions

Resource is a closed enum; PermissionSet is a fixed-width record per
resource. ParsePermissions rejects unknown resource keys so typos in stored
permission maps fail loudly instead of silently denying.

# Constants

Phase values:

	PhaseNotStarted = "not-started"
	PhaseActive     = "active"
	PhaseEnded      = "ended"
*/
package models
