// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Election phase constants
const (
	PhaseNotStarted = "not-started"
	PhaseActive     = "active"
	PhaseEnded      = "ended"
)

// Request types

type ValidateVoterRequest struct {
	VoterID string `json:"voter_id"`
}

type Selection struct {
	PositionID  string `json:"position_id"`
	CandidateID string `json:"candidate_id"`
}

type Abstention struct {
	PositionID string `json:"position_id"`
}

type CastBallotRequest struct {
	VoterID     string       `json:"voter_id"`
	Selections  []Selection  `json:"selections"`
	Abstentions []Abstention `json:"abstentions"`
}

type CreateElectionRequest struct {
	Title     string `json:"title"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`
	Timezone  string `json:"timezone"` // IANA name, e.g. Africa/Addis_Ababa
}

type UpdateWindowRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Timezone  string `json:"timezone"`
}

type CreatePositionRequest struct {
	Title         string `json:"title"`
	DisplayOrder  int    `json:"display_order"`
	MaxSelections int    `json:"max_selections"`
}

type CreateCandidateRequest struct {
	Name         string   `json:"name"`
	PositionID   string   `json:"position_id"`
	FilterAttr   string   `json:"filter_attr"` // class, year, house, gender, or empty for all voters
	FilterValues []string `json:"filter_values"`
}

type RegisterVoterRequest struct {
	Name   string `json:"name"`
	Class  string `json:"class"`
	Year   string `json:"year"`
	House  string `json:"house"`
	Gender string `json:"gender"`
}

type CreateRoleRequest struct {
	Name        string        `json:"name"`
	Permissions PermissionMap `json:"permissions"`
}

// Response types

type PhaseResponse struct {
	Phase         string `json:"phase"`
	TimeRemaining int64  `json:"time_remaining_seconds"`
	Display       string `json:"display,omitempty"` // e.g. "2 hours from now"
}

type ValidateVoterResponse struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code,omitempty"`
	Voter     *Voter `json:"voter,omitempty"`
}

type CastBallotResponse struct {
	Success      bool   `json:"success"`
	ReceiptToken string `json:"receipt_token,omitempty"`
	Message      string `json:"message,omitempty"`
}

type CandidateOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PositionOptions struct {
	PositionID    string            `json:"position_id"`
	Title         string            `json:"title"`
	MaxSelections int               `json:"max_selections"`
	Candidates    []CandidateOption `json:"candidates"`
}

type BallotOptionsResponse struct {
	VoterID   string            `json:"voter_id"`
	Positions []PositionOptions `json:"positions"`
}

type CandidateResult struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	VoteCount   int    `json:"vote_count"`
	Percentage  int    `json:"percentage"`
}

type PositionResults struct {
	PositionID  string            `json:"position_id"`
	Title       string            `json:"title"`
	TotalVotes  int               `json:"total_votes"`
	Abstentions int               `json:"abstentions"`
	Candidates  []CandidateResult `json:"candidates"`
}

type DemographicBucket struct {
	Category   string `json:"category"`
	Voters     int    `json:"voters"`
	Votes      int    `json:"votes"`
	Percentage int    `json:"percentage"`
}

type VotingPatterns struct {
	TotalVotes          int                 `json:"total_votes"`
	EligibleVoters      int                 `json:"eligible_voters"`
	TurnoutPercentage   int                 `json:"turnout_percentage"`
	AvgVotesPerPosition float64             `json:"avg_votes_per_position"`
	ByClass             []DemographicBucket `json:"by_class"`
	ByHouse             []DemographicBucket `json:"by_house"`
	ByYear              []DemographicBucket `json:"by_year"`
}

type TimelineEntry struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type RegisterVoterResponse struct {
	VoterID string `json:"voter_id"`
}

// ErrorResponse carries the machine-readable code alongside the HTTP status
// text. Voter is only set for ALREADY_VOTED, as proof of the prior vote.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Voter   *Voter `json:"voter,omitempty"`
}

// Domain types

type Election struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Timezone    string    `json:"timezone"`
	IsCurrent   bool      `json:"is_current"`
	TotalVoters int       `json:"total_voters"`
	VotedCount  int       `json:"voted_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type Voter struct {
	ID         string     `json:"-"`        // internal row ID, never exposed
	VoterID    string     `json:"voter_id"` // public VOTER##### identifier
	Name       string     `json:"name"`
	Class      string     `json:"class"`
	Year       string     `json:"year"`
	House      string     `json:"house"`
	Gender     string     `json:"gender"`
	HasVoted   bool       `json:"has_voted"`
	VotedAt    *time.Time `json:"voted_at,omitempty"`
	ElectionID string     `json:"-"`
}

type Position struct {
	ID            string `json:"id"`
	ElectionID    string `json:"election_id"`
	Title         string `json:"title"`
	DisplayOrder  int    `json:"display_order"`
	MaxSelections int    `json:"max_selections"`
	Active        bool   `json:"active"`
}

type Candidate struct {
	ID           string   `json:"id"`
	ElectionID   string   `json:"election_id"`
	PositionID   string   `json:"position_id"`
	Name         string   `json:"name"`
	FilterAttr   string   `json:"filter_attr,omitempty"`
	FilterValues []string `json:"filter_values,omitempty"`
	Active       bool     `json:"active"`
}

type Ballot struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	VoterID     string    `json:"-"` // internal voter row ID
	PositionID  string    `json:"position_id"`
	CandidateID *string   `json:"candidate_id"` // nil means explicit abstention
	CastAt      time.Time `json:"cast_at"`
}

type ActivityLogEntry struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
