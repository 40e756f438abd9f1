// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkemp/ballotbox/auth"
	"github.com/dkemp/ballotbox/election"
	"github.com/dkemp/ballotbox/models"
)

// CastBallot runs the vote-casting protocol: phase gate, voter lookup,
// prior-vote check, selection validation, then one transaction covering the
// has_voted compare-and-set, the ballot inserts, and the voted_count
// increment. Returns the receipt token on success.
//
// Under concurrent calls for the same voter, the conditional UPDATE on
// has_voted is the serialization point: exactly one transaction flips it;
// every loser observes *models.AlreadyVotedError or ErrStorageConflict and
// no ballots from the losing call are committed.
func CastBallot(ctx context.Context, db *sql.DB, now time.Time, req models.CastBallotRequest) (string, error) {
	elec, err := loadCurrentElection(ctx, db)
	if err == sql.ErrNoRows {
		return "", models.ErrElectionNotActive
	}
	if err != nil {
		return "", fmt.Errorf("failed to load current election: %w", err)
	}

	win, err := election.ResolveWindow(elec)
	if err != nil {
		return "", err // *models.ConfigError: voting not permitted
	}
	if election.Current(win, now) != models.PhaseActive {
		return "", models.ErrElectionNotActive
	}

	voter, err := loadVoterByPublicID(ctx, db, req.VoterID)
	if err == sql.ErrNoRows {
		return "", models.ErrVoterNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load voter: %w", err)
	}

	if voter.HasVoted {
		return "", alreadyVoted(voter)
	}

	ballots, err := validateSubmission(ctx, db, elec.ID, req)
	if err != nil {
		return "", err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Compare-and-set: flips has_voted only if it is still false. Zero rows
	// affected means a concurrent call won the race.
	res, err := tx.ExecContext(ctx, `
		UPDATE voter
		SET has_voted = TRUE, voted_at = $1
		WHERE id = $2 AND has_voted = FALSE
	`, now, voter.ID)
	if err != nil {
		return "", fmt.Errorf("failed to mark voter: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		tx.Rollback()
		return "", confirmLostRace(ctx, db, req.VoterID)
	}

	for _, b := range ballots {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ballot (id, election_id, voter_id, position_id, candidate_id, cast_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, auth.NewID(), elec.ID, voter.ID, b.PositionID, b.CandidateID, now)

		if err != nil {
			tx.Rollback()
			if isUniqueViolation(err) {
				// Second safety net: the (voter, position) uniqueness
				// constraint caught a duplicate the CAS did not.
				return "", confirmLostRace(ctx, db, req.VoterID)
			}
			return "", fmt.Errorf("failed to insert ballot: %w", err)
		}
	}

	// Counter rides in the same transaction, so it can never double-apply
	// for one voter.
	_, err = tx.ExecContext(ctx, `
		UPDATE election SET voted_count = voted_count + 1 WHERE id = $1
	`, elec.ID)
	if err != nil {
		return "", fmt.Errorf("failed to increment voted count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit ballot: %w", err)
	}

	receipt, err := auth.GenerateReceiptToken()
	if err != nil {
		// The vote is committed; a receipt failure must not un-vote anyone.
		slog.Warn("receipt generation failed after commit", "error", err)
		return "", nil
	}
	return receipt, nil
}

// validateSubmission checks every position and candidate reference against
// the election's active reference data and returns the ballot rows to
// write. Partial submissions are allowed; duplicate positions across the
// selection/abstention union are not.
func validateSubmission(ctx context.Context, db *sql.DB, electionID string, req models.CastBallotRequest) ([]models.Ballot, error) {
	positions, err := loadActivePositions(ctx, db, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	candidates, err := loadActiveCandidates(ctx, db, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	positionByID := make(map[string]models.Position, len(positions))
	for _, p := range positions {
		positionByID[p.ID] = p
	}
	candidateByID := make(map[string]models.Candidate, len(candidates))
	for _, c := range candidates {
		candidateByID[c.ID] = c
	}

	if len(req.Selections)+len(req.Abstentions) == 0 {
		return nil, &models.InvalidSelectionError{Reason: "no positions submitted"}
	}

	seen := make(map[string]bool)
	ballots := make([]models.Ballot, 0, len(req.Selections)+len(req.Abstentions))

	for _, sel := range req.Selections {
		if _, ok := positionByID[sel.PositionID]; !ok {
			return nil, &models.InvalidSelectionError{Reason: "unknown position " + sel.PositionID}
		}
		cand, ok := candidateByID[sel.CandidateID]
		if !ok {
			return nil, &models.InvalidSelectionError{Reason: "unknown candidate " + sel.CandidateID}
		}
		if cand.PositionID != sel.PositionID {
			return nil, &models.InvalidSelectionError{Reason: "candidate " + sel.CandidateID + " does not contest position " + sel.PositionID}
		}
		if seen[sel.PositionID] {
			return nil, &models.InvalidSelectionError{Reason: "duplicate position " + sel.PositionID}
		}
		seen[sel.PositionID] = true

		candidateID := sel.CandidateID
		ballots = append(ballots, models.Ballot{PositionID: sel.PositionID, CandidateID: &candidateID})
	}

	for _, abs := range req.Abstentions {
		if _, ok := positionByID[abs.PositionID]; !ok {
			return nil, &models.InvalidSelectionError{Reason: "unknown position " + abs.PositionID}
		}
		if seen[abs.PositionID] {
			return nil, &models.InvalidSelectionError{Reason: "duplicate position " + abs.PositionID}
		}
		seen[abs.PositionID] = true

		ballots = append(ballots, models.Ballot{PositionID: abs.PositionID, CandidateID: nil})
	}

	return ballots, nil
}

// confirmLostRace re-reads the voter after a lost compare-and-set. If the
// winner's flip is visible the caller gets the full already-voted proof;
// otherwise StorageConflict tells them to retry once.
func confirmLostRace(ctx context.Context, db *sql.DB, voterID string) error {
	voter, err := loadVoterByPublicID(ctx, db, voterID)
	if err != nil {
		return models.ErrStorageConflict
	}
	if voter.HasVoted {
		return alreadyVoted(voter)
	}
	return models.ErrStorageConflict
}

func alreadyVoted(voter models.Voter) *models.AlreadyVotedError {
	e := &models.AlreadyVotedError{VoterID: voter.VoterID, Name: voter.Name}
	if voter.VotedAt != nil {
		e.VotedAt = *voter.VotedAt
	}
	return e
}
