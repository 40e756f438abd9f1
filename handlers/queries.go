// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/dkemp/ballotbox/models"
)

// isUniqueViolation matches the two drivers' uniqueness errors. The ballot
// table's UNIQUE (voter_id, position_id) surfaces here when the
// compare-and-set is bypassed by a retried call.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

func loadCurrentElection(ctx context.Context, db *sql.DB) (models.Election, error) {
	var e models.Election
	err := db.QueryRowContext(ctx, `
		SELECT id, title, start_date, end_date, start_time, end_time, timezone,
		       is_current, total_voters, voted_count, created_at
		FROM election
		WHERE is_current
	`).Scan(
		&e.ID, &e.Title, &e.StartDate, &e.EndDate, &e.StartTime, &e.EndTime,
		&e.Timezone, &e.IsCurrent, &e.TotalVoters, &e.VotedCount, &e.CreatedAt,
	)
	return e, err
}

func loadVoterByPublicID(ctx context.Context, db *sql.DB, voterID string) (models.Voter, error) {
	var v models.Voter
	err := db.QueryRowContext(ctx, `
		SELECT id, voter_id, name, class, year, house, gender, has_voted, voted_at, election_id
		FROM voter
		WHERE voter_id = $1
	`, voterID).Scan(
		&v.ID, &v.VoterID, &v.Name, &v.Class, &v.Year, &v.House, &v.Gender,
		&v.HasVoted, &v.VotedAt, &v.ElectionID,
	)
	return v, err
}

func loadActivePositions(ctx context.Context, db *sql.DB, electionID string) ([]models.Position, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, election_id, title, display_order, max_selections, active
		FROM position
		WHERE election_id = $1 AND active
		ORDER BY display_order, title
	`, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	positions := []models.Position{}
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.ID, &p.ElectionID, &p.Title, &p.DisplayOrder, &p.MaxSelections, &p.Active); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func loadActiveCandidates(ctx context.Context, db *sql.DB, electionID string) ([]models.Candidate, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, election_id, position_id, name, filter_attr, filter_values, active
		FROM candidate
		WHERE election_id = $1 AND active
		ORDER BY name
	`, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var (
			c          models.Candidate
			filterJSON []byte
		)
		if err := rows.Scan(&c.ID, &c.ElectionID, &c.PositionID, &c.Name, &c.FilterAttr, &filterJSON, &c.Active); err != nil {
			return nil, err
		}
		if len(filterJSON) > 0 {
			if err := json.Unmarshal(filterJSON, &c.FilterValues); err != nil {
				return nil, err
			}
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
