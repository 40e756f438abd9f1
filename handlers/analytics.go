// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dkemp/ballotbox/election"
	"github.com/dkemp/ballotbox/models"
)

// unknownCategory buckets voters and ballots whose demographic value is
// missing or blank, so no row is ever dropped from a cross-tabulation.
const unknownCategory = "Unknown"

// PatternsFilter narrows ComputeVotingPatterns to one position and/or a
// cast-at date range. Zero values mean no filtering.
type PatternsFilter struct {
	PositionID string
	From       *time.Time
	To         *time.Time
}

// ComputePositionResults tallies ballots for one position: per-candidate
// counts and percentage of total votes, plus explicit abstentions.
// A freshly created election tallies to all zeros, never an error.
func ComputePositionResults(ctx context.Context, db *sql.DB, positionID string) (models.PositionResults, error) {
	var results models.PositionResults
	err := db.QueryRowContext(ctx, `
		SELECT id, title FROM position WHERE id = $1
	`, positionID).Scan(&results.PositionID, &results.Title)
	if err != nil {
		return models.PositionResults{}, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT c.id, c.name, COUNT(b.id)
		FROM candidate c
		LEFT JOIN ballot b ON b.candidate_id = c.id
		WHERE c.position_id = $1 AND c.active
		GROUP BY c.id, c.name
		ORDER BY c.name
	`, positionID)
	if err != nil {
		return models.PositionResults{}, fmt.Errorf("failed to tally candidates: %w", err)
	}
	defer rows.Close()

	results.Candidates = []models.CandidateResult{}
	for rows.Next() {
		var cr models.CandidateResult
		if err := rows.Scan(&cr.CandidateID, &cr.Name, &cr.VoteCount); err != nil {
			return models.PositionResults{}, err
		}
		results.Candidates = append(results.Candidates, cr)
	}
	if err := rows.Err(); err != nil {
		return models.PositionResults{}, err
	}

	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ballot WHERE position_id = $1 AND candidate_id IS NULL
	`, positionID).Scan(&results.Abstentions)
	if err != nil {
		return models.PositionResults{}, fmt.Errorf("failed to count abstentions: %w", err)
	}

	for _, cr := range results.Candidates {
		results.TotalVotes += cr.VoteCount
	}
	results.TotalVotes += results.Abstentions

	for i := range results.Candidates {
		results.Candidates[i].Percentage = roundedPct(results.Candidates[i].VoteCount, results.TotalVotes)
	}

	return results, nil
}

// ComputeVotingPatterns aggregates turnout and demographic cross-tabulations
// over the filtered ballot set of the current election.
func ComputeVotingPatterns(ctx context.Context, db *sql.DB, electionID string, filter PatternsFilter) (models.VotingPatterns, error) {
	patterns := models.VotingPatterns{
		ByClass: []models.DemographicBucket{},
		ByHouse: []models.DemographicBucket{},
		ByYear:  []models.DemographicBucket{},
	}

	where := "b.election_id = $1"
	args := []interface{}{electionID}
	if filter.PositionID != "" {
		args = append(args, filter.PositionID)
		where += fmt.Sprintf(" AND b.position_id = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += fmt.Sprintf(" AND b.cast_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += fmt.Sprintf(" AND b.cast_at < $%d", len(args))
	}

	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ballot b WHERE `+where, args...).Scan(&patterns.TotalVotes)
	if err != nil {
		return patterns, fmt.Errorf("failed to count votes: %w", err)
	}

	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM voter WHERE election_id = $1`, electionID).Scan(&patterns.EligibleVoters)
	if err != nil {
		return patterns, fmt.Errorf("failed to count voters: %w", err)
	}
	patterns.TurnoutPercentage = roundedPct(patterns.TotalVotes, patterns.EligibleVoters)

	var numPositions int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM position WHERE election_id = $1 AND active`, electionID).Scan(&numPositions)
	if err != nil {
		return patterns, fmt.Errorf("failed to count positions: %w", err)
	}
	if numPositions > 0 {
		patterns.AvgVotesPerPosition = float64(patterns.TotalVotes) / float64(numPositions)
	}

	for _, d := range []struct {
		column string
		out    *[]models.DemographicBucket
	}{
		{"class", &patterns.ByClass},
		{"house", &patterns.ByHouse},
		{"year", &patterns.ByYear},
	} {
		buckets, err := demographicBuckets(ctx, db, electionID, d.column, where, args)
		if err != nil {
			return patterns, fmt.Errorf("failed to cross-tabulate by %s: %w", d.column, err)
		}
		*d.out = buckets
	}

	return patterns, nil
}

// demographicBuckets cross-tabulates one demographic column: voters in each
// category, votes from each category, and votes-per-voter percentage.
// The column name comes from a fixed caller-side list, never from input.
func demographicBuckets(ctx context.Context, db *sql.DB, electionID, column, ballotWhere string, ballotArgs []interface{}) ([]models.DemographicBucket, error) {
	voters := map[string]int{}
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT "%s", COUNT(*) FROM voter WHERE election_id = $1 GROUP BY "%s"
	`, column, column), electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			category string
			count    int
		)
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		voters[normalizeCategory(category)] += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	votes := map[string]int{}
	rows, err = db.QueryContext(ctx, fmt.Sprintf(`
		SELECT v."%s", COUNT(*)
		FROM ballot b
		JOIN voter v ON b.voter_id = v.id
		WHERE %s
		GROUP BY v."%s"
	`, column, ballotWhere, column), ballotArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			category string
			count    int
		)
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		votes[normalizeCategory(category)] += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(voters))
	for c := range voters {
		categories = append(categories, c)
	}
	for c := range votes {
		if _, ok := voters[c]; !ok {
			categories = append(categories, c)
		}
	}
	sort.Strings(categories)

	buckets := make([]models.DemographicBucket, 0, len(categories))
	for _, c := range categories {
		buckets = append(buckets, models.DemographicBucket{
			Category:   c,
			Voters:     voters[c],
			Votes:      votes[c],
			Percentage: roundedPct(votes[c], voters[c]),
		})
	}
	return buckets, nil
}

// ComputeVotingTimeline buckets the current election's ballots by hour of
// day in the election's timezone. Hours between the first and last observed
// ballot appear even when empty, to keep the series contiguous for charts.
func ComputeVotingTimeline(ctx context.Context, db *sql.DB) ([]models.TimelineEntry, error) {
	elec, err := loadCurrentElection(ctx, db)
	if err == sql.ErrNoRows {
		return []models.TimelineEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load current election: %w", err)
	}

	loc := time.UTC
	if win, err := election.ResolveWindow(elec); err == nil {
		loc = win.Location
	}

	rows, err := db.QueryContext(ctx, `
		SELECT b.cast_at
		FROM ballot b
		JOIN voter v ON b.voter_id = v.id
		WHERE b.election_id = $1 AND v.has_voted
	`, elec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ballot timestamps: %w", err)
	}
	defer rows.Close()

	counts := map[int]int{}
	minHour, maxHour := -1, -1
	for rows.Next() {
		var castAt time.Time
		if err := rows.Scan(&castAt); err != nil {
			return nil, err
		}
		hour := castAt.In(loc).Hour()
		counts[hour]++
		if minHour == -1 || hour < minHour {
			minHour = hour
		}
		if hour > maxHour {
			maxHour = hour
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	timeline := []models.TimelineEntry{}
	if minHour == -1 {
		return timeline, nil
	}
	for hour := minHour; hour <= maxHour; hour++ {
		timeline = append(timeline, models.TimelineEntry{Hour: hour, Count: counts[hour]})
	}
	return timeline, nil
}

func normalizeCategory(category string) string {
	if category == "" {
		return unknownCategory
	}
	return category
}

// roundedPct computes round(n/d*100), 0 when the denominator is 0.
func roundedPct(n, d int) int {
	if d == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(d) * 100))
}
