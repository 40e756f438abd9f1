// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkemp/ballotbox/testutil"
)

func TestComputePositionResults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	electionID := testutil.CreateTestElection(t, db, "active")
	posID := testutil.CreateTestPosition(t, db, electionID, "President", 1)
	candAlice := testutil.AddTestCandidate(t, db, electionID, posID, "Alice", "", nil)
	candBob := testutil.AddTestCandidate(t, db, electionID, posID, "Bob", "", nil)

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		voterID := testutil.CreateTestVoter(t, db, electionID, "Voter", "10A", "2026", "Red")
		testutil.CastTestBallot(t, db, electionID, voterID, posID, &candAlice, now)
	}
	voterID := testutil.CreateTestVoter(t, db, electionID, "Voter", "10B", "2026", "Blue")
	testutil.CastTestBallot(t, db, electionID, voterID, posID, &candBob, now)

	abstainer := testutil.CreateTestVoter(t, db, electionID, "Voter", "10C", "2026", "Green")
	testutil.CastTestBallot(t, db, electionID, abstainer, posID, nil, now)

	results, err := ComputePositionResults(context.Background(), db, posID)
	require.NoError(t, err)

	assert.Equal(t, posID, results.PositionID)
	assert.Equal(t, "President", results.Title)
	assert.Equal(t, 5, results.TotalVotes)
	assert.Equal(t, 1, results.Abstentions)

	require.Len(t, results.Candidates, 2)
	assert.Equal(t, "Alice", results.Candidates[0].Name)
	assert.Equal(t, 3, results.Candidates[0].VoteCount)
	assert.Equal(t, 60, results.Candidates[0].Percentage)
	assert.Equal(t, "Bob", results.Candidates[1].Name)
	assert.Equal(t, 1, results.Candidates[1].VoteCount)
	assert.Equal(t, 20, results.Candidates[1].Percentage)
}

// A single ballot for one candidate tallies to exactly 100%.
func TestComputePositionResultsSingleVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	electionID := testutil.CreateTestElection(t, db, "active")
	posID := testutil.CreateTestPosition(t, db, electionID, "President", 1)
	candID := testutil.AddTestCandidate(t, db, electionID, posID, "Alice", "", nil)

	voterID := testutil.CreateTestVoter(t, db, electionID, "Voter", "10A", "2026", "Red")
	testutil.CastTestBallot(t, db, electionID, voterID, posID, &candID, time.Now().UTC())

	results, err := ComputePositionResults(context.Background(), db, posID)
	require.NoError(t, err)
	require.Len(t, results.Candidates, 1)
	assert.Equal(t, 100, results.Candidates[0].Percentage)
}

// An election with candidates but no ballots tallies to all zeros, never
// an error or a division by zero.
func TestComputePositionResultsEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	electionID := testutil.CreateTestElection(t, db, "active")
	posID := testutil.CreateTestPosition(t, db, electionID, "President", 1)
	testutil.AddTestCandidate(t, db, electionID, posID, "Alice", "", nil)

	results, err := ComputePositionResults(context.Background(), db, posID)
	require.NoError(t, err)
	assert.Equal(t, 0, results.TotalVotes)
	assert.Equal(t, 0, results.Abstentions)
	require.Len(t, results.Candidates, 1)
	assert.Equal(t, 0, results.Candidates[0].VoteCount)
	assert.Equal(t, 0, results.Candidates[0].Percentage)
}

func TestComputeVotingPatterns(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	electionID := testutil.CreateTestElection(t, db, "active")
	posID := testutil.CreateTestPosition(t, db, electionID, "President", 1)
	candID := testutil.AddTestCandidate(t, db, electionID, posID, "Alice", "", nil)

	now := time.Now().UTC()
	red := testutil.CreateTestVoter(t, db, electionID, "V1", "10A", "2026", "Red")
	blue := testutil.CreateTestVoter(t, db, electionID, "V2", "10B", "2026", "Blue")
	testutil.CreateTestVoter(t, db, electionID, "V3", "10B", "2027", "Blue") // never votes

	testutil.CastTestBallot(t, db, electionID, red, posID, &candID, now)
	testutil.CastTestBallot(t, db, electionID, blue, posID, nil, now)

	patterns, err := ComputeVotingPatterns(context.Background(), db, electionID, PatternsFilter{})
	require.NoError(t, err)

	assert.Equal(t, 2, patterns.TotalVotes)
	assert.Equal(t, 3, patterns.EligibleVoters)
	assert.Equal(t, 67, patterns.TurnoutPercentage)
	assert.InDelta(t, 2.0, patterns.AvgVotesPerPosition, 0.001)

	require.Len(t, patterns.ByHouse, 2)
	assert.Equal(t, "Blue", patterns.ByHouse[0].Category)
	assert.Equal(t, 2, patterns.ByHouse[0].Voters)
	assert.Equal(t, 1, patterns.ByHouse[0].Votes)
	assert.Equal(t, 50, patterns.ByHouse[0].Percentage)
	assert.Equal(t, "Red", patterns.ByHouse[1].Category)
	assert.Equal(t, 1, patterns.ByHouse[1].Voters)
	assert.Equal(t, 1, patterns.ByHouse[1].Votes)
	assert.Equal(t, 100, patterns.ByHouse[1].Percentage)

	require.Len(t, patterns.ByYear, 2)
	assert.Equal(t, "2026", patterns.ByYear[0].Category)
	assert.Equal(t, 2, patterns.ByYear[0].Votes)
	assert.Equal(t, "2027", patterns.ByYear[1].Category)
	assert.Equal(t, 0, patterns.ByYear[1].Votes)
}

// Blank demographic values land in the Unknown bucket instead of vanishing
// from the cross-tabulation.
func TestComputeVotingPatternsUnknownBucket(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	electionID := testutil.CreateTestElection(t, db, "active")
	posID := testutil.CreateTestPosition(t, db, electionID, "President", 1)
	candID := testutil.AddTestCandidate(t, db, electionID, posID, "Alice", "", nil)

	voterID := testutil.CreateTestVoter(t, db, electionID, "NoHouse", "10A", "2026", "")
	testutil.CastTestBallot(t, db, electionID, voterID, posID, &candID, time.Now().UTC())

	patterns, err := ComputeVotingPatterns(context.Background(), db, electionID, PatternsFilter{})
	require.NoError(t, err)

	require.Len(t, patterns.ByHouse, 1)
	assert.Equal(t, unknownCategory, patterns.ByHouse[0].Category)
	assert.Equal(t, 1, patterns.ByHouse[0].Voters)
	assert.Equal(t, 1, patterns.ByHouse[0].Votes)
}

func TestComputeVotingPatternsFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	electionID := testutil.CreateTestElection(t, db, "active")
	posPresident := testutil.CreateTestPosition(t, db, electionID, "President", 1)
	posSecretary := testutil.CreateTestPosition(t, db, electionID, "Secretary", 2)
	candP := testutil.AddTestCandidate(t, db, electionID, posPresident, "Alice", "", nil)
	candS := testutil.AddTestCandidate(t, db, electionID, posSecretary, "Bob", "", nil)

	early := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	late := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	v1 := testutil.CreateTestVoter(t, db, electionID, "V1", "10A", "2026", "Red")
	v2 := testutil.CreateTestVoter(t, db, electionID, "V2", "10B", "2026", "Blue")
	testutil.CastTestBallot(t, db, electionID, v1, posPresident, &candP, early)
	testutil.CastTestBallot(t, db, electionID, v1, posSecretary, &candS, early)
	testutil.CastTestBallot(t, db, electionID, v2, posPresident, &candP, late)

	byPosition, err := ComputeVotingPatterns(context.Background(), db, electionID, PatternsFilter{PositionID: posSecretary})
	require.NoError(t, err)
	assert.Equal(t, 1, byPosition.TotalVotes)

	cutoff := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	byTime, err := ComputeVotingPatterns(context.Background(), db, electionID, PatternsFilter{From: &cutoff})
	require.NoError(t, err)
	assert.Equal(t, 1, byTime.TotalVotes)

	byTime, err = ComputeVotingPatterns(context.Background(), db, electionID, PatternsFilter{To: &cutoff})
	require.NoError(t, err)
	assert.Equal(t, 2, byTime.TotalVotes)
}

// A freshly created election with no voters and no ballots aggregates to
// all zeros and empty arrays, never an error.
func TestComputeVotingPatternsFreshElection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	electionID := testutil.CreateTestElection(t, db, "active")

	patterns, err := ComputeVotingPatterns(context.Background(), db, electionID, PatternsFilter{})
	require.NoError(t, err)

	assert.Equal(t, 0, patterns.TotalVotes)
	assert.Equal(t, 0, patterns.EligibleVoters)
	assert.Equal(t, 0, patterns.TurnoutPercentage)
	assert.Equal(t, 0.0, patterns.AvgVotesPerPosition)
	assert.Empty(t, patterns.ByClass)
	assert.Empty(t, patterns.ByHouse)
	assert.Empty(t, patterns.ByYear)
}

// Reading patterns repeatedly must not change the answer: aggregation
// never writes.
func TestComputeVotingPatternsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	electionID := testutil.CreateTestElection(t, db, "active")
	posID := testutil.CreateTestPosition(t, db, electionID, "President", 1)
	candID := testutil.AddTestCandidate(t, db, electionID, posID, "Alice", "", nil)
	voterID := testutil.CreateTestVoter(t, db, electionID, "V1", "10A", "2026", "Red")
	testutil.CastTestBallot(t, db, electionID, voterID, posID, &candID, time.Now().UTC())

	first, err := ComputeVotingPatterns(context.Background(), db, electionID, PatternsFilter{})
	require.NoError(t, err)
	second, err := ComputeVotingPatterns(context.Background(), db, electionID, PatternsFilter{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeVotingTimeline(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	electionID := testutil.CreateTestElection(t, db, "active")
	posID := testutil.CreateTestPosition(t, db, electionID, "President", 1)
	candID := testutil.AddTestCandidate(t, db, electionID, posID, "Alice", "", nil)

	// Two ballots at 09h, none at 10h, one at 11h UTC.
	day := time.Now().UTC().Truncate(24 * time.Hour)
	for _, hour := range []int{9, 9, 11} {
		voterID := testutil.CreateTestVoter(t, db, electionID, "Voter", "10A", "2026", "Red")
		testutil.CastTestBallot(t, db, electionID, voterID, posID, &candID, day.Add(time.Duration(hour)*time.Hour))
	}

	timeline, err := ComputeVotingTimeline(context.Background(), db)
	require.NoError(t, err)

	// Contiguous from first to last observed hour, empty hours included.
	require.Len(t, timeline, 3)
	assert.Equal(t, 9, timeline[0].Hour)
	assert.Equal(t, 2, timeline[0].Count)
	assert.Equal(t, 10, timeline[1].Hour)
	assert.Equal(t, 0, timeline[1].Count)
	assert.Equal(t, 11, timeline[2].Hour)
	assert.Equal(t, 1, timeline[2].Count)
}

func TestComputeVotingTimelineEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	timeline, err := ComputeVotingTimeline(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, timeline)

	testutil.CreateTestElection(t, db, "active")
	timeline, err = ComputeVotingTimeline(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, timeline)
}

func TestRoundedPct(t *testing.T) {
	assert.Equal(t, 0, roundedPct(5, 0))
	assert.Equal(t, 0, roundedPct(0, 10))
	assert.Equal(t, 50, roundedPct(1, 2))
	assert.Equal(t, 67, roundedPct(2, 3))
	assert.Equal(t, 33, roundedPct(1, 3))
	assert.Equal(t, 100, roundedPct(3, 3))
}
