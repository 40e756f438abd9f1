// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the voting core and its HTTP request handlers.

# Handler Types

Each handler is a struct with database and collaborator dependencies:

  - VotingHandler: phase, voter validation, ballot options, ballot casting
  - ResultsHandler: position results, voting patterns, timeline
  - AdminHandler: election/position/candidate/voter/role management

Handlers are created via constructor functions:

	votingHandler := handlers.NewVotingHandler(db, store, logger)

# Casting Protocol

The vote-casting protocol is implemented in cast.go:

	receipt, err := handlers.CastBallot(ctx, db, time.Now(), req)

The sequence is: phase gate, voter lookup, prior-vote check, selection
validation, then a single transaction covering the has_voted
compare-and-set, the ballot inserts, and the voted_count increment. Under
concurrent calls for one voter exactly one transaction commits; losers get
*models.AlreadyVotedError (with proof of the prior vote) or
models.ErrStorageConflict. The ballot table's UNIQUE (voter_id,
position_id) constraint backstops the compare-and-set.

# Tabulation

The read-only tabulation engine lives in analytics.go:

	results, err := handlers.ComputePositionResults(ctx, db, positionID)
	patterns, err := handlers.ComputeVotingPatterns(ctx, db, electionID, filter)
	timeline, err := handlers.ComputeVotingTimeline(ctx, db)

All aggregates degrade to zeros and empty arrays on an election with no
positions, candidates, or ballots.

# Admin Operations

Every admin mutation is wrapped in middleware.WithPermission and appends an
activity log entry. Reference-data writes invalidate the ballot-options
cache.
*/
package handlers
