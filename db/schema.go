// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS. The SQL sticks to the
// subset both SQLite and PostgreSQL accept: timestamps are always written by
// the application, never defaulted by the engine.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Elections
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    start_date TEXT NOT NULL DEFAULT '',
    end_date TEXT NOT NULL DEFAULT '',
    start_time TEXT NOT NULL DEFAULT '',
    end_time TEXT NOT NULL DEFAULT '',
    timezone TEXT NOT NULL DEFAULT '',
    is_current BOOLEAN NOT NULL DEFAULT FALSE,
    total_voters INTEGER NOT NULL DEFAULT 0,
    voted_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);

-- At most one current election at a time
CREATE UNIQUE INDEX IF NOT EXISTS idx_election_current ON election(is_current) WHERE is_current;

-- Voters
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    voter_id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    class TEXT NOT NULL DEFAULT '',
    year TEXT NOT NULL DEFAULT '',
    house TEXT NOT NULL DEFAULT '',
    gender TEXT NOT NULL DEFAULT '',
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    voted_at TIMESTAMP,
    election_id TEXT NOT NULL REFERENCES election(id)
);

CREATE INDEX IF NOT EXISTS idx_voter_election ON voter(election_id);
CREATE INDEX IF NOT EXISTS idx_voter_voter_id ON voter(voter_id);

-- Positions
CREATE TABLE IF NOT EXISTS position (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id),
    title TEXT NOT NULL,
    display_order INTEGER NOT NULL DEFAULT 0,
    max_selections INTEGER NOT NULL DEFAULT 1,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    UNIQUE (election_id, title)
);

CREATE INDEX IF NOT EXISTS idx_position_election ON position(election_id);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id),
    position_id TEXT NOT NULL REFERENCES position(id),
    name TEXT NOT NULL,
    filter_attr TEXT NOT NULL DEFAULT '',
    filter_values TEXT NOT NULL DEFAULT '[]',
    active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE INDEX IF NOT EXISTS idx_candidate_position ON candidate(position_id);
CREATE INDEX IF NOT EXISTS idx_candidate_election ON candidate(election_id);

-- Ballots: append-only, at most one per (voter, position)
CREATE TABLE IF NOT EXISTS ballot (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id),
    voter_id TEXT NOT NULL REFERENCES voter(id),
    position_id TEXT NOT NULL REFERENCES position(id),
    candidate_id TEXT REFERENCES candidate(id),
    cast_at TIMESTAMP NOT NULL,
    UNIQUE (voter_id, position_id)
);

CREATE INDEX IF NOT EXISTS idx_ballot_position ON ballot(position_id);
CREATE INDEX IF NOT EXISTS idx_ballot_candidate ON ballot(candidate_id);
CREATE INDEX IF NOT EXISTS idx_ballot_election ON ballot(election_id);

-- Roles
CREATE TABLE IF NOT EXISTS role (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    permissions TEXT NOT NULL DEFAULT '{}'
);

-- Activity log: append-only audit trail
CREATE TABLE IF NOT EXISTS activity_log (
    id TEXT PRIMARY KEY,
    actor TEXT NOT NULL,
    action TEXT NOT NULL,
    details TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activity_created ON activity_log(created_at);
`
