// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db creates the database schema.

The schema works unchanged on SQLite (dev, tests) and PostgreSQL
(production). Two constraints carry the system's correctness load:

  - UNIQUE (voter_id, position_id) on ballot: at most one ballot per voter
    per position, independent of any application-level check.
  - The partial unique index on election(is_current): exactly one election
    can be current.

The voter.has_voted flag is flipped with a conditional UPDATE inside the
same transaction as the ballot inserts; see the handlers package.
*/
package db
