// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cache provides a short-TTL cache for read-mostly reference data.

Two implementations of the Store interface:

  - Memory: per-process map, the default
  - Redis: shared cache across server instances (REDIS_ADDR)

Positions and candidates change rarely during an election, so the ballot
options lookup caches them for a few minutes and administrative writes
invalidate the key. Ballots and voter flags are never cached.
*/
package cache
