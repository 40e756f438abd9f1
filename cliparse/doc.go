// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse parses server configuration from CLI flags with
environment fallback.

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Flags: -p (port), -d (database URL), -t (sqlite|postgres), -redis.
Environment: PORT, DATABASE_URL, DATABASE_TYPE, REDIS_ADDR.

Only server plumbing lives here. The election's voting window is data, not
configuration: it is stored on the election row and resolved per request by
the election package.
*/
package cliparse
