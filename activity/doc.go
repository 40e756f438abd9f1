// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package activity writes the append-only audit trail.

	logger := activity.New(db)
	defer logger.Close()
	logger.Record("superadmin", "ballot_cast", "voter VOTER12345")

Record is fire-and-forget: a full queue or a failed insert logs a warning
and the calling operation proceeds. A failed audit write must never fail a
vote.
*/
package activity
