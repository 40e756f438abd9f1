// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election derives the current election phase from persisted window
configuration and a wall clock reading.

# Resolving the Window

ResolveWindow turns an election row's date/time/zone strings into two
instants:

	win, err := election.ResolveWindow(elec)
	if err != nil {
		// *models.ConfigError: voting is not permitted, but nothing crashes
	}

# Deriving the Phase

Current is a pure function over the window and a clock reading:

	switch election.Current(win, time.Now()) {
	case models.PhaseNotStarted:
	case models.PhaseActive:
	case models.PhaseEnded:
	}

The phase is non-decreasing in time for a fixed window: once ended, no
transition leaves that state. Because nothing here mutates shared state,
every function is safe under concurrent callers without locking.
*/
package election
