// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"fmt"
	"time"

	"github.com/dkemp/ballotbox/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Window is a resolved voting window: two instants in the election's
// configured timezone. Window values are immutable snapshots; callers
// re-resolve after any settings write.
type Window struct {
	Start    time.Time
	End      time.Time
	Location *time.Location
}

// ResolveWindow parses an election's persisted date/time/zone settings into
// a Window. Any malformed or missing field yields a *models.ConfigError;
// callers treat that as "voting not permitted".
func ResolveWindow(e models.Election) (Window, error) {
	tz := e.Timezone
	if tz == "" {
		return Window{}, &models.ConfigError{Field: "timezone", Err: errors.New("not set")}
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Window{}, &models.ConfigError{Field: "timezone", Err: err}
	}

	start, err := parseInstant(e.StartDate, e.StartTime, loc)
	if err != nil {
		return Window{}, &models.ConfigError{Field: "start", Err: err}
	}

	endDate := e.EndDate
	if endDate == "" {
		endDate = e.StartDate
	}
	end, err := parseInstant(endDate, e.EndTime, loc)
	if err != nil {
		return Window{}, &models.ConfigError{Field: "end", Err: err}
	}

	if !end.After(start) {
		return Window{}, &models.ConfigError{Field: "end", Err: fmt.Errorf("window ends at or before it starts (%s >= %s)", start, end)}
	}

	return Window{Start: start, End: end, Location: loc}, nil
}

func parseInstant(date, clock string, loc *time.Location) (time.Time, error) {
	if date == "" {
		return time.Time{}, errors.New("date not set")
	}
	if clock == "" {
		return time.Time{}, errors.New("time not set")
	}
	t, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// Current derives the phase from a resolved window and a wall clock reading.
// Pure function; safe to call concurrently without locking.
//
// now < start        => not-started
// start <= now < end => active
// now >= end         => ended
func Current(w Window, now time.Time) string {
	if now.Before(w.Start) {
		return models.PhaseNotStarted
	}
	if now.Before(w.End) {
		return models.PhaseActive
	}
	return models.PhaseEnded
}

// TimeRemaining reports the time until the next phase boundary: until start
// when not started, until end when active, zero once ended.
func TimeRemaining(w Window, now time.Time) time.Duration {
	switch Current(w, now) {
	case models.PhaseNotStarted:
		return w.Start.Sub(now)
	case models.PhaseActive:
		return w.End.Sub(now)
	}
	return 0
}

// Boundary returns the instant TimeRemaining counts down to: the start when
// not started, otherwise the end.
func Boundary(w Window, now time.Time) time.Time {
	if Current(w, now) == models.PhaseNotStarted {
		return w.Start
	}
	return w.End
}
