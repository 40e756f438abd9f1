// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dkemp/ballotbox/auth"
	"github.com/dkemp/ballotbox/db"
	"github.com/dkemp/ballotbox/models"
)

var dbSeq atomic.Int64

// SetupTestDB creates a fresh in-memory SQLite database with the full
// schema. Each call gets its own database; cache=shared keeps it alive
// across the pool's connections, and a single connection sidesteps
// SQLite's writer lock so concurrency tests exercise the application
// logic, not the engine.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:ballotbox_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// CreateTestElection creates the current election with a voting window in
// the requested phase: "active", "not-started", "ended", or "unconfigured"
// (blank window fields). Returns the election ID.
func CreateTestElection(t *testing.T, conn *sql.DB, phase string) string {
	t.Helper()

	now := time.Now().UTC()
	var startDate, endDate, startTime, endTime, tz string
	tz = "UTC"

	switch phase {
	case "active":
		startDate = now.AddDate(0, 0, -1).Format("2006-01-02")
		endDate = now.AddDate(0, 0, 1).Format("2006-01-02")
		startTime, endTime = "00:00", "23:59"
	case "not-started":
		startDate = now.AddDate(0, 0, 1).Format("2006-01-02")
		endDate = now.AddDate(0, 0, 2).Format("2006-01-02")
		startTime, endTime = "00:00", "23:59"
	case "ended":
		startDate = now.AddDate(0, 0, -2).Format("2006-01-02")
		endDate = now.AddDate(0, 0, -1).Format("2006-01-02")
		startTime, endTime = "00:00", "23:59"
	case "unconfigured":
		tz = ""
	default:
		t.Fatalf("unknown test election phase %q", phase)
	}

	electionID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO election (id, title, start_date, end_date, start_time, end_time, timezone, is_current, created_at)
		VALUES ($1, 'Test Election', $2, $3, $4, $5, $6, TRUE, $7)
	`, electionID, startDate, endDate, startTime, endTime, tz, now)
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	return electionID
}

// CreateTestVoter registers a voter and returns the public VOTER##### ID.
func CreateTestVoter(t *testing.T, conn *sql.DB, electionID, name, class, year, house string) string {
	t.Helper()

	voterID, err := auth.GenerateVoterID()
	if err != nil {
		t.Fatalf("Failed to generate voter ID: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO voter (id, voter_id, name, class, year, house, gender, has_voted, election_id)
		VALUES ($1, $2, $3, $4, $5, $6, '', FALSE, $7)
	`, auth.NewID(), voterID, name, class, year, house, electionID)
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	_, err = conn.Exec(`UPDATE election SET total_voters = total_voters + 1 WHERE id = $1`, electionID)
	if err != nil {
		t.Fatalf("Failed to bump total voters: %v", err)
	}

	return voterID
}

// CreateTestPosition adds an active position and returns its ID.
func CreateTestPosition(t *testing.T, conn *sql.DB, electionID, title string, order int) string {
	t.Helper()

	positionID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO position (id, election_id, title, display_order, max_selections, active)
		VALUES ($1, $2, $3, $4, 1, TRUE)
	`, positionID, electionID, title, order)
	if err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}

	return positionID
}

// AddTestCandidate adds an active candidate, optionally with an
// eligibility filter, and returns the candidate ID.
func AddTestCandidate(t *testing.T, conn *sql.DB, electionID, positionID, name, filterAttr string, filterValues []string) string {
	t.Helper()

	if filterValues == nil {
		filterValues = []string{}
	}
	filterJSON, err := json.Marshal(filterValues)
	if err != nil {
		t.Fatalf("Failed to encode filter values: %v", err)
	}

	candidateID := auth.NewID()
	_, err = conn.Exec(`
		INSERT INTO candidate (id, election_id, position_id, name, filter_attr, filter_values, active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
	`, candidateID, electionID, positionID, name, filterAttr, filterJSON)
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return candidateID
}

// CreateTestRole inserts a role with the given permission map.
func CreateTestRole(t *testing.T, conn *sql.DB, name string, perms models.PermissionMap) {
	t.Helper()

	permsJSON, err := perms.Encode()
	if err != nil {
		t.Fatalf("Failed to encode permissions: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO role (id, name, active, permissions)
		VALUES ($1, $2, TRUE, $3)
	`, auth.NewID(), name, permsJSON)
	if err != nil {
		t.Fatalf("Failed to create test role: %v", err)
	}
}

// CastTestBallot writes a ballot row and marks the voter as voted,
// bypassing the casting protocol, for seeding tabulation tests.
func CastTestBallot(t *testing.T, conn *sql.DB, electionID, voterPublicID, positionID string, candidateID *string, castAt time.Time) {
	t.Helper()

	var voterRowID string
	err := conn.QueryRow(`SELECT id FROM voter WHERE voter_id = $1`, voterPublicID).Scan(&voterRowID)
	if err != nil {
		t.Fatalf("Failed to resolve voter: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO ballot (id, election_id, voter_id, position_id, candidate_id, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, auth.NewID(), electionID, voterRowID, positionID, candidateID, castAt)
	if err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}

	res, err := conn.Exec(`
		UPDATE voter SET has_voted = TRUE, voted_at = $1 WHERE id = $2 AND has_voted = FALSE
	`, castAt, voterRowID)
	if err != nil {
		t.Fatalf("Failed to mark voter: %v", err)
	}
	// Only the first ballot for a voter flips the flag and bumps the counter.
	if n, _ := res.RowsAffected(); n > 0 {
		_, err = conn.Exec(`UPDATE election SET voted_count = voted_count + 1 WHERE id = $1`, electionID)
		if err != nil {
			t.Fatalf("Failed to bump voted count: %v", err)
		}
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
