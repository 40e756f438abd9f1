// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkemp/ballotbox/activity"
	"github.com/dkemp/ballotbox/cache"
	"github.com/dkemp/ballotbox/middleware"
	"github.com/dkemp/ballotbox/models"
	"github.com/dkemp/ballotbox/testutil"
)

func setupRouter(t *testing.T) (*http.ServeMux, *sql.DB) {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	t.Cleanup(func() { conn.Close() })

	log := activity.New(conn)
	t.Cleanup(log.Close)

	return NewRouter(conn, cache.NewMemory(), log), conn
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := setupRouter(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/health", nil, nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Equal(t, "OK", w.Body.String())
}

func TestRootEndpoint(t *testing.T) {
	mux, _ := setupRouter(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/", nil, nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), "ballotbox")
}

// End-to-end voting flow through the routed surface: phase, validate,
// options, cast.
func TestVotingFlowThroughRouter(t *testing.T) {
	mux, conn := setupRouter(t)

	electionID := testutil.CreateTestElection(t, conn, "active")
	voterID := testutil.CreateTestVoter(t, conn, electionID, "Alice", "10A", "2026", "Red")
	posID := testutil.CreateTestPosition(t, conn, electionID, "President", 1)
	candID := testutil.AddTestCandidate(t, conn, electionID, posID, "Alice Candidate", "", nil)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/election/phase", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/voters/validate", models.ValidateVoterRequest{VoterID: voterID}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/voters/"+voterID+"/ballot-options", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var options models.BallotOptionsResponse
	testutil.AssertJSON(t, w, &options)
	require.Len(t, options.Positions, 1)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/ballots", models.CastBallotRequest{
		VoterID:    voterID,
		Selections: []models.Selection{{PositionID: posID, CandidateID: candID}},
	}, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var cast models.CastBallotResponse
	testutil.AssertJSON(t, w, &cast)
	assert.NotEmpty(t, cast.ReceiptToken)
}

func TestResultsRoutesRequireViewPermission(t *testing.T) {
	mux, conn := setupRouter(t)

	electionID := testutil.CreateTestElection(t, conn, "active")
	posID := testutil.CreateTestPosition(t, conn, electionID, "President", 1)

	paths := []string{
		"/results/positions/" + posID,
		"/results/patterns",
		"/results/timeline",
	}

	for _, path := range paths {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest("GET", path, nil, nil))
		testutil.AssertStatus(t, w, http.StatusUnauthorized)

		w = httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest("GET", path, nil, map[string]string{middleware.RoleHeader: "viewer"}))
		testutil.AssertStatus(t, w, http.StatusOK)
	}
}

func TestAdminRoutesGated(t *testing.T) {
	mux, conn := setupRouter(t)

	testutil.CreateTestElection(t, conn, "active")

	body := models.RegisterVoterRequest{Name: "Alice"}

	// The view-only role cannot mutate.
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/admin/voters", body, map[string]string{middleware.RoleHeader: "viewer"}))
	testutil.AssertStatus(t, w, http.StatusForbidden)

	// The full-access role can.
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/admin/voters", body, map[string]string{middleware.RoleHeader: "superadmin"}))
	testutil.AssertStatus(t, w, http.StatusCreated)
}

func TestAdminActivityGated(t *testing.T) {
	mux, conn := setupRouter(t)

	testutil.CreateTestRole(t, conn, "auditor", models.PermissionMap{
		models.ResourceActivity: {View: true},
	})

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/admin/activity", nil, map[string]string{middleware.RoleHeader: "auditor"}))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("GET", "/admin/activity", nil, map[string]string{middleware.RoleHeader: "ghost"}))
	testutil.AssertStatus(t, w, http.StatusForbidden)
}
