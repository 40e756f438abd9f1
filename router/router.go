// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/dkemp/ballotbox/activity"
	"github.com/dkemp/ballotbox/cache"
	"github.com/dkemp/ballotbox/handlers"
	"github.com/dkemp/ballotbox/middleware"
	"github.com/dkemp/ballotbox/models"
)

func NewRouter(db *sql.DB, store cache.Store, log *activity.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	votingHandler := handlers.NewVotingHandler(db, store, log)
	resultsHandler := handlers.NewResultsHandler(db)
	adminHandler := handlers.NewAdminHandler(db, store, log)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Voting operations (voting-station clients)
	mux.HandleFunc("GET /election/phase", middleware.WithLogging(votingHandler.Phase))
	mux.HandleFunc("POST /voters/validate", middleware.WithLogging(votingHandler.ValidateVoter))
	mux.HandleFunc("GET /voters/{voterId}/ballot-options", middleware.WithLogging(votingHandler.BallotOptions))
	mux.HandleFunc("POST /ballots", middleware.WithLogging(votingHandler.CastBallot))

	// Results (administrative clients, read-only)
	mux.HandleFunc("GET /results/positions/{id}",
		middleware.WithLogging(middleware.WithPermission(db, models.ResourceResults, models.ActionView, resultsHandler.PositionResults)))
	mux.HandleFunc("GET /results/patterns",
		middleware.WithLogging(middleware.WithPermission(db, models.ResourceResults, models.ActionView, resultsHandler.Patterns)))
	mux.HandleFunc("GET /results/timeline",
		middleware.WithLogging(middleware.WithPermission(db, models.ResourceResults, models.ActionView, resultsHandler.Timeline)))

	// Administration (every mutation passes the permission matrix)
	mux.HandleFunc("POST /admin/elections",
		middleware.WithLogging(middleware.WithPermission(db, models.ResourceElections, models.ActionAdd, adminHandler.CreateElection)))
	mux.HandleFunc("PUT /admin/election/window",
		middleware.WithLogging(middleware.WithPermission(db, models.ResourceSettings, models.ActionEdit, adminHandler.UpdateWindow)))
	mux.HandleFunc("POST /admin/positions",
		middleware.WithLogging(middleware.WithPermission(db, models.ResourcePositions, models.ActionAdd, adminHandler.CreatePosition)))
	mux.HandleFunc("POST /admin/candidates",
		middleware.WithLogging(middleware.WithPermission(db, models.ResourceCandidates, models.ActionAdd, adminHandler.CreateCandidate)))
	mux.HandleFunc("POST /admin/voters",
		middleware.WithLogging(middleware.WithPermission(db, models.ResourceVoters, models.ActionAdd, adminHandler.RegisterVoter)))
	mux.HandleFunc("POST /admin/roles",
		middleware.WithLogging(middleware.WithPermission(db, models.ResourceRoles, models.ActionAdd, adminHandler.CreateRole)))
	mux.HandleFunc("GET /admin/activity",
		middleware.WithLogging(middleware.WithPermission(db, models.ResourceActivity, models.ActionView, adminHandler.Activity)))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ballotbox API v1"))
	})

	return mux
}
