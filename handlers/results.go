// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dkemp/ballotbox/middleware"
	"github.com/dkemp/ballotbox/models"
)

type ResultsHandler struct {
	db *sql.DB
}

func NewResultsHandler(db *sql.DB) *ResultsHandler {
	return &ResultsHandler{db: db}
}

// PositionResults handles GET /results/positions/{id}
func (h *ResultsHandler) PositionResults(w http.ResponseWriter, r *http.Request) {
	positionID := r.PathValue("id")
	if positionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "position id is required")
		return
	}

	results, err := ComputePositionResults(r.Context(), h.db, positionID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Position not found")
		return
	}
	if err != nil {
		slog.Error("failed to compute position results", "position_id", positionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}

// Patterns handles GET /results/patterns?position_id=&from=&to=
// from/to are RFC 3339 timestamps; the range is half-open [from, to).
func (h *ResultsHandler) Patterns(w http.ResponseWriter, r *http.Request) {
	filter := PatternsFilter{PositionID: r.URL.Query().Get("position_id")}

	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "from must be RFC 3339")
			return
		}
		filter.From = &t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "to must be RFC 3339")
			return
		}
		filter.To = &t
	}

	elec, err := loadCurrentElection(r.Context(), h.db)
	if err == sql.ErrNoRows {
		// No election yet: the empty aggregate, not an error.
		middleware.JSONResponse(w, http.StatusOK, models.VotingPatterns{
			ByClass: []models.DemographicBucket{},
			ByHouse: []models.DemographicBucket{},
			ByYear:  []models.DemographicBucket{},
		})
		return
	}
	if err != nil {
		slog.Error("failed to load election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	patterns, err := ComputeVotingPatterns(r.Context(), h.db, elec.ID, filter)
	if err != nil {
		slog.Error("failed to compute voting patterns", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, patterns)
}

// Timeline handles GET /results/timeline
func (h *ResultsHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	timeline, err := ComputeVotingTimeline(r.Context(), h.db)
	if err != nil {
		slog.Error("failed to compute voting timeline", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, timeline)
}
