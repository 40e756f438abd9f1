// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dkemp/ballotbox/activity"
	"github.com/dkemp/ballotbox/auth"
	"github.com/dkemp/ballotbox/cache"
	"github.com/dkemp/ballotbox/election"
	"github.com/dkemp/ballotbox/middleware"
	"github.com/dkemp/ballotbox/models"
)

// voterIDAttempts bounds retries when the random VOTER##### collides.
const voterIDAttempts = 5

type AdminHandler struct {
	db    *sql.DB
	cache cache.Store
	log   *activity.Logger
}

func NewAdminHandler(db *sql.DB, store cache.Store, log *activity.Logger) *AdminHandler {
	return &AdminHandler{db: db, cache: store, log: log}
}

func (h *AdminHandler) actor(r *http.Request) string {
	if actor := r.Header.Get(middleware.ActorHeader); actor != "" {
		return actor
	}
	return r.Header.Get(middleware.RoleHeader)
}

// CreateElection handles POST /admin/elections
// The new election becomes current; any previous current election is
// demoted in the same transaction.
func (h *AdminHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	// Reject windows the phase machine cannot resolve.
	if _, err := election.ResolveWindow(models.Election{
		StartDate: req.StartDate, EndDate: req.EndDate,
		StartTime: req.StartTime, EndTime: req.EndTime,
		Timezone: req.Timezone,
	}); err != nil {
		middleware.ErrorResponseCode(w, http.StatusBadRequest, err.Error(), models.CodeConfigError)
		return
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(r.Context(), `UPDATE election SET is_current = FALSE WHERE is_current`); err != nil {
		slog.Error("failed to demote current election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	id := auth.NewID()
	_, err = tx.ExecContext(r.Context(), `
		INSERT INTO election (id, title, start_date, end_date, start_time, end_time, timezone, is_current, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8)
	`, id, req.Title, req.StartDate, req.EndDate, req.StartTime, req.EndTime, req.Timezone, time.Now())
	if err != nil {
		slog.Error("failed to insert election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	h.log.Record(h.actor(r), "election_created", req.Title)
	slog.Info("election created", "election_id", id, "title", req.Title)

	middleware.JSONResponse(w, http.StatusCreated, map[string]string{"id": id})
}

// UpdateWindow handles PUT /admin/election/window
func (h *AdminHandler) UpdateWindow(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateWindowRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if _, err := election.ResolveWindow(models.Election{
		StartDate: req.StartDate, EndDate: req.EndDate,
		StartTime: req.StartTime, EndTime: req.EndTime,
		Timezone: req.Timezone,
	}); err != nil {
		middleware.ErrorResponseCode(w, http.StatusBadRequest, err.Error(), models.CodeConfigError)
		return
	}

	elec, err := loadCurrentElection(r.Context(), h.db)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "No current election")
		return
	}
	if err != nil {
		slog.Error("failed to load election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	_, err = h.db.ExecContext(r.Context(), `
		UPDATE election
		SET start_date = $1, end_date = $2, start_time = $3, end_time = $4, timezone = $5
		WHERE id = $6
	`, req.StartDate, req.EndDate, req.StartTime, req.EndTime, req.Timezone, elec.ID)
	if err != nil {
		slog.Error("failed to update window", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update window")
		return
	}

	h.cache.Delete(r.Context(), refDataKey(elec.ID))
	h.log.Record(h.actor(r), "window_updated", req.StartDate+" "+req.StartTime+" - "+req.EndDate+" "+req.EndTime)

	middleware.JSONResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// CreatePosition handles POST /admin/positions
func (h *AdminHandler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePositionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.MaxSelections <= 0 {
		req.MaxSelections = 1
	}

	elec, err := loadCurrentElection(r.Context(), h.db)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "No current election")
		return
	}
	if err != nil {
		slog.Error("failed to load election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	id := auth.NewID()
	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO position (id, election_id, title, display_order, max_selections, active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
	`, id, elec.ID, req.Title, req.DisplayOrder, req.MaxSelections)
	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Position title already exists for this election")
			return
		}
		slog.Error("failed to insert position", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create position")
		return
	}

	h.cache.Delete(r.Context(), refDataKey(elec.ID))
	h.log.Record(h.actor(r), "position_created", req.Title)

	middleware.JSONResponse(w, http.StatusCreated, map[string]string{"id": id})
}

// CreateCandidate handles POST /admin/candidates
func (h *AdminHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.PositionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "position_id is required")
		return
	}

	var electionID string
	err := h.db.QueryRowContext(r.Context(), `
		SELECT election_id FROM position WHERE id = $1 AND active
	`, req.PositionID).Scan(&electionID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Position not found")
		return
	}
	if err != nil {
		slog.Error("failed to load position", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if req.FilterValues == nil {
		req.FilterValues = []string{}
	}
	filterJSON, err := json.Marshal(req.FilterValues)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid filter_values")
		return
	}

	id := auth.NewID()
	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO candidate (id, election_id, position_id, name, filter_attr, filter_values, active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
	`, id, electionID, req.PositionID, req.Name, req.FilterAttr, filterJSON)
	if err != nil {
		slog.Error("failed to insert candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create candidate")
		return
	}

	h.cache.Delete(r.Context(), refDataKey(electionID))
	h.log.Record(h.actor(r), "candidate_created", req.Name)

	middleware.JSONResponse(w, http.StatusCreated, map[string]string{"id": id})
}

// RegisterVoter handles POST /admin/voters
// Generates the public VOTER##### identifier and bumps the election's
// total_voters counter atomically in the insert transaction.
func (h *AdminHandler) RegisterVoter(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	elec, err := loadCurrentElection(r.Context(), h.db)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "No current election")
		return
	}
	if err != nil {
		slog.Error("failed to load election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var voterID string
	for attempt := 0; attempt < voterIDAttempts; attempt++ {
		voterID, err = auth.GenerateVoterID()
		if err != nil {
			slog.Error("failed to generate voter ID", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register voter")
			return
		}

		tx, err := h.db.BeginTx(r.Context(), nil)
		if err != nil {
			slog.Error("failed to begin transaction", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO voter (id, voter_id, name, class, year, house, gender, has_voted, election_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)
		`, auth.NewID(), voterID, req.Name, req.Class, req.Year, req.House, req.Gender, elec.ID)
		if err != nil {
			tx.Rollback()
			if isUniqueViolation(err) {
				continue // rare VOTER##### collision, draw again
			}
			slog.Error("failed to insert voter", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register voter")
			return
		}

		_, err = tx.ExecContext(r.Context(), `
			UPDATE election SET total_voters = total_voters + 1 WHERE id = $1
		`, elec.ID)
		if err != nil {
			tx.Rollback()
			slog.Error("failed to increment total voters", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register voter")
			return
		}

		if err := tx.Commit(); err != nil {
			slog.Error("failed to commit voter", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register voter")
			return
		}

		h.log.Record(h.actor(r), "voter_registered", voterID)
		slog.Info("voter registered", "voter_id", voterID)

		middleware.JSONResponse(w, http.StatusCreated, models.RegisterVoterResponse{VoterID: voterID})
		return
	}

	middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to allocate voter ID")
}

// CreateRole handles POST /admin/roles
func (h *AdminHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRoleRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	permsJSON, err := req.Permissions.Encode()
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid permissions")
		return
	}
	// Round-trip through the parser so unknown resource keys are rejected
	// before they reach storage.
	if _, err := models.ParsePermissions(permsJSON); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	id := auth.NewID()
	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO role (id, name, active, permissions)
		VALUES ($1, $2, TRUE, $3)
	`, id, req.Name, permsJSON)
	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Role name already exists")
			return
		}
		slog.Error("failed to insert role", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create role")
		return
	}

	h.log.Record(h.actor(r), "role_created", req.Name)

	middleware.JSONResponse(w, http.StatusCreated, map[string]string{"id": id})
}

// Activity handles GET /admin/activity
func (h *AdminHandler) Activity(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QueryContext(r.Context(), `
		SELECT id, actor, action, details, created_at
		FROM activity_log
		ORDER BY created_at DESC
		LIMIT 100
	`)
	if err != nil {
		slog.Error("failed to load activity log", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	entries := []models.ActivityLogEntry{}
	for rows.Next() {
		var e models.ActivityLogEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			slog.Error("failed to scan activity entry", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		entries = append(entries, e)
	}

	middleware.JSONResponse(w, http.StatusOK, entries)
}
