// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dkemp/ballotbox/activity"
	"github.com/dkemp/ballotbox/cache"
	"github.com/dkemp/ballotbox/election"
	"github.com/dkemp/ballotbox/middleware"
	"github.com/dkemp/ballotbox/models"
)

// refDataTTL bounds how stale the cached position/candidate bundle can be.
const refDataTTL = 5 * time.Minute

type VotingHandler struct {
	db    *sql.DB
	cache cache.Store
	log   *activity.Logger

	// Now is the clock source, overridable in tests.
	Now func() time.Time
}

func NewVotingHandler(db *sql.DB, store cache.Store, log *activity.Logger) *VotingHandler {
	return &VotingHandler{db: db, cache: store, log: log, Now: time.Now}
}

// Phase handles GET /election/phase
func (h *VotingHandler) Phase(w http.ResponseWriter, r *http.Request) {
	elec, err := loadCurrentElection(r.Context(), h.db)
	if err == sql.ErrNoRows {
		middleware.ErrorResponseCode(w, http.StatusNotFound, "no current election", models.CodeConfigError)
		return
	}
	if err != nil {
		slog.Error("failed to load election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	win, err := election.ResolveWindow(elec)
	if err != nil {
		var cfgErr *models.ConfigError
		if errors.As(err, &cfgErr) {
			middleware.ErrorResponseCode(w, http.StatusConflict, cfgErr.Error(), models.CodeConfigError)
			return
		}
		slog.Error("failed to resolve window", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := h.Now()
	resp := models.PhaseResponse{
		Phase:         election.Current(win, now),
		TimeRemaining: int64(election.TimeRemaining(win, now) / time.Second),
	}
	if resp.Phase != models.PhaseEnded {
		resp.Display = humanize.Time(election.Boundary(win, now))
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// ValidateVoter handles POST /voters/validate
func (h *VotingHandler) ValidateVoter(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.VoterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter_id is required")
		return
	}

	voter, err := loadVoterByPublicID(r.Context(), h.db, req.VoterID)
	if err == sql.ErrNoRows {
		middleware.JSONResponse(w, http.StatusNotFound, models.ValidateVoterResponse{
			Success:   false,
			ErrorCode: models.CodeVoterNotFound,
		})
		return
	}
	if err != nil {
		slog.Error("failed to load voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if voter.HasVoted {
		// The voter payload is the proof of the prior vote.
		middleware.JSONResponse(w, http.StatusConflict, models.ValidateVoterResponse{
			Success:   false,
			ErrorCode: models.CodeAlreadyVoted,
			Voter:     &voter,
		})
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ValidateVoterResponse{
		Success: true,
		Voter:   &voter,
	})
}

// CastBallot handles POST /ballots
func (h *VotingHandler) CastBallot(w http.ResponseWriter, r *http.Request) {
	var req models.CastBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.VoterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter_id is required")
		return
	}

	receipt, err := CastBallot(r.Context(), h.db, h.Now(), req)
	if err == models.ErrStorageConflict {
		// Lost the compare-and-set race but the winner's write was not yet
		// visible. One retry settles it.
		receipt, err = CastBallot(r.Context(), h.db, h.Now(), req)
	}
	if err != nil {
		h.writeCastError(w, err)
		return
	}

	slog.Info("ballot cast", "voter_id", req.VoterID, "positions", len(req.Selections)+len(req.Abstentions))
	h.log.Record("voting-station", "ballot_cast", "voter "+req.VoterID)

	middleware.JSONResponse(w, http.StatusCreated, models.CastBallotResponse{
		Success:      true,
		ReceiptToken: receipt,
	})
}

func (h *VotingHandler) writeCastError(w http.ResponseWriter, err error) {
	var (
		alreadyVoted *models.AlreadyVotedError
		invalid      *models.InvalidSelectionError
		cfgErr       *models.ConfigError
	)

	switch {
	case errors.Is(err, models.ErrElectionNotActive):
		middleware.ErrorResponseCode(w, http.StatusConflict, "voting is not currently open", models.CodeElectionNotActive)
	case errors.Is(err, models.ErrVoterNotFound):
		middleware.ErrorResponseCode(w, http.StatusNotFound, "voter not found", models.CodeVoterNotFound)
	case errors.As(err, &alreadyVoted):
		middleware.JSONResponse(w, http.StatusConflict, models.ErrorResponse{
			Error:   http.StatusText(http.StatusConflict),
			Message: alreadyVoted.Error(),
			Code:    models.CodeAlreadyVoted,
			Voter: &models.Voter{
				VoterID: alreadyVoted.VoterID,
				Name:    alreadyVoted.Name,
				VotedAt: &alreadyVoted.VotedAt,
			},
		})
	case errors.As(err, &invalid):
		middleware.ErrorResponseCode(w, http.StatusBadRequest, invalid.Error(), models.CodeInvalidSelection)
	case errors.As(err, &cfgErr):
		middleware.ErrorResponseCode(w, http.StatusConflict, "voting is not currently open", models.CodeConfigError)
	case errors.Is(err, models.ErrStorageConflict):
		middleware.ErrorResponseCode(w, http.StatusConflict, "concurrent vote attempt, please retry", models.CodeStorageConflict)
	default:
		slog.Error("ballot cast failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast ballot")
	}
}

// refData is the cached position/candidate bundle for one election.
type refData struct {
	Positions  []models.Position  `json:"positions"`
	Candidates []models.Candidate `json:"candidates"`
}

func refDataKey(electionID string) string {
	return "refdata:" + electionID
}

// BallotOptions handles GET /voters/{voterId}/ballot-options
// Returns every active position with the candidate list filtered by each
// candidate's eligibility predicate against the voter's demographics.
func (h *VotingHandler) BallotOptions(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("voterId")
	if voterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voterId is required")
		return
	}

	voter, err := loadVoterByPublicID(r.Context(), h.db, voterID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponseCode(w, http.StatusNotFound, "voter not found", models.CodeVoterNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to load voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	ref, err := h.loadRefData(r, voter.ElectionID)
	if err != nil {
		slog.Error("failed to load reference data", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := models.BallotOptionsResponse{VoterID: voter.VoterID, Positions: []models.PositionOptions{}}
	for _, p := range ref.Positions {
		opts := models.PositionOptions{
			PositionID:    p.ID,
			Title:         p.Title,
			MaxSelections: p.MaxSelections,
			Candidates:    []models.CandidateOption{},
		}
		for _, c := range ref.Candidates {
			if c.PositionID != p.ID {
				continue
			}
			if !eligible(c, voter) {
				continue
			}
			opts.Candidates = append(opts.Candidates, models.CandidateOption{ID: c.ID, Name: c.Name})
		}
		resp.Positions = append(resp.Positions, opts)
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

func (h *VotingHandler) loadRefData(r *http.Request, electionID string) (refData, error) {
	ctx := r.Context()
	key := refDataKey(electionID)

	if raw, ok := h.cache.Get(ctx, key); ok {
		var ref refData
		if err := json.Unmarshal(raw, &ref); err == nil {
			return ref, nil
		}
		// Corrupt entry: fall through to the database.
		h.cache.Delete(ctx, key)
	}

	positions, err := loadActivePositions(ctx, h.db, electionID)
	if err != nil {
		return refData{}, err
	}
	candidates, err := loadActiveCandidates(ctx, h.db, electionID)
	if err != nil {
		return refData{}, err
	}

	ref := refData{Positions: positions, Candidates: candidates}
	if raw, err := json.Marshal(ref); err == nil {
		h.cache.Set(ctx, key, raw, refDataTTL)
	}
	return ref, nil
}

// eligible evaluates a candidate's eligibility predicate against the
// voter's demographic attributes, case-insensitively. No filter means
// eligible to all voters.
func eligible(c models.Candidate, v models.Voter) bool {
	if c.FilterAttr == "" || len(c.FilterValues) == 0 {
		return true
	}

	var attr string
	switch strings.ToLower(c.FilterAttr) {
	case "class":
		attr = v.Class
	case "year":
		attr = v.Year
	case "house":
		attr = v.House
	case "gender":
		attr = v.Gender
	default:
		// Unknown attribute restricts nobody.
		return true
	}

	for _, allowed := range c.FilterValues {
		if strings.EqualFold(strings.TrimSpace(allowed), strings.TrimSpace(attr)) {
			return true
		}
	}
	return false
}
