package handler

import (
	"encoding/json"
	"net/http"

	"festboard/internal/domain"
	"festboard/internal/engine"
	"festboard/internal/service"
	apperrors "festboard/pkg/errors"
)

// ScoreboardHandler serves the leaderboard and the score submission
// endpoints.
type ScoreboardHandler struct {
	scoreboard *service.ScoreboardService
}

func NewScoreboardHandler(scoreboard *service.ScoreboardService) *ScoreboardHandler {
	return &ScoreboardHandler{scoreboard: scoreboard}
}

// GetLeaderboard handles GET /api/v1/leaderboard (polling endpoint)
func (h *ScoreboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	results, err := h.scoreboard.Leaderboard(r.Context())
	if err != nil {
		respondError(w, r, apperrors.NewInternalError("failed to compute leaderboard", err))
		return
	}

	etag := generateETag(results)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=10")

	respondJSON(w, http.StatusOK, results)
}

// GetTeams handles GET /api/v1/teams
func (h *ScoreboardHandler) GetTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.scoreboard.ListTeams(r.Context())
	if err != nil {
		respondError(w, r, apperrors.NewInternalError("failed to load teams", err))
		return
	}
	respondJSON(w, http.StatusOK, teams)
}

// GetActivities handles GET /api/v1/activities
func (h *ScoreboardHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.scoreboard.ListActivities(r.Context())
	if err != nil {
		respondError(w, r, apperrors.NewInternalError("failed to load activities", err))
		return
	}
	respondJSON(w, http.StatusOK, activities)
}

type scoreRequest struct {
	ActivityID string         `json:"activity_id"`
	JudgeName  string         `json:"judge_name"`
	TeamName   string         `json:"team_name"`
	Points     map[string]int `json:"points"`
}

// SubmitScore handles POST /api/v1/scores
func (h *ScoreboardHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperrors.NewValidationError("invalid request body", nil))
		return
	}
	if req.JudgeName == "" {
		respondError(w, r, apperrors.NewValidationError("judge_name is required", nil))
		return
	}

	entry, err := h.scoreboard.SubmitScore(r.Context(), engine.ScoreSubmission{
		ActivityID: req.ActivityID,
		JudgeName:  req.JudgeName,
		TeamName:   req.TeamName,
		Points:     req.Points,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

type awardRequest struct {
	ActivityID string `json:"activity_id"`
	TeamName   string `json:"team_name"`
	Points     int    `json:"points"`
	AwardedBy  string `json:"awarded_by"`
}

// SubmitDirectorAward handles POST /api/v1/awards
func (h *ScoreboardHandler) SubmitDirectorAward(w http.ResponseWriter, r *http.Request) {
	var req awardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperrors.NewValidationError("invalid request body", nil))
		return
	}

	award, err := h.scoreboard.SubmitDirectorAward(r.Context(), engine.AwardSubmission{
		ActivityID: req.ActivityID,
		TeamName:   req.TeamName,
		Points:     req.Points,
		AwardedBy:  req.AwardedBy,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, award)
}

// ExportSnapshot handles GET /api/v1/snapshot
func (h *ScoreboardHandler) ExportSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.scoreboard.ExportSnapshot(r.Context())
	if err != nil {
		respondError(w, r, apperrors.NewInternalError("failed to export snapshot", err))
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="festboard-snapshot.json"`)
	respondJSON(w, http.StatusOK, snapshot)
}

// ImportSnapshot handles PUT /api/v1/snapshot
func (h *ScoreboardHandler) ImportSnapshot(w http.ResponseWriter, r *http.Request) {
	var snapshot domain.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		respondError(w, r, apperrors.NewValidationError("invalid snapshot payload", nil))
		return
	}

	if err := h.scoreboard.ImportSnapshot(r.Context(), &snapshot); err != nil {
		respondError(w, r, apperrors.NewInternalError("failed to import snapshot", err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"teams":      len(snapshot.Teams),
		"activities": len(snapshot.Activities),
	})
}
