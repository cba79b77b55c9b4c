package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"festboard/internal/domain"
	"festboard/internal/engine"
	"festboard/internal/service"
	apperrors "festboard/pkg/errors"
)

// VotingHandler serves the voting session endpoints.
type VotingHandler struct {
	voting *service.VotingService
}

func NewVotingHandler(voting *service.VotingService) *VotingHandler {
	return &VotingHandler{voting: voting}
}

// GetStatus handles GET /api/v1/voting/status (polling endpoint)
func (h *VotingHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.voting.Status(r.Context())
	if err != nil {
		respondError(w, r, apperrors.NewInternalError("failed to get voting status", err))
		return
	}

	etag := generateETag(status)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=5")

	respondJSON(w, http.StatusOK, status)
}

type openSessionRequest struct {
	Name         string    `json:"name"`
	Mode         string    `json:"mode"`
	Deadline     time.Time `json:"deadline"`
	WinnerPoints int       `json:"winner_points"`
}

// OpenSession handles POST /api/v1/voting/open
func (h *VotingHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperrors.NewValidationError("invalid request body", nil))
		return
	}

	settings, err := h.voting.Open(r.Context(), engine.OpenSessionParams{
		Name:         req.Name,
		Mode:         domain.VotingMode(req.Mode),
		Deadline:     req.Deadline,
		WinnerPoints: req.WinnerPoints,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, settings)
}

type closeSessionRequest struct {
	ClosedBy string `json:"closed_by"`
}

// CloseSession handles POST /api/v1/voting/close
func (h *VotingHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	var req closeSessionRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.ClosedBy == "" {
		req.ClosedBy = "admin"
	}

	result, err := h.voting.Close(r.Context(), req.ClosedBy)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if !result.Finalized {
		respondError(w, r, apperrors.NewConflictError("no voting session is open"))
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type voteRequest struct {
	TeamName        string `json:"team_name"`
	VoterIdentifier string `json:"voter_identifier"`
}

// SubmitVote handles POST /api/v1/voting/vote
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperrors.NewValidationError("invalid request body", nil))
		return
	}
	if strings.TrimSpace(req.VoterIdentifier) == "" {
		respondError(w, r, apperrors.NewValidationError("voter_identifier is required", nil))
		return
	}

	vote, err := h.voting.Vote(r.Context(), req.TeamName, strings.TrimSpace(req.VoterIdentifier))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, vote)
}

// ListAwards handles GET /api/v1/voting/awards
func (h *VotingHandler) ListAwards(w http.ResponseWriter, r *http.Request) {
	awards, err := h.voting.ListAwards(r.Context())
	if err != nil {
		respondError(w, r, apperrors.NewInternalError("failed to load voting awards", err))
		return
	}
	if awards == nil {
		awards = []domain.VotingAward{}
	}
	respondJSON(w, http.StatusOK, awards)
}

// DeleteAward handles DELETE /api/v1/voting/awards/{id}
func (h *VotingHandler) DeleteAward(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.voting.DeleteAward(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
