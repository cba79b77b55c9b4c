package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"festboard/internal/domain"
	"festboard/internal/engine"
	"festboard/internal/service"
	apperrors "festboard/pkg/errors"
)

// AdjustmentHandler serves the bonus and penalty endpoints. The same
// handler backs both routes; the kind is fixed at registration time.
type AdjustmentHandler struct {
	scoreboard *service.ScoreboardService
	kind       domain.AdjustmentKind
}

func NewAdjustmentHandler(scoreboard *service.ScoreboardService, kind domain.AdjustmentKind) *AdjustmentHandler {
	return &AdjustmentHandler{scoreboard: scoreboard, kind: kind}
}

// List handles GET /api/v1/{bonuses|penalties}
func (h *AdjustmentHandler) List(w http.ResponseWriter, r *http.Request) {
	adjustments, err := h.scoreboard.ListAdjustments(r.Context(), h.kind)
	if err != nil {
		respondError(w, r, apperrors.NewInternalError("failed to load adjustments", err))
		return
	}
	if adjustments == nil {
		adjustments = []domain.Adjustment{}
	}
	respondJSON(w, http.StatusOK, adjustments)
}

type adjustmentRequest struct {
	TeamName  string `json:"team_name"`
	Points    int    `json:"points"`
	Reason    string `json:"reason"`
	AwardedBy string `json:"awarded_by"`
}

// Submit handles POST /api/v1/{bonuses|penalties}
func (h *AdjustmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperrors.NewValidationError("invalid request body", nil))
		return
	}

	adjustment, err := h.scoreboard.SubmitAdjustment(r.Context(), engine.AdjustmentSubmission{
		Kind:      h.kind,
		TeamName:  req.TeamName,
		Points:    req.Points,
		Reason:    req.Reason,
		AwardedBy: req.AwardedBy,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, adjustment)
}

// Update handles PUT /api/v1/{bonuses|penalties}/{id}
func (h *AdjustmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req adjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperrors.NewValidationError("invalid request body", nil))
		return
	}

	if err := h.scoreboard.UpdateAdjustment(r.Context(), h.kind, id, req.Points, req.Reason); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

type statusRequest struct {
	Status domain.AdjustmentStatus `json:"status"`
}

// SetStatus handles PUT /api/v1/{bonuses|penalties}/{id}/status
func (h *AdjustmentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, apperrors.NewValidationError("invalid request body", nil))
		return
	}
	if req.Status != domain.StatusApproved && req.Status != domain.StatusRejected {
		respondError(w, r, apperrors.NewValidationError("status must be approved or rejected", nil))
		return
	}

	if err := h.scoreboard.SetAdjustmentStatus(r.Context(), h.kind, id, req.Status); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":     id,
		"status": req.Status,
	})
}

// Delete handles DELETE /api/v1/{bonuses|penalties}/{id}
func (h *AdjustmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.scoreboard.DeleteAdjustment(r.Context(), h.kind, id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
