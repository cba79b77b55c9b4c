package handler

import (
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"festboard/internal/domain"
	apperrors "festboard/pkg/errors"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, r *http.Request, appErr *apperrors.AppError) {
	var resp apperrors.ErrorResponse
	resp.Error.Type = appErr.Type
	resp.Error.Message = appErr.Message
	resp.Error.Details = appErr.Details
	resp.Error.RequestID = middleware.GetReqID(r.Context())
	resp.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)
	respondJSON(w, appErr.StatusCode, resp)
}

// respondDomainError maps engine sentinel errors onto the HTTP error
// envelope. Anything unrecognized is treated as internal.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyTeam),
		errors.Is(err, domain.ErrEmptyReason),
		errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrNonPositive),
		errors.Is(err, domain.ErrPointsExceedMax),
		errors.Is(err, domain.ErrPastDeadline):
		respondError(w, r, apperrors.NewValidationError(err.Error(), nil))
	case errors.Is(err, domain.ErrVotingOpen),
		errors.Is(err, domain.ErrVotingClosed),
		errors.Is(err, domain.ErrDuplicateVote),
		errors.Is(err, domain.ErrNotPending),
		errors.Is(err, domain.ErrAlreadyDecided):
		respondError(w, r, apperrors.NewConflictError(err.Error()))
	case errors.Is(err, domain.ErrUnknownTeam),
		errors.Is(err, domain.ErrUnknownActivity),
		errors.Is(err, domain.ErrUnknownCriterion),
		errors.Is(err, domain.ErrUnknownStudent),
		errors.Is(err, domain.ErrUnknownAdjustment),
		errors.Is(err, domain.ErrUnknownAward):
		respondError(w, r, apperrors.NewNotFoundError(err.Error()))
	default:
		respondError(w, r, apperrors.NewInternalError("request failed", err))
	}
}

func generateETag(data interface{}) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return fmt.Sprintf(`"%x"`, hash)
}
