package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"festboard/internal/domain"
)

// AdjustmentSubmission is a proposed bonus or penalty awaiting
// approval.
type AdjustmentSubmission struct {
	Kind      domain.AdjustmentKind
	TeamName  string
	Points    int
	Reason    string
	AwardedBy string
}

func validateAdjustment(s *domain.Snapshot, sub AdjustmentSubmission) error {
	if sub.TeamName == "" {
		return domain.ErrEmptyTeam
	}
	if _, ok := s.TeamByName(sub.TeamName); !ok {
		return domain.ErrUnknownTeam
	}
	if sub.Points <= 0 {
		return domain.ErrNonPositive
	}
	if strings.TrimSpace(sub.Reason) == "" {
		return domain.ErrEmptyReason
	}
	return nil
}

// SubmitAdjustment validates a bonus or penalty and records it in the
// pending state. Pending items are inert for scoring purposes until
// approved.
func SubmitAdjustment(s *domain.Snapshot, sub AdjustmentSubmission, now time.Time) (*domain.Snapshot, *domain.Adjustment, error) {
	if err := validateAdjustment(s, sub); err != nil {
		return nil, nil, err
	}

	adjustment := domain.Adjustment{
		ID:        uuid.NewString(),
		Kind:      sub.Kind,
		TeamName:  sub.TeamName,
		Points:    sub.Points,
		Reason:    strings.TrimSpace(sub.Reason),
		AwardedBy: sub.AwardedBy,
		Status:    domain.StatusPending,
		Timestamp: now,
	}

	next := s.Clone()
	if sub.Kind == domain.KindPenalty {
		next.Penalties = append(next.Penalties, adjustment)
	} else {
		next.Bonuses = append(next.Bonuses, adjustment)
	}
	return next, &adjustment, nil
}

// UpdatePendingAdjustment edits the point value and reason of an
// adjustment that is still pending. Editing after approval or rejection
// is an administrative overwrite outside this workflow and is rejected
// here.
func UpdatePendingAdjustment(s *domain.Snapshot, kind domain.AdjustmentKind, id string, points int, reason string) (*domain.Snapshot, error) {
	if points <= 0 {
		return nil, domain.ErrNonPositive
	}
	if strings.TrimSpace(reason) == "" {
		return nil, domain.ErrEmptyReason
	}

	next := s.Clone()
	list := adjustmentList(next, kind)
	for i := range list {
		if list[i].ID != id {
			continue
		}
		if list[i].Terminal() {
			return nil, domain.ErrNotPending
		}
		list[i].Points = points
		list[i].Reason = strings.TrimSpace(reason)
		return next, nil
	}
	return nil, domain.ErrUnknownAdjustment
}

// SetAdjustmentStatus transitions a pending adjustment to approved or
// rejected. Terminal states admit no further transitions.
func SetAdjustmentStatus(s *domain.Snapshot, kind domain.AdjustmentKind, id string, status domain.AdjustmentStatus) (*domain.Snapshot, error) {
	if status != domain.StatusApproved && status != domain.StatusRejected {
		return nil, domain.ErrNotPending
	}

	next := s.Clone()
	list := adjustmentList(next, kind)
	for i := range list {
		if list[i].ID != id {
			continue
		}
		if list[i].Terminal() {
			return nil, domain.ErrAlreadyDecided
		}
		list[i].Status = status
		return next, nil
	}
	return nil, domain.ErrUnknownAdjustment
}

// DeleteAdjustment removes an adjustment regardless of its state.
func DeleteAdjustment(s *domain.Snapshot, kind domain.AdjustmentKind, id string) (*domain.Snapshot, error) {
	next := s.Clone()
	list := adjustmentList(next, kind)
	for i := range list {
		if list[i].ID == id {
			updated := append(list[:i:i], list[i+1:]...)
			if kind == domain.KindPenalty {
				next.Penalties = updated
			} else {
				next.Bonuses = updated
			}
			return next, nil
		}
	}
	return nil, domain.ErrUnknownAdjustment
}

func adjustmentList(s *domain.Snapshot, kind domain.AdjustmentKind) []domain.Adjustment {
	if kind == domain.KindPenalty {
		return s.Penalties
	}
	return s.Bonuses
}
