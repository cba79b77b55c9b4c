package domain

import "time"

// AdjustmentStatus is the approval lifecycle state of a bonus or
// penalty. Only approved adjustments count toward a team's total.
type AdjustmentStatus string

const (
	StatusPending  AdjustmentStatus = "pending"
	StatusApproved AdjustmentStatus = "approved"
	StatusRejected AdjustmentStatus = "rejected"
)

// AdjustmentKind distinguishes bonuses (added) from penalties
// (subtracted).
type AdjustmentKind string

const (
	KindBonus   AdjustmentKind = "bonus"
	KindPenalty AdjustmentKind = "penalty"
)

// Adjustment is a team-scoped point adjustment awaiting or past
// approval. Multiple adjustments per team are allowed; they are not
// keyed by activity.
type Adjustment struct {
	ID        string           `json:"id"`
	Kind      AdjustmentKind   `json:"kind"`
	TeamName  string           `json:"team_name"`
	Points    int              `json:"points"`
	Reason    string           `json:"reason"`
	AwardedBy string           `json:"awarded_by"`
	Status    AdjustmentStatus `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
}

// Terminal reports whether the adjustment has reached a final state.
func (a *Adjustment) Terminal() bool {
	return a.Status == StatusApproved || a.Status == StatusRejected
}
