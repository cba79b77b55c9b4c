package domain

import "errors"

// Sentinel errors returned by engine operations. Handlers translate
// these into the HTTP error envelope.
var (
	// Validation failures: the submission never enters the system.
	ErrEmptyTeam       = errors.New("team is required")
	ErrEmptyReason     = errors.New("reason is required")
	ErrEmptyName       = errors.New("name is required")
	ErrNonPositive     = errors.New("points must be a positive integer")
	ErrPointsExceedMax = errors.New("points exceed the activity maximum")
	ErrPastDeadline    = errors.New("deadline must be in the future")

	// Conflicts: the operation contradicts current state.
	ErrVotingOpen     = errors.New("a voting session is already open")
	ErrVotingClosed   = errors.New("no voting session is open")
	ErrDuplicateVote  = errors.New("this identifier has already voted in this session")
	ErrNotPending     = errors.New("adjustment is no longer pending")
	ErrAlreadyDecided = errors.New("adjustment already has a terminal status")

	// Lookup failures.
	ErrUnknownTeam       = errors.New("team not found")
	ErrUnknownActivity   = errors.New("activity not found")
	ErrUnknownCriterion  = errors.New("criterion not found")
	ErrUnknownStudent    = errors.New("student id not recognized")
	ErrUnknownAdjustment = errors.New("adjustment not found")
	ErrUnknownAward      = errors.New("award not found")
)
