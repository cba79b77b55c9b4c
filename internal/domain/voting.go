package domain

import "time"

// VotingMode controls how voters are identified during a session.
type VotingMode string

const (
	// VotingPublic admits any voter identifier once per session, with no
	// identity verification beyond the dedup check.
	VotingPublic VotingMode = "public"
	// VotingInternal requires the voter identifier to match a known
	// Student id (case-insensitive).
	VotingInternal VotingMode = "internal"
)

// VotingSettings is the singleton describing the next or current voting
// session. SessionID is empty while no session is open. Mode is fixed
// for the duration of an open session.
type VotingSettings struct {
	SessionID    string     `json:"session_id,omitempty"`
	IsOpen       bool       `json:"is_open"`
	Mode         VotingMode `json:"mode"`
	Name         string     `json:"name"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	WinnerPoints int        `json:"winner_points"`
}

// Student is a roster entry used only to validate internal-mode voters.
type Student struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PublicVote is one admitted vote. Within a session id the voter
// identifier is unique. Votes tagged with a stale session id are inert
// history.
type PublicVote struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	TeamName        string    `json:"team_name"`
	VoterIdentifier string    `json:"voter_identifier"`
	Timestamp       time.Time `json:"timestamp"`
}

// VotingAward is the winner payout emitted when a session finalizes
// with at least one vote. The aggregator sums these into a team's
// voting total.
type VotingAward struct {
	ID          string    `json:"id"`
	SessionName string    `json:"session_name"`
	SessionID   string    `json:"session_id"`
	TeamName    string    `json:"team_name"`
	Points      int       `json:"points"`
	AwardedBy   string    `json:"awarded_by"`
	Timestamp   time.Time `json:"timestamp"`
}

// VotingStatus is the live view of the current session: open/closed
// state plus per-team standings for the session's votes.
type VotingStatus struct {
	Settings   VotingSettings `json:"settings"`
	TotalVotes int            `json:"total_votes"`
	Standings  []TeamStanding `json:"standings"`
	LastUpdate time.Time      `json:"last_update"`
}
