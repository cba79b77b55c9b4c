package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"festboard/internal/domain"
)

// OpenSessionParams describes the session an administrator wants to
// open.
type OpenSessionParams struct {
	Name         string
	Mode         domain.VotingMode
	Deadline     time.Time
	WinnerPoints int
}

// OpenSession transitions the voting manager from Closed to Open. A
// fresh session id is generated, so votes tagged with any previous id
// become inert history. The mode is fixed until the session closes.
// Opening while a session is already open is a conflict.
func OpenSession(s *domain.Snapshot, params OpenSessionParams, now time.Time) (*domain.Snapshot, error) {
	if s.VotingSettings.IsOpen {
		return nil, domain.ErrVotingOpen
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, domain.ErrEmptyName
	}
	if !params.Deadline.After(now) {
		return nil, domain.ErrPastDeadline
	}
	if params.WinnerPoints <= 0 {
		return nil, domain.ErrNonPositive
	}
	mode := params.Mode
	if mode != domain.VotingInternal {
		mode = domain.VotingPublic
	}

	next := s.Clone()
	deadline := params.Deadline
	next.VotingSettings = domain.VotingSettings{
		SessionID:    uuid.NewString(),
		IsOpen:       true,
		Mode:         mode,
		Name:         strings.TrimSpace(params.Name),
		Deadline:     &deadline,
		WinnerPoints: params.WinnerPoints,
	}
	return next, nil
}

// AdmitVote records one vote in the open session. Public mode admits
// any identifier that has not voted in this session; internal mode
// additionally requires the identifier to match a known student id,
// case-insensitively. A rejected vote has no side effect.
func AdmitVote(s *domain.Snapshot, teamName, voterIdentifier string, now time.Time) (*domain.Snapshot, *domain.PublicVote, error) {
	settings := s.VotingSettings
	if !settings.IsOpen || settings.SessionID == "" {
		return nil, nil, domain.ErrVotingClosed
	}
	if _, ok := s.TeamByName(teamName); !ok {
		return nil, nil, domain.ErrUnknownTeam
	}
	identifier := strings.TrimSpace(voterIdentifier)
	if identifier == "" {
		return nil, nil, domain.ErrUnknownStudent
	}

	if settings.Mode == domain.VotingInternal {
		if _, ok := studentByID(s.Students, identifier); !ok {
			return nil, nil, domain.ErrUnknownStudent
		}
	}
	for _, v := range s.PublicVotes {
		if v.SessionID == settings.SessionID && strings.EqualFold(v.VoterIdentifier, identifier) {
			return nil, nil, domain.ErrDuplicateVote
		}
	}

	vote := domain.PublicVote{
		ID:              uuid.NewString(),
		SessionID:       settings.SessionID,
		TeamName:        teamName,
		VoterIdentifier: identifier,
		Timestamp:       now,
	}

	next := s.Clone()
	next.PublicVotes = append(next.PublicVotes, vote)
	return next, &vote, nil
}

// FinalizeResult reports what a FinalizeSession call did.
type FinalizeResult struct {
	// Finalized is false when no session was open; the call is then a
	// no-op, which makes deadline polling idempotent.
	Finalized bool `json:"finalized"`
	// Award is the winner payout, nil when the session closed with zero
	// votes.
	Award *domain.VotingAward `json:"award,omitempty"`
}

// FinalizeSession closes the open session: it tallies the session's
// votes by team, awards the configured winner points to the team with
// the strictly highest count, and returns the manager to Closed.
// When counts tie, the first team in snapshot order wins; this is
// deterministic for a fixed team ordering but is not a fairness rule.
// Session id and deadline are cleared; name, mode and winner points are
// retained as defaults for the next session.
func FinalizeSession(s *domain.Snapshot, closedBy string, now time.Time) (*domain.Snapshot, FinalizeResult, error) {
	settings := s.VotingSettings
	if !settings.IsOpen || settings.SessionID == "" {
		return s, FinalizeResult{}, nil
	}

	counts := make(map[string]int)
	for _, v := range s.PublicVotes {
		if v.SessionID == settings.SessionID {
			counts[v.TeamName]++
		}
	}

	var winner string
	best := 0
	for _, team := range s.Teams {
		if counts[team.Name] > best {
			winner = team.Name
			best = counts[team.Name]
		}
	}

	next := s.Clone()
	next.VotingSettings.IsOpen = false
	next.VotingSettings.SessionID = ""
	next.VotingSettings.Deadline = nil

	result := FinalizeResult{Finalized: true}
	if winner != "" {
		award := domain.VotingAward{
			ID:          uuid.NewString(),
			SessionName: settings.Name,
			SessionID:   settings.SessionID,
			TeamName:    winner,
			Points:      settings.WinnerPoints,
			AwardedBy:   closedBy,
			Timestamp:   now,
		}
		next.VotingAwards = append(next.VotingAwards, award)
		result.Award = &award
	}
	return next, result, nil
}

// DeadlineReached reports whether the open session's deadline has
// passed. Always false while no session is open.
func DeadlineReached(s *domain.Snapshot, now time.Time) bool {
	settings := s.VotingSettings
	return settings.IsOpen && settings.Deadline != nil && !now.Before(*settings.Deadline)
}

// SessionStandings tallies the current session's votes per team in
// snapshot team order. Closed sessions yield the teams with zero
// counts.
func SessionStandings(s *domain.Snapshot) ([]domain.TeamStanding, int) {
	counts := make(map[string]int)
	total := 0
	if s.VotingSettings.SessionID != "" {
		for _, v := range s.PublicVotes {
			if v.SessionID == s.VotingSettings.SessionID {
				counts[v.TeamName]++
				total++
			}
		}
	}
	standings := make([]domain.TeamStanding, 0, len(s.Teams))
	for _, team := range s.Teams {
		standings = append(standings, domain.TeamStanding{
			TeamName:  team.Name,
			VoteCount: counts[team.Name],
		})
	}
	return standings, total
}

// DeleteVotingAward removes a previously emitted winner award.
func DeleteVotingAward(s *domain.Snapshot, id string) (*domain.Snapshot, error) {
	next := s.Clone()
	for i, award := range next.VotingAwards {
		if award.ID == id {
			next.VotingAwards = append(next.VotingAwards[:i:i], next.VotingAwards[i+1:]...)
			return next, nil
		}
	}
	return nil, domain.ErrUnknownAward
}

func studentByID(students []domain.Student, id string) (domain.Student, bool) {
	for _, st := range students {
		if strings.EqualFold(st.ID, id) {
			return st, true
		}
	}
	return domain.Student{}, false
}
