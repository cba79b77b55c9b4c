package domain

// Snapshot is the complete set of entity collections the engine
// operates over. It is the unit of persistence and of import/export:
// the engine's operations take a snapshot and return a new one, and the
// caller decides when to persist it.
type Snapshot struct {
	Teams          []Team          `json:"teams"`
	Activities     []Activity      `json:"activities"`
	ScoreEntries   []ScoreEntry    `json:"score_entries"`
	DirectorAwards []DirectorAward `json:"director_awards"`
	Bonuses        []Adjustment    `json:"bonuses"`
	Penalties      []Adjustment    `json:"penalties"`
	VotingAwards   []VotingAward   `json:"voting_awards"`
	VotingSettings VotingSettings  `json:"voting_settings"`
	Students       []Student       `json:"students"`
	PublicVotes    []PublicVote    `json:"public_votes"`
}

// TeamByName looks a team up by its identity.
func (s *Snapshot) TeamByName(name string) (Team, bool) {
	for _, t := range s.Teams {
		if t.Name == name {
			return t, true
		}
	}
	return Team{}, false
}

// ActivityByID looks an activity up by id.
func (s *Snapshot) ActivityByID(id string) (Activity, bool) {
	for _, a := range s.Activities {
		if a.ID == id {
			return a, true
		}
	}
	return Activity{}, false
}

// Clone returns a deep copy. Engine operations clone before mutating so
// the caller's snapshot is never modified in place.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Teams:          make([]Team, len(s.Teams)),
		Activities:     make([]Activity, len(s.Activities)),
		ScoreEntries:   make([]ScoreEntry, len(s.ScoreEntries)),
		DirectorAwards: append([]DirectorAward(nil), s.DirectorAwards...),
		Bonuses:        append([]Adjustment(nil), s.Bonuses...),
		Penalties:      append([]Adjustment(nil), s.Penalties...),
		VotingAwards:   append([]VotingAward(nil), s.VotingAwards...),
		VotingSettings: s.VotingSettings,
		Students:       append([]Student(nil), s.Students...),
		PublicVotes:    append([]PublicVote(nil), s.PublicVotes...),
	}
	if s.VotingSettings.Deadline != nil {
		d := *s.VotingSettings.Deadline
		out.VotingSettings.Deadline = &d
	}
	for i, t := range s.Teams {
		t.LeaderNames = append([]string(nil), t.LeaderNames...)
		t.AssignedMentors = append([]string(nil), t.AssignedMentors...)
		t.Players = append([]Player(nil), t.Players...)
		out.Teams[i] = t
	}
	for i, a := range s.Activities {
		a.Criteria = append([]Criterion(nil), a.Criteria...)
		out.Activities[i] = a
	}
	for i, e := range s.ScoreEntries {
		points := make(map[string]int, len(e.Points))
		for k, v := range e.Points {
			points[k] = v
		}
		e.Points = points
		out.ScoreEntries[i] = e
	}
	return out
}
