package domain

// Player is a single roster entry belonging to a team.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Team represents a competing team. Teams are identified by name; every
// scoring record references a team by name without foreign-key
// enforcement, so consumers must tolerate dangling references.
type Team struct {
	Name            string   `json:"name"`
	Flag            string   `json:"flag"`
	ImageURL        string   `json:"image_url,omitempty"`
	LeaderNames     []string `json:"leader_names"`
	AssignedMentors []string `json:"assigned_mentors"`
	CourseName      string   `json:"course_name"`
	Color           string   `json:"color"`
	Players         []Player `json:"players,omitempty"`
}

// TeamStanding is one team's vote count within a voting session.
type TeamStanding struct {
	TeamName  string `json:"team_name"`
	VoteCount int    `json:"vote_count"`
}
