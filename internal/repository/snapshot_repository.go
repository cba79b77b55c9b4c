package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"festboard/internal/domain"
	"festboard/pkg/database"
)

// PostgresSnapshotRepository persists the snapshot across the entity
// tables. Save rewrites every table inside one transaction so readers
// always observe a complete snapshot, never a partial write.
type PostgresSnapshotRepository struct {
	db *database.PostgresDB
}

func NewPostgresSnapshotRepository(db *database.PostgresDB) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{db: db}
}

// Load reads every entity collection into one snapshot.
func (r *PostgresSnapshotRepository) Load(ctx context.Context) (*domain.Snapshot, error) {
	snapshot := &domain.Snapshot{}

	if err := r.loadTeams(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := r.loadActivities(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := r.loadScoreEntries(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := r.loadDirectorAwards(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := r.loadAdjustments(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := r.loadVotingAwards(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := r.loadVotingSettings(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := r.loadStudents(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := r.loadPublicVotes(ctx, snapshot); err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (r *PostgresSnapshotRepository) loadTeams(ctx context.Context, snapshot *domain.Snapshot) error {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT name, flag, COALESCE(image_url, ''), leader_names, assigned_mentors, course_name, color
		FROM teams
		ORDER BY position
	`)
	if err != nil {
		return fmt.Errorf("failed to load teams: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.Name, &team.Flag, &team.ImageURL, &team.LeaderNames,
			&team.AssignedMentors, &team.CourseName, &team.Color); err != nil {
			return fmt.Errorf("failed to scan team: %w", err)
		}
		snapshot.Teams = append(snapshot.Teams, team)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to load teams: %w", err)
	}

	playerRows, err := r.db.Pool.Query(ctx, `SELECT id, name, team_name FROM players ORDER BY name`)
	if err != nil {
		return fmt.Errorf("failed to load players: %w", err)
	}
	defer playerRows.Close()

	players := make(map[string][]domain.Player)
	for playerRows.Next() {
		var player domain.Player
		var teamName string
		if err := playerRows.Scan(&player.ID, &player.Name, &teamName); err != nil {
			return fmt.Errorf("failed to scan player: %w", err)
		}
		players[teamName] = append(players[teamName], player)
	}
	if err := playerRows.Err(); err != nil {
		return fmt.Errorf("failed to load players: %w", err)
	}
	for i := range snapshot.Teams {
		snapshot.Teams[i].Players = players[snapshot.Teams[i].Name]
	}
	return nil
}

func (r *PostgresSnapshotRepository) loadActivities(ctx context.Context, snapshot *domain.Snapshot) error {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, type, COALESCE(max_points, 0), created_by
		FROM activities
		ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("failed to load activities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var activity domain.Activity
		if err := rows.Scan(&activity.ID, &activity.Name, &activity.Type, &activity.MaxPoints, &activity.CreatedBy); err != nil {
			return fmt.Errorf("failed to scan activity: %w", err)
		}
		snapshot.Activities = append(snapshot.Activities, activity)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to load activities: %w", err)
	}

	criterionRows, err := r.db.Pool.Query(ctx, `
		SELECT id, activity_id, name, max_points
		FROM criteria
		ORDER BY position
	`)
	if err != nil {
		return fmt.Errorf("failed to load criteria: %w", err)
	}
	defer criterionRows.Close()

	criteria := make(map[string][]domain.Criterion)
	for criterionRows.Next() {
		var criterion domain.Criterion
		var activityID string
		if err := criterionRows.Scan(&criterion.ID, &activityID, &criterion.Name, &criterion.MaxPoints); err != nil {
			return fmt.Errorf("failed to scan criterion: %w", err)
		}
		criteria[activityID] = append(criteria[activityID], criterion)
	}
	if err := criterionRows.Err(); err != nil {
		return fmt.Errorf("failed to load criteria: %w", err)
	}
	for i := range snapshot.Activities {
		snapshot.Activities[i].Criteria = criteria[snapshot.Activities[i].ID]
	}
	return nil
}

func (r *PostgresSnapshotRepository) loadScoreEntries(ctx context.Context, snapshot *domain.Snapshot) error {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, activity_id, judge_name, team_name, points, total_points, ts
		FROM score_entries
		ORDER BY ts
	`)
	if err != nil {
		return fmt.Errorf("failed to load score entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry domain.ScoreEntry
		var points []byte
		if err := rows.Scan(&entry.ID, &entry.ActivityID, &entry.JudgeName, &entry.TeamName,
			&points, &entry.TotalPoints, &entry.Timestamp); err != nil {
			return fmt.Errorf("failed to scan score entry: %w", err)
		}
		if err := json.Unmarshal(points, &entry.Points); err != nil {
			return fmt.Errorf("failed to decode score entry points: %w", err)
		}
		snapshot.ScoreEntries = append(snapshot.ScoreEntries, entry)
	}
	return rows.Err()
}

func (r *PostgresSnapshotRepository) loadDirectorAwards(ctx context.Context, snapshot *domain.Snapshot) error {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, activity_id, team_name, points, awarded_by, ts
		FROM director_awards
		ORDER BY ts
	`)
	if err != nil {
		return fmt.Errorf("failed to load director awards: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var award domain.DirectorAward
		if err := rows.Scan(&award.ID, &award.ActivityID, &award.TeamName, &award.Points,
			&award.AwardedBy, &award.Timestamp); err != nil {
			return fmt.Errorf("failed to scan director award: %w", err)
		}
		snapshot.DirectorAwards = append(snapshot.DirectorAwards, award)
	}
	return rows.Err()
}

func (r *PostgresSnapshotRepository) loadAdjustments(ctx context.Context, snapshot *domain.Snapshot) error {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, kind, team_name, points, reason, awarded_by, status, ts
		FROM adjustments
		ORDER BY ts
	`)
	if err != nil {
		return fmt.Errorf("failed to load adjustments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var adjustment domain.Adjustment
		if err := rows.Scan(&adjustment.ID, &adjustment.Kind, &adjustment.TeamName, &adjustment.Points,
			&adjustment.Reason, &adjustment.AwardedBy, &adjustment.Status, &adjustment.Timestamp); err != nil {
			return fmt.Errorf("failed to scan adjustment: %w", err)
		}
		if adjustment.Kind == domain.KindPenalty {
			snapshot.Penalties = append(snapshot.Penalties, adjustment)
		} else {
			snapshot.Bonuses = append(snapshot.Bonuses, adjustment)
		}
	}
	return rows.Err()
}

func (r *PostgresSnapshotRepository) loadVotingAwards(ctx context.Context, snapshot *domain.Snapshot) error {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, session_name, session_id, team_name, points, awarded_by, ts
		FROM voting_awards
		ORDER BY ts
	`)
	if err != nil {
		return fmt.Errorf("failed to load voting awards: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var award domain.VotingAward
		if err := rows.Scan(&award.ID, &award.SessionName, &award.SessionID, &award.TeamName,
			&award.Points, &award.AwardedBy, &award.Timestamp); err != nil {
			return fmt.Errorf("failed to scan voting award: %w", err)
		}
		snapshot.VotingAwards = append(snapshot.VotingAwards, award)
	}
	return rows.Err()
}

func (r *PostgresSnapshotRepository) loadVotingSettings(ctx context.Context, snapshot *domain.Snapshot) error {
	var settings domain.VotingSettings
	var sessionID *string
	var deadline *time.Time

	err := r.db.Pool.QueryRow(ctx, `
		SELECT session_id, is_open, mode, name, deadline, winner_points
		FROM voting_settings
		WHERE id = 1
	`).Scan(&sessionID, &settings.IsOpen, &settings.Mode, &settings.Name, &deadline, &settings.WinnerPoints)

	if err == pgx.ErrNoRows {
		snapshot.VotingSettings = domain.VotingSettings{Mode: domain.VotingPublic}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load voting settings: %w", err)
	}

	if sessionID != nil {
		settings.SessionID = *sessionID
	}
	settings.Deadline = deadline
	snapshot.VotingSettings = settings
	return nil
}

func (r *PostgresSnapshotRepository) loadStudents(ctx context.Context, snapshot *domain.Snapshot) error {
	rows, err := r.db.Pool.Query(ctx, `SELECT id, name FROM students ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to load students: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var student domain.Student
		if err := rows.Scan(&student.ID, &student.Name); err != nil {
			return fmt.Errorf("failed to scan student: %w", err)
		}
		snapshot.Students = append(snapshot.Students, student)
	}
	return rows.Err()
}

func (r *PostgresSnapshotRepository) loadPublicVotes(ctx context.Context, snapshot *domain.Snapshot) error {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, session_id, team_name, voter_identifier, ts
		FROM public_votes
		ORDER BY ts
	`)
	if err != nil {
		return fmt.Errorf("failed to load public votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var vote domain.PublicVote
		if err := rows.Scan(&vote.ID, &vote.SessionID, &vote.TeamName, &vote.VoterIdentifier, &vote.Timestamp); err != nil {
			return fmt.Errorf("failed to scan public vote: %w", err)
		}
		snapshot.PublicVotes = append(snapshot.PublicVotes, vote)
	}
	return rows.Err()
}

// Save overwrites every entity table with the snapshot's contents in a
// single transaction.
func (r *PostgresSnapshotRepository) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Children before parents to respect foreign keys.
	for _, table := range []string{
		"public_votes", "voting_awards", "adjustments", "score_entries",
		"director_awards", "criteria", "players", "students", "activities", "teams",
	} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, team := range snapshot.Teams {
		if _, err := tx.Exec(ctx, `
			INSERT INTO teams (name, flag, image_url, leader_names, assigned_mentors, course_name, color, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, team.Name, team.Flag, team.ImageURL, team.LeaderNames, team.AssignedMentors,
			team.CourseName, team.Color, i); err != nil {
			return fmt.Errorf("failed to insert team: %w", err)
		}
		for _, player := range team.Players {
			if _, err := tx.Exec(ctx, `
				INSERT INTO players (id, name, team_name) VALUES ($1, $2, $3)
			`, player.ID, player.Name, team.Name); err != nil {
				return fmt.Errorf("failed to insert player: %w", err)
			}
		}
	}

	for _, activity := range snapshot.Activities {
		if _, err := tx.Exec(ctx, `
			INSERT INTO activities (id, name, type, max_points, created_by)
			VALUES ($1, $2, $3, $4, $5)
		`, activity.ID, activity.Name, activity.Type, activity.MaxPoints, activity.CreatedBy); err != nil {
			return fmt.Errorf("failed to insert activity: %w", err)
		}
		for i, criterion := range activity.Criteria {
			if _, err := tx.Exec(ctx, `
				INSERT INTO criteria (id, activity_id, name, max_points, position)
				VALUES ($1, $2, $3, $4, $5)
			`, criterion.ID, activity.ID, criterion.Name, criterion.MaxPoints, i); err != nil {
				return fmt.Errorf("failed to insert criterion: %w", err)
			}
		}
	}

	for _, entry := range snapshot.ScoreEntries {
		points, err := json.Marshal(entry.Points)
		if err != nil {
			return fmt.Errorf("failed to encode score entry points: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO score_entries (id, activity_id, judge_name, team_name, points, total_points, ts)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, entry.ID, entry.ActivityID, entry.JudgeName, entry.TeamName, points, entry.TotalPoints, entry.Timestamp); err != nil {
			return fmt.Errorf("failed to insert score entry: %w", err)
		}
	}

	for _, award := range snapshot.DirectorAwards {
		if _, err := tx.Exec(ctx, `
			INSERT INTO director_awards (id, activity_id, team_name, points, awarded_by, ts)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, award.ID, award.ActivityID, award.TeamName, award.Points, award.AwardedBy, award.Timestamp); err != nil {
			return fmt.Errorf("failed to insert director award: %w", err)
		}
	}

	for _, adjustment := range append(append([]domain.Adjustment{}, snapshot.Bonuses...), snapshot.Penalties...) {
		if _, err := tx.Exec(ctx, `
			INSERT INTO adjustments (id, kind, team_name, points, reason, awarded_by, status, ts)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, adjustment.ID, adjustment.Kind, adjustment.TeamName, adjustment.Points, adjustment.Reason,
			adjustment.AwardedBy, adjustment.Status, adjustment.Timestamp); err != nil {
			return fmt.Errorf("failed to insert adjustment: %w", err)
		}
	}

	for _, award := range snapshot.VotingAwards {
		if _, err := tx.Exec(ctx, `
			INSERT INTO voting_awards (id, session_name, session_id, team_name, points, awarded_by, ts)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, award.ID, award.SessionName, award.SessionID, award.TeamName, award.Points,
			award.AwardedBy, award.Timestamp); err != nil {
			return fmt.Errorf("failed to insert voting award: %w", err)
		}
	}

	var sessionID *string
	if snapshot.VotingSettings.SessionID != "" {
		sessionID = &snapshot.VotingSettings.SessionID
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO voting_settings (id, session_id, is_open, mode, name, deadline, winner_points)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			session_id = EXCLUDED.session_id,
			is_open = EXCLUDED.is_open,
			mode = EXCLUDED.mode,
			name = EXCLUDED.name,
			deadline = EXCLUDED.deadline,
			winner_points = EXCLUDED.winner_points
	`, sessionID, snapshot.VotingSettings.IsOpen, snapshot.VotingSettings.Mode,
		snapshot.VotingSettings.Name, snapshot.VotingSettings.Deadline, snapshot.VotingSettings.WinnerPoints); err != nil {
		return fmt.Errorf("failed to upsert voting settings: %w", err)
	}

	for _, student := range snapshot.Students {
		if _, err := tx.Exec(ctx, `
			INSERT INTO students (id, name) VALUES ($1, $2)
		`, student.ID, student.Name); err != nil {
			return fmt.Errorf("failed to insert student: %w", err)
		}
	}

	for _, vote := range snapshot.PublicVotes {
		if _, err := tx.Exec(ctx, `
			INSERT INTO public_votes (id, session_id, team_name, voter_identifier, ts)
			VALUES ($1, $2, $3, $4, $5)
		`, vote.ID, vote.SessionID, vote.TeamName, vote.VoterIdentifier, vote.Timestamp); err != nil {
			return fmt.Errorf("failed to insert public vote: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}
