package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}
	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`DROP TABLE IF EXISTS public_votes CASCADE`,
		`DROP TABLE IF EXISTS voting_awards CASCADE`,
		`DROP TABLE IF EXISTS voting_settings CASCADE`,
		`DROP TABLE IF EXISTS adjustments CASCADE`,
		`DROP TABLE IF EXISTS score_entries CASCADE`,
		`DROP TABLE IF EXISTS director_awards CASCADE`,
		`DROP TABLE IF EXISTS criteria CASCADE`,
		`DROP TABLE IF EXISTS players CASCADE`,
		`DROP TABLE IF EXISTS students CASCADE`,
		`DROP TABLE IF EXISTS activities CASCADE`,
		`DROP TABLE IF EXISTS teams CASCADE`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		fmt.Printf("  Dropped: %s\n", query)
	}
	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS teams (
			name VARCHAR(255) PRIMARY KEY,
			flag VARCHAR(16) NOT NULL DEFAULT '',
			image_url TEXT,
			leader_names TEXT[] NOT NULL DEFAULT '{}',
			assigned_mentors TEXT[] NOT NULL DEFAULT '{}',
			course_name VARCHAR(255) NOT NULL DEFAULT '',
			color VARCHAR(32) NOT NULL DEFAULT '',
			position INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS players (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			team_name VARCHAR(255) NOT NULL REFERENCES teams(name) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS activities (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			type VARCHAR(16) NOT NULL,
			max_points INTEGER,
			created_by VARCHAR(255) NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS criteria (
			id VARCHAR(64) NOT NULL,
			activity_id VARCHAR(64) NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			max_points INTEGER NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (activity_id, id)
		)`,

		// Score records reference teams by name without a foreign key;
		// a deleted team leaves dangling rows the aggregator ignores.
		`CREATE TABLE IF NOT EXISTS score_entries (
			id VARCHAR(64) PRIMARY KEY,
			activity_id VARCHAR(64) NOT NULL,
			judge_name VARCHAR(255) NOT NULL,
			team_name VARCHAR(255) NOT NULL,
			points JSONB NOT NULL DEFAULT '{}',
			total_points INTEGER NOT NULL DEFAULT 0,
			ts TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS director_awards (
			id VARCHAR(64) PRIMARY KEY,
			activity_id VARCHAR(64) NOT NULL,
			team_name VARCHAR(255) NOT NULL,
			points INTEGER NOT NULL,
			awarded_by VARCHAR(255) NOT NULL DEFAULT '',
			ts TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS adjustments (
			id VARCHAR(64) PRIMARY KEY,
			kind VARCHAR(16) NOT NULL,
			team_name VARCHAR(255) NOT NULL,
			points INTEGER NOT NULL,
			reason TEXT NOT NULL,
			awarded_by VARCHAR(255) NOT NULL DEFAULT '',
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			ts TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS voting_awards (
			id VARCHAR(64) PRIMARY KEY,
			session_name VARCHAR(255) NOT NULL,
			session_id VARCHAR(64) NOT NULL,
			team_name VARCHAR(255) NOT NULL,
			points INTEGER NOT NULL,
			awarded_by VARCHAR(255) NOT NULL DEFAULT '',
			ts TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// Singleton row; the engine treats voting settings as one record.
		`CREATE TABLE IF NOT EXISTS voting_settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			session_id VARCHAR(64),
			is_open BOOLEAN NOT NULL DEFAULT false,
			mode VARCHAR(16) NOT NULL DEFAULT 'public',
			name VARCHAR(255) NOT NULL DEFAULT '',
			deadline TIMESTAMPTZ,
			winner_points INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS students (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS public_votes (
			id VARCHAR(64) PRIMARY KEY,
			session_id VARCHAR(64) NOT NULL,
			team_name VARCHAR(255) NOT NULL,
			voter_identifier VARCHAR(255) NOT NULL,
			ts TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_score_entries_activity ON score_entries(activity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_score_entries_team ON score_entries(team_name)`,
		`CREATE INDEX IF NOT EXISTS idx_adjustments_team ON adjustments(team_name)`,
		`CREATE INDEX IF NOT EXISTS idx_public_votes_session ON public_votes(session_id)`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w\nQuery: %s", err, query)
		}
	}
	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`INSERT INTO teams (name, flag, leader_names, assigned_mentors, course_name, color, position) VALUES
			('Japan', '🇯🇵', '{"Aiko"}', '{"Mr. Khan"}', 'Robotics', '#bc002d', 0),
			('Malaysia', '🇲🇾', '{"Farah"}', '{"Ms. Lee"}', 'Web Development', '#010066', 1),
			('Spain', '🇪🇸', '{"Diego"}', '{"Mr. Ortiz"}', 'Game Design', '#aa151b', 2)
		ON CONFLICT (name) DO NOTHING`,

		`INSERT INTO activities (id, name, type, max_points, created_by) VALUES
			('main-performance', 'Main Performance', 'judged', NULL, 'director'),
			('booth-award', 'Best Booth Decoration', 'direct', 50, 'director')
		ON CONFLICT (id) DO NOTHING`,

		`INSERT INTO criteria (id, activity_id, name, max_points, position) VALUES
			('creativity', 'main-performance', 'Creativity', 50, 0),
			('synchronization', 'main-performance', 'Synchronization', 50, 1)
		ON CONFLICT (activity_id, id) DO NOTHING`,

		`INSERT INTO voting_settings (id, is_open, mode, name, winner_points)
			VALUES (1, false, 'public', '', 0)
		ON CONFLICT (id) DO NOTHING`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to seed: %w", err)
		}
	}
	return nil
}
