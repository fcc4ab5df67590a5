// Package db provides SQLite database connection management.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer at a time; keep a single connection so
	// writes never contend with each other in-process.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	log.Info().Str("path", path).Msg("SQLite database opened")
	return sqlDB, nil
}

// Migrate creates the schema if it does not exist. There is exactly one
// scores table; (player_id, league_id, puzzle_number) is unique so a
// re-extraction of the same thread can never create a second row.
func Migrate(ctx context.Context, sqlDB *sql.DB) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS leagues (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			thread_ref TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS players (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			league_id INTEGER NOT NULL REFERENCES leagues(id),
			contact TEXT NOT NULL DEFAULT '',
			UNIQUE (name, league_id)
		);

		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id INTEGER NOT NULL REFERENCES players(id),
			league_id INTEGER NOT NULL REFERENCES leagues(id),
			puzzle_number INTEGER NOT NULL,
			result INTEGER NOT NULL,
			emoji_grid TEXT NOT NULL DEFAULT '',
			captured_at TEXT NOT NULL,
			UNIQUE (player_id, league_id, puzzle_number)
		);

		CREATE INDEX IF NOT EXISTS idx_scores_window
			ON scores(league_id, player_id, puzzle_number);
	`

	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log.Info().Msg("Database schema ready")
	return nil
}

// FormatTimestamp converts a time.Time to the SQLite-friendly UTC
// ISO8601 string used in the captured_at column. The Z suffix makes the
// driver parse it back as UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// ParseTimestamp is the inverse of FormatTimestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse("2006-01-02T15:04:05Z", s)
}
