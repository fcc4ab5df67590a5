// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wordle-league-tracker/internal/model"
)

// Common errors for repository operations.
var (
	ErrLeagueNotFound = errors.New("league not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrScoreNotFound  = errors.New("score not found")
	ErrDuplicateScore = errors.New("score already recorded for this puzzle")
)

// RosterRepository handles league and player persistence. Rosters are
// administrative configuration: they are synced in from the config
// file at startup and otherwise read-only.
type RosterRepository struct {
	db *sql.DB
}

// NewRosterRepository creates a new RosterRepository instance.
func NewRosterRepository(db *sql.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// SyncLeague writes a league row, updating name/description/thread on
// change. League ids come from configuration and are stable.
func (r *RosterRepository) SyncLeague(ctx context.Context, league model.League) error {
	const query = `
		INSERT INTO leagues (id, name, description, thread_ref)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			thread_ref = excluded.thread_ref
	`

	if _, err := r.db.ExecContext(ctx, query, league.ID, league.Name, league.Description, league.ThreadRef); err != nil {
		return fmt.Errorf("failed to sync league %d: %w", league.ID, err)
	}
	return nil
}

// SyncPlayer writes a player row keyed by (name, league), updating the
// contact identifier on change.
func (r *RosterRepository) SyncPlayer(ctx context.Context, player model.Player) error {
	const query = `
		INSERT INTO players (name, league_id, contact)
		VALUES (?, ?, ?)
		ON CONFLICT (name, league_id) DO UPDATE SET
			contact = excluded.contact
	`

	if _, err := r.db.ExecContext(ctx, query, player.Name, player.LeagueID, player.Contact); err != nil {
		return fmt.Errorf("failed to sync player %q in league %d: %w", player.Name, player.LeagueID, err)
	}
	return nil
}

// GetLeague retrieves a league by id.
func (r *RosterRepository) GetLeague(ctx context.Context, id int64) (*model.League, error) {
	const query = `SELECT id, name, description, thread_ref FROM leagues WHERE id = ?`

	var league model.League
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&league.ID,
		&league.Name,
		&league.Description,
		&league.ThreadRef,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league: %w", err)
	}

	return &league, nil
}

// ListLeagues returns every configured league ordered by id.
func (r *RosterRepository) ListLeagues(ctx context.Context) ([]model.League, error) {
	const query = `SELECT id, name, description, thread_ref FROM leagues ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	defer rows.Close()

	var leagues []model.League
	for rows.Next() {
		var league model.League
		if err := rows.Scan(&league.ID, &league.Name, &league.Description, &league.ThreadRef); err != nil {
			return nil, fmt.Errorf("failed to scan league: %w", err)
		}
		leagues = append(leagues, league)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leagues: %w", err)
	}

	return leagues, nil
}

// GetPlayerByContact resolves a message's contact identifier to the
// player it belongs to within one league. Contact identifiers are only
// unique per league; the same number may map to different names in
// different leagues.
func (r *RosterRepository) GetPlayerByContact(ctx context.Context, leagueID int64, contact string) (*model.Player, error) {
	const query = `
		SELECT id, name, league_id, contact
		FROM players
		WHERE league_id = ? AND contact = ?
	`

	var player model.Player
	err := r.db.QueryRowContext(ctx, query, leagueID, contact).Scan(
		&player.ID,
		&player.Name,
		&player.LeagueID,
		&player.Contact,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player by contact: %w", err)
	}

	return &player, nil
}

// GetPlayerByName retrieves a player by display name within a league.
func (r *RosterRepository) GetPlayerByName(ctx context.Context, leagueID int64, name string) (*model.Player, error) {
	const query = `
		SELECT id, name, league_id, contact
		FROM players
		WHERE league_id = ? AND name = ?
	`

	var player model.Player
	err := r.db.QueryRowContext(ctx, query, leagueID, name).Scan(
		&player.ID,
		&player.Name,
		&player.LeagueID,
		&player.Contact,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player by name: %w", err)
	}

	return &player, nil
}

// ListPlayers returns every player registered to a league, ordered by
// name. Players with no scores yet are still listed; the leaderboard
// shows the full roster.
func (r *RosterRepository) ListPlayers(ctx context.Context, leagueID int64) ([]model.Player, error) {
	const query = `
		SELECT id, name, league_id, contact
		FROM players
		WHERE league_id = ?
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []model.Player
	for rows.Next() {
		var player model.Player
		if err := rows.Scan(&player.ID, &player.Name, &player.LeagueID, &player.Contact); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}

	return players, nil
}
