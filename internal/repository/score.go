package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wordle-league-tracker/internal/model"
	"wordle-league-tracker/internal/pkg/db"
)

// UpsertPolicy controls what Upsert does when a record already exists
// for (player, league, puzzle number). Exactly one policy is active per
// deployment; the repair-script era of deciding per call site is over.
type UpsertPolicy string

const (
	// UpsertSkip makes re-extraction idempotent: an existing record is
	// left untouched and no error is returned.
	UpsertSkip UpsertPolicy = "skip"
	// UpsertReject surfaces ErrDuplicateScore instead.
	UpsertReject UpsertPolicy = "reject"
)

// ScoreRepository handles ScoreRecord persistence. Every mutation runs
// in its own transaction, so an interrupted batch never leaves a
// half-written record.
type ScoreRepository struct {
	db     *sql.DB
	policy UpsertPolicy
}

// NewScoreRepository creates a new ScoreRepository instance.
func NewScoreRepository(sqlDB *sql.DB, policy UpsertPolicy) *ScoreRepository {
	if policy == "" {
		policy = UpsertSkip
	}
	return &ScoreRepository{db: sqlDB, policy: policy}
}

// Upsert stores a record unless one already exists for its
// (player, league, puzzle number) key. Under UpsertSkip an existing
// record wins and (existing, false, nil) is returned; under
// UpsertReject the call fails with ErrDuplicateScore. A second row for
// the same key is never created either way.
func (r *ScoreRepository) Upsert(ctx context.Context, record *model.ScoreRecord) (*model.ScoreRecord, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := scanScore(tx.QueryRowContext(ctx, `
		SELECT id, player_id, league_id, puzzle_number, result, emoji_grid, captured_at
		FROM scores
		WHERE player_id = ? AND league_id = ? AND puzzle_number = ?
	`, record.PlayerID, record.LeagueID, record.PuzzleNumber))
	if err == nil {
		if r.policy == UpsertReject {
			return nil, false, ErrDuplicateScore
		}
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to check for existing score: %w", err)
	}

	const insert = `
		INSERT INTO scores (player_id, league_id, puzzle_number, result, emoji_grid, captured_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	res, err := tx.ExecContext(ctx, insert,
		record.PlayerID,
		record.LeagueID,
		record.PuzzleNumber,
		record.Result,
		record.EmojiGrid,
		db.FormatTimestamp(record.CapturedAt),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert score: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read inserted score id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit score: %w", err)
	}

	saved := *record
	saved.ID = id
	return &saved, true, nil
}

// QueryWindow returns all of a player's records whose puzzle number
// falls in the inclusive [startPuzzle, endPuzzle] range, ordered by
// puzzle number ascending.
func (r *ScoreRepository) QueryWindow(ctx context.Context, playerID, leagueID int64, startPuzzle, endPuzzle int) ([]model.ScoreRecord, error) {
	const query = `
		SELECT id, player_id, league_id, puzzle_number, result, emoji_grid, captured_at
		FROM scores
		WHERE player_id = ? AND league_id = ? AND puzzle_number BETWEEN ? AND ?
		ORDER BY puzzle_number ASC
	`

	return r.queryScores(ctx, query, playerID, leagueID, startPuzzle, endPuzzle)
}

// ListByPlayer returns every record a player has, oldest puzzle first.
func (r *ScoreRepository) ListByPlayer(ctx context.Context, playerID, leagueID int64) ([]model.ScoreRecord, error) {
	const query = `
		SELECT id, player_id, league_id, puzzle_number, result, emoji_grid, captured_at
		FROM scores
		WHERE player_id = ? AND league_id = ?
		ORDER BY puzzle_number ASC
	`

	return r.queryScores(ctx, query, playerID, leagueID)
}

// ListForPuzzle returns every record in a league for one puzzle.
func (r *ScoreRepository) ListForPuzzle(ctx context.Context, leagueID int64, puzzleNumber int) ([]model.ScoreRecord, error) {
	const query = `
		SELECT id, player_id, league_id, puzzle_number, result, emoji_grid, captured_at
		FROM scores
		WHERE league_id = ? AND puzzle_number = ?
		ORDER BY result ASC, player_id ASC
	`

	return r.queryScores(ctx, query, leagueID, puzzleNumber)
}

// Override replaces the result (and optionally the grid) of an
// existing record in place. It is the administrative correction path
// for misattributed or misparsed scores; the row count never changes.
func (r *ScoreRepository) Override(ctx context.Context, playerID, leagueID int64, puzzleNumber, newResult int, newGrid string) error {
	if newResult < model.MinResult || newResult > model.FailedResult {
		return fmt.Errorf("invalid override result %d", newResult)
	}

	const query = `
		UPDATE scores
		SET result = ?, emoji_grid = CASE WHEN ? != '' THEN ? ELSE emoji_grid END
		WHERE player_id = ? AND league_id = ? AND puzzle_number = ?
	`

	res, err := r.db.ExecContext(ctx, query, newResult, newGrid, newGrid, playerID, leagueID, puzzleNumber)
	if err != nil {
		return fmt.Errorf("failed to override score: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read override result: %w", err)
	}
	if n == 0 {
		return ErrScoreNotFound
	}

	return nil
}

// Delete removes a record by id. Used for manual cleanup, e.g. a
// message attributed to the wrong player after a contact collision.
func (r *ScoreRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM scores WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete score: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if n == 0 {
		return ErrScoreNotFound
	}

	return nil
}

// GetByKey retrieves a record by its natural key.
func (r *ScoreRepository) GetByKey(ctx context.Context, playerID, leagueID int64, puzzleNumber int) (*model.ScoreRecord, error) {
	const query = `
		SELECT id, player_id, league_id, puzzle_number, result, emoji_grid, captured_at
		FROM scores
		WHERE player_id = ? AND league_id = ? AND puzzle_number = ?
	`

	record, err := scanScore(r.db.QueryRowContext(ctx, query, playerID, leagueID, puzzleNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScoreNotFound
		}
		return nil, fmt.Errorf("failed to get score: %w", err)
	}
	return record, nil
}

func (r *ScoreRepository) queryScores(ctx context.Context, query string, args ...any) ([]model.ScoreRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var records []model.ScoreRecord
	for rows.Next() {
		var (
			record     model.ScoreRecord
			capturedAt string
		)
		err := rows.Scan(
			&record.ID,
			&record.PlayerID,
			&record.LeagueID,
			&record.PuzzleNumber,
			&record.Result,
			&record.EmojiGrid,
			&capturedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		if record.CapturedAt, err = db.ParseTimestamp(capturedAt); err != nil {
			return nil, fmt.Errorf("failed to parse captured_at: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scores: %w", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScore(row rowScanner) (*model.ScoreRecord, error) {
	var (
		record     model.ScoreRecord
		capturedAt string
	)
	err := row.Scan(
		&record.ID,
		&record.PlayerID,
		&record.LeagueID,
		&record.PuzzleNumber,
		&record.Result,
		&record.EmojiGrid,
		&capturedAt,
	)
	if err != nil {
		return nil, err
	}
	if record.CapturedAt, err = db.ParseTimestamp(capturedAt); err != nil {
		return nil, fmt.Errorf("failed to parse captured_at: %w", err)
	}
	return &record, nil
}
