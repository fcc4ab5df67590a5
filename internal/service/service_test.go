package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wordle-league-tracker/internal/model"
	"wordle-league-tracker/internal/pkg/db"
	"wordle-league-tracker/internal/puzzle"
	"wordle-league-tracker/internal/repository"
)

// Thursday 2025-07-31 is puzzle 1503; its week runs 1500 (Mon) to 1506
// (Sun). All service tests pin the clock here.
var testNow = time.Date(2025, time.July, 31, 12, 0, 0, 0, time.UTC)

const testToday = 1503

type fixture struct {
	sqlDB  *sql.DB
	roster *repository.RosterRepository
	scores *repository.ScoreRepository
	league model.League
}

func newFixture(t *testing.T, policy repository.UpsertPolicy) *fixture {
	t.Helper()
	ctx := context.Background()

	sqlDB, err := db.Open(filepath.Join(t.TempDir(), "service_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(ctx, sqlDB))

	f := &fixture{
		sqlDB:  sqlDB,
		roster: repository.NewRosterRepository(sqlDB),
		scores: repository.NewScoreRepository(sqlDB, policy),
		league: model.League{ID: 1, Name: "Main League", ThreadRef: "t.main"},
	}
	require.NoError(t, f.roster.SyncLeague(ctx, f.league))
	return f
}

func (f *fixture) addPlayer(t *testing.T, name, contact string) *model.Player {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.roster.SyncPlayer(ctx, model.Player{Name: name, LeagueID: f.league.ID, Contact: contact}))
	player, err := f.roster.GetPlayerByName(ctx, f.league.ID, name)
	require.NoError(t, err)
	return player
}

func (f *fixture) addScore(t *testing.T, player *model.Player, puzzleNumber, result int) {
	t.Helper()
	_, _, err := f.scores.Upsert(context.Background(), &model.ScoreRecord{
		PlayerID:     player.ID,
		LeagueID:     f.league.ID,
		PuzzleNumber: puzzleNumber,
		Result:       result,
		CapturedAt:   testNow,
	})
	require.NoError(t, err)
}

func (f *fixture) ingest(tolerance int) *IngestService {
	s := NewIngestService(f.roster, f.scores, puzzle.DefaultEpoch, tolerance)
	s.now = func() time.Time { return testNow }
	return s
}

func (f *fixture) stats() *StatsService {
	s := NewStatsService(f.roster, f.scores, puzzle.DefaultEpoch)
	s.now = func() time.Time { return testNow }
	return s
}
