// Tests run against a real temp-file SQLite database; the store is
// embedded, so there is nothing to fake.
package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordle-league-tracker/internal/model"
	"wordle-league-tracker/internal/pkg/db"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	sqlDB, err := db.Open(filepath.Join(t.TempDir(), "tracker_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(context.Background(), sqlDB))
	return sqlDB
}

func seedRoster(t *testing.T, sqlDB *sql.DB) (*model.League, *model.Player) {
	t.Helper()
	ctx := context.Background()
	roster := NewRosterRepository(sqlDB)

	league := model.League{ID: 1, Name: "Main League", ThreadRef: "t.main"}
	require.NoError(t, roster.SyncLeague(ctx, league))
	require.NoError(t, roster.SyncPlayer(ctx, model.Player{Name: "Evan", LeagueID: 1, Contact: "+15550001111"}))

	player, err := roster.GetPlayerByName(ctx, 1, "Evan")
	require.NoError(t, err)
	return &league, player
}

func record(playerID, leagueID int64, puzzle, result int) *model.ScoreRecord {
	return &model.ScoreRecord{
		PlayerID:     playerID,
		LeagueID:     leagueID,
		PuzzleNumber: puzzle,
		Result:       result,
		EmojiGrid:    "🟩🟩🟩🟩🟩",
		CapturedAt:   time.Date(2025, 7, 31, 14, 30, 0, 0, time.UTC),
	}
}

func TestRosterSyncIsIdempotent(t *testing.T) {
	sqlDB := setupTestDB(t)
	ctx := context.Background()
	roster := NewRosterRepository(sqlDB)

	league := model.League{ID: 1, Name: "Main League", ThreadRef: "t.main"}
	require.NoError(t, roster.SyncLeague(ctx, league))
	require.NoError(t, roster.SyncLeague(ctx, league))

	require.NoError(t, roster.SyncPlayer(ctx, model.Player{Name: "Evan", LeagueID: 1, Contact: "+15550001111"}))
	// Contact changed; same (name, league) row must be updated, not duplicated.
	require.NoError(t, roster.SyncPlayer(ctx, model.Player{Name: "Evan", LeagueID: 1, Contact: "+15550002222"}))

	players, err := roster.ListPlayers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "+15550002222", players[0].Contact)
}

func TestPlayerContactScopedPerLeague(t *testing.T) {
	sqlDB := setupTestDB(t)
	ctx := context.Background()
	roster := NewRosterRepository(sqlDB)

	require.NoError(t, roster.SyncLeague(ctx, model.League{ID: 1, Name: "Main"}))
	require.NoError(t, roster.SyncLeague(ctx, model.League{ID: 3, Name: "PAL"}))
	require.NoError(t, roster.SyncPlayer(ctx, model.Player{Name: "Evan", LeagueID: 1, Contact: "+15550001111"}))
	require.NoError(t, roster.SyncPlayer(ctx, model.Player{Name: "Pants", LeagueID: 3, Contact: "+15550001111"}))

	p1, err := roster.GetPlayerByContact(ctx, 1, "+15550001111")
	require.NoError(t, err)
	assert.Equal(t, "Evan", p1.Name)

	p3, err := roster.GetPlayerByContact(ctx, 3, "+15550001111")
	require.NoError(t, err)
	assert.Equal(t, "Pants", p3.Name)

	_, err = roster.GetPlayerByContact(ctx, 1, "+15559999999")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestUpsertRoundTrip(t *testing.T) {
	sqlDB := setupTestDB(t)
	ctx := context.Background()
	_, player := seedRoster(t, sqlDB)
	scores := NewScoreRepository(sqlDB, UpsertSkip)

	written := record(player.ID, player.LeagueID, 1503, 4)
	saved, created, err := scores.Upsert(ctx, written)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, saved.ID)

	got, err := scores.QueryWindow(ctx, player.ID, player.LeagueID, 1500, 1506)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, saved.ID, got[0].ID)
	assert.Equal(t, written.PuzzleNumber, got[0].PuzzleNumber)
	assert.Equal(t, written.Result, got[0].Result)
	assert.Equal(t, written.EmojiGrid, got[0].EmojiGrid)
	assert.True(t, written.CapturedAt.Equal(got[0].CapturedAt))
}

func TestUpsertSkipPolicyIsIdempotent(t *testing.T) {
	sqlDB := setupTestDB(t)
	ctx := context.Background()
	_, player := seedRoster(t, sqlDB)
	scores := NewScoreRepository(sqlDB, UpsertSkip)

	first, created, err := scores.Upsert(ctx, record(player.ID, player.LeagueID, 1503, 4))
	require.NoError(t, err)
	require.True(t, created)

	// Same key again, different result: existing row wins.
	second, created, err := scores.Upsert(ctx, record(player.ID, player.LeagueID, 1503, 6))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 4, second.Result)

	got, err := scores.QueryWindow(ctx, player.ID, player.LeagueID, 1503, 1503)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestUpsertRejectPolicy(t *testing.T) {
	sqlDB := setupTestDB(t)
	ctx := context.Background()
	_, player := seedRoster(t, sqlDB)
	scores := NewScoreRepository(sqlDB, UpsertReject)

	_, _, err := scores.Upsert(ctx, record(player.ID, player.LeagueID, 1503, 4))
	require.NoError(t, err)

	_, _, err = scores.Upsert(ctx, record(player.ID, player.LeagueID, 1503, 4))
	assert.ErrorIs(t, err, ErrDuplicateScore)

	got, err := scores.QueryWindow(ctx, player.ID, player.LeagueID, 1503, 1503)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestQueryWindowBoundsAndOrder(t *testing.T) {
	sqlDB := setupTestDB(t)
	ctx := context.Background()
	_, player := seedRoster(t, sqlDB)
	scores := NewScoreRepository(sqlDB, UpsertSkip)

	for _, puzzle := range []int{1506, 1500, 1503, 1499, 1507} {
		_, _, err := scores.Upsert(ctx, record(player.ID, player.LeagueID, puzzle, 3))
		require.NoError(t, err)
	}

	got, err := scores.QueryWindow(ctx, player.ID, player.LeagueID, 1500, 1506)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{1500, 1503, 1506}, []int{got[0].PuzzleNumber, got[1].PuzzleNumber, got[2].PuzzleNumber})
}

func TestOverride(t *testing.T) {
	sqlDB := setupTestDB(t)
	ctx := context.Background()
	_, player := seedRoster(t, sqlDB)
	scores := NewScoreRepository(sqlDB, UpsertSkip)

	saved, _, err := scores.Upsert(ctx, record(player.ID, player.LeagueID, 1503, 4))
	require.NoError(t, err)

	newGrid := "⬜⬜⬜⬜⬜\n🟩🟩🟩🟩🟩"
	require.NoError(t, scores.Override(ctx, player.ID, player.LeagueID, 1503, 2, newGrid))

	got, err := scores.GetByKey(ctx, player.ID, player.LeagueID, 1503)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID, "override must edit in place")
	assert.Equal(t, 2, got.Result)
	assert.Equal(t, newGrid, got.EmojiGrid)

	// Empty grid argument keeps the stored grid.
	require.NoError(t, scores.Override(ctx, player.ID, player.LeagueID, 1503, 5, ""))
	got, err = scores.GetByKey(ctx, player.ID, player.LeagueID, 1503)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Result)
	assert.Equal(t, newGrid, got.EmojiGrid)

	err = scores.Override(ctx, player.ID, player.LeagueID, 9999, 3, "")
	assert.ErrorIs(t, err, ErrScoreNotFound)
}

func TestDelete(t *testing.T) {
	sqlDB := setupTestDB(t)
	ctx := context.Background()
	_, player := seedRoster(t, sqlDB)
	scores := NewScoreRepository(sqlDB, UpsertSkip)

	saved, _, err := scores.Upsert(ctx, record(player.ID, player.LeagueID, 1503, 4))
	require.NoError(t, err)

	require.NoError(t, scores.Delete(ctx, saved.ID))
	_, err = scores.GetByKey(ctx, player.ID, player.LeagueID, 1503)
	assert.ErrorIs(t, err, ErrScoreNotFound)

	assert.ErrorIs(t, scores.Delete(ctx, saved.ID), ErrScoreNotFound)
}
