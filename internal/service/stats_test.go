package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordle-league-tracker/internal/model"
	"wordle-league-tracker/internal/repository"
)

func TestWeeklyBoardBestFive(t *testing.T) {
	f := newFixture(t, repository.UpsertSkip)
	evan := f.addPlayer(t, "Evan", "+1555000")
	stats := f.stats()

	// Seven days: results 2, X, 4, 3, 5, 1, 6. The best five are
	// 1+2+3+4+5 = 15; the 6 is thrown out and the X counted apart.
	results := []int{2, model.FailedResult, 4, 3, 5, 1, 6}
	for i, r := range results {
		f.addScore(t, evan, 1500+i, r)
	}

	board, err := stats.WeeklyBoard(context.Background(), f.league.ID)
	require.NoError(t, err)
	require.Len(t, board, 1)

	got := board[0]
	assert.Equal(t, 1500, got.StartPuzzle)
	assert.True(t, got.HasScore)
	assert.Equal(t, 15, got.WeeklyScore)
	assert.Equal(t, 5, got.UsedCount)
	assert.Equal(t, 1, got.ThrownOut)
	assert.Equal(t, 1, got.FailedCount)
	assert.True(t, got.Eligible)
}

func TestWeeklyBoardInsufficientData(t *testing.T) {
	f := newFixture(t, repository.UpsertSkip)
	evan := f.addPlayer(t, "Evan", "+1555000")
	stats := f.stats()

	for i, r := range []int{3, 4, 2} {
		f.addScore(t, evan, 1500+i, r)
	}

	board, err := stats.WeeklyBoard(context.Background(), f.league.ID)
	require.NoError(t, err)
	require.Len(t, board, 1)

	got := board[0]
	assert.False(t, got.HasScore, "three results make a partial total, not a weekly score")
	assert.Equal(t, 9, got.WeeklyScore, "the partial sum is still carried for display")
	assert.Equal(t, 3, got.UsedCount)
	assert.False(t, got.Eligible, "fewer than five used scores cannot win the week")
}

func TestWeeklyBoardNoValidScores(t *testing.T) {
	f := newFixture(t, repository.UpsertSkip)
	evan := f.addPlayer(t, "Evan", "+1555000")
	stats := f.stats()

	f.addScore(t, evan, 1500, model.FailedResult)
	f.addScore(t, evan, 1501, model.FailedResult)

	board, err := stats.WeeklyBoard(context.Background(), f.league.ID)
	require.NoError(t, err)
	require.Len(t, board, 1)

	got := board[0]
	assert.False(t, got.HasScore, "no score is not a zero score")
	assert.Equal(t, 0, got.UsedCount)
	assert.Equal(t, 2, got.FailedCount, "failures are reported even without a weekly score")
}

func TestWeeklyBoardIgnoresScoresOutsideWindow(t *testing.T) {
	f := newFixture(t, repository.UpsertSkip)
	evan := f.addPlayer(t, "Evan", "+1555000")
	stats := f.stats()

	f.addScore(t, evan, 1499, 1) // last week's Sunday
	f.addScore(t, evan, 1502, 4)
	f.addScore(t, evan, 1507, 1) // next Monday

	board, err := stats.WeeklyBoard(context.Background(), f.league.ID)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, 4, board[0].WeeklyScore)
	assert.Equal(t, 1, board[0].UsedCount)
}

func TestWeeklyBoardOrdering(t *testing.T) {
	f := newFixture(t, repository.UpsertSkip)
	stats := f.stats()

	full := f.addPlayer(t, "Full", "+1")
	better := f.addPlayer(t, "Better", "+2")
	partial := f.addPlayer(t, "Partial", "+3")
	failedOnly := f.addPlayer(t, "FailedOnly", "+4")
	f.addPlayer(t, "NoData", "+5")

	for i := 0; i < 5; i++ {
		f.addScore(t, full, 1500+i, 4)   // sum 20
		f.addScore(t, better, 1500+i, 3) // sum 15
	}
	f.addScore(t, partial, 1500, 1) // sum 1 but only one score
	f.addScore(t, failedOnly, 1500, model.FailedResult)

	board, err := stats.WeeklyBoard(context.Background(), f.league.ID)
	require.NoError(t, err)
	require.Len(t, board, 5)

	names := make([]string, len(board))
	for i, a := range board {
		names[i] = a.PlayerName
	}
	// Eligible players rank first regardless of a flashy partial sum.
	assert.Equal(t, []string{"Better", "Full", "Partial", "FailedOnly", "NoData"}, names)
}

func TestAllTimeBoard(t *testing.T) {
	f := newFixture(t, repository.UpsertSkip)
	evan := f.addPlayer(t, "Evan", "+1555000")
	stats := f.stats()

	f.addScore(t, evan, 1500, 3)
	f.addScore(t, evan, 1501, 3)
	f.addScore(t, evan, 1502, model.FailedResult)

	board, err := stats.AllTimeBoard(context.Background(), f.league.ID)
	require.NoError(t, err)
	require.Len(t, board, 1)

	got := board[0]
	assert.Equal(t, 3, got.GamesPlayed, "failed attempts count as games")
	assert.Equal(t, 1, got.FailedCount)
	require.True(t, got.HasAverage)
	// (3 + 3 + 7) / 3
	assert.InDelta(t, 13.0/3.0, got.Average, 1e-9)
	assert.Equal(t, [6]int{0, 0, 2, 0, 0, 0}, got.Distribution)
}

func TestDailyBoard(t *testing.T) {
	f := newFixture(t, repository.UpsertSkip)
	evan := f.addPlayer(t, "Evan", "+1")
	vox := f.addPlayer(t, "Vox", "+2")
	stats := f.stats()

	f.addScore(t, evan, testToday, 5)
	f.addScore(t, vox, testToday, 2)
	f.addScore(t, evan, testToday-1, 1) // yesterday, not on the board

	board, err := stats.DailyBoard(context.Background(), f.league.ID)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "Vox", board[0].PlayerName, "best result first")
	assert.Equal(t, 2, board[0].Result)
	assert.Equal(t, "Evan", board[1].PlayerName)
}

func TestLeaderboardEmptyLeague(t *testing.T) {
	f := newFixture(t, repository.UpsertSkip)
	f.addPlayer(t, "Evan", "+1555000")
	stats := f.stats()

	board, err := stats.Leaderboard(context.Background(), f.league)
	require.NoError(t, err)
	assert.True(t, board.Empty(), "a league with no records publishes nothing")
}
