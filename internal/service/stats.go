package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"wordle-league-tracker/internal/model"
	"wordle-league-tracker/internal/puzzle"
	"wordle-league-tracker/internal/repository"
)

// StatsService computes leaderboard data from stored records. Nothing
// here is persisted; every aggregate is derived fresh from the scores
// table.
type StatsService struct {
	roster *repository.RosterRepository
	scores *repository.ScoreRepository
	epoch  time.Time
	now    func() time.Time
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(
	roster *repository.RosterRepository,
	scores *repository.ScoreRepository,
	epoch time.Time,
) *StatsService {
	return &StatsService{
		roster: roster,
		scores: scores,
		epoch:  epoch,
		now:    time.Now,
	}
}

// weekTotals is the arithmetic core of the weekly board: best five of
// the valid results, failures counted separately.
type weekTotals struct {
	sum      int
	hasScore bool
	used     int
	thrown   int
	failed   int
}

func aggregateWeek(records []model.ScoreRecord) weekTotals {
	var valid []int
	var totals weekTotals
	for i := range records {
		if records[i].Failed() {
			totals.failed++
			continue
		}
		valid = append(valid, records[i].Result)
	}

	// Lower is better; only the best five count.
	sort.Ints(valid)
	used := valid
	if len(used) > model.BestOfWeek {
		used = used[:model.BestOfWeek]
	}

	for _, r := range used {
		totals.sum += r
	}
	// A weekly score only exists once five results back it; a partial
	// sum is kept for display but reported as "no score" so a player
	// with three lucky days never outranks a full week.
	totals.hasScore = len(used) == model.BestOfWeek
	totals.used = len(used)
	totals.thrown = len(valid) - len(used)
	return totals
}

// WeeklyBoard computes every roster player's aggregate for the week
// containing now. A player needs five used scores to post a weekly
// score and be ranked; fewer shows as an ineligible row with its
// partial total and counts, never as a reported score.
func (s *StatsService) WeeklyBoard(ctx context.Context, leagueID int64) ([]model.WeeklyAggregate, error) {
	start, end := puzzle.WeekWindow(s.epoch, s.now())

	players, err := s.roster.ListPlayers(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	aggregates := make([]model.WeeklyAggregate, 0, len(players))
	for _, player := range players {
		records, err := s.scores.QueryWindow(ctx, player.ID, leagueID, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to load week for %q: %w", player.Name, err)
		}

		totals := aggregateWeek(records)
		aggregates = append(aggregates, model.WeeklyAggregate{
			PlayerID:    player.ID,
			PlayerName:  player.Name,
			StartPuzzle: start,
			WeeklyScore: totals.sum,
			HasScore:    totals.hasScore,
			UsedCount:   totals.used,
			ThrownOut:   totals.thrown,
			FailedCount: totals.failed,
			Eligible:    totals.hasScore,
		})
	}

	sortWeekly(aggregates)
	return aggregates, nil
}

// sortWeekly orders the weekly board: eligible players by score
// ascending, then partial players by most data and best partial sum,
// then players with nothing but failures or no data at all.
func sortWeekly(aggregates []model.WeeklyAggregate) {
	sort.SliceStable(aggregates, func(i, j int) bool {
		a, b := aggregates[i], aggregates[j]
		if a.Eligible != b.Eligible {
			return a.Eligible
		}
		if a.Eligible {
			return a.WeeklyScore < b.WeeklyScore
		}
		if a.UsedCount != b.UsedCount {
			return a.UsedCount > b.UsedCount
		}
		if a.WeeklyScore != b.WeeklyScore {
			return a.WeeklyScore < b.WeeklyScore
		}
		return a.FailedCount > b.FailedCount
	})
}

// AllTimeBoard computes lifetime stats per roster player. Failed
// attempts count as 7 toward the average and are included in games
// played, matching how the league has always read the numbers.
func (s *StatsService) AllTimeBoard(ctx context.Context, leagueID int64) ([]model.AllTimeStats, error) {
	players, err := s.roster.ListPlayers(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	stats := make([]model.AllTimeStats, 0, len(players))
	for _, player := range players {
		records, err := s.scores.ListByPlayer(ctx, player.ID, leagueID)
		if err != nil {
			return nil, fmt.Errorf("failed to load history for %q: %w", player.Name, err)
		}

		entry := model.AllTimeStats{
			PlayerID:    player.ID,
			PlayerName:  player.Name,
			GamesPlayed: len(records),
		}

		sum := 0
		for i := range records {
			sum += records[i].Result
			if records[i].Failed() {
				entry.FailedCount++
			} else {
				entry.Distribution[records[i].Result-1]++
			}
		}
		if len(records) > 0 {
			entry.Average = float64(sum) / float64(len(records))
			entry.HasAverage = true
		}

		stats = append(stats, entry)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.HasAverage != b.HasAverage {
			return a.HasAverage
		}
		if a.Average != b.Average {
			return a.Average < b.Average
		}
		return a.GamesPlayed > b.GamesPlayed
	})

	return stats, nil
}

// DailyBoard returns today's results for a league, best first.
func (s *StatsService) DailyBoard(ctx context.Context, leagueID int64) ([]model.DailyEntry, error) {
	today := puzzle.NumberForDate(s.epoch, s.now())

	records, err := s.scores.ListForPuzzle(ctx, leagueID, today)
	if err != nil {
		return nil, err
	}

	names, err := s.playerNames(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	entries := make([]model.DailyEntry, 0, len(records))
	for i := range records {
		entries = append(entries, model.DailyEntry{
			PlayerName:   names[records[i].PlayerID],
			PuzzleNumber: records[i].PuzzleNumber,
			Result:       records[i].Result,
			EmojiGrid:    records[i].EmojiGrid,
		})
	}
	return entries, nil
}

func (s *StatsService) playerNames(ctx context.Context, leagueID int64) (map[int64]string, error) {
	players, err := s.roster.ListPlayers(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	return names, nil
}

// Leaderboard assembles the complete per-league structure handed to
// the renderer.
func (s *StatsService) Leaderboard(ctx context.Context, league model.League) (*model.Leaderboard, error) {
	daily, err := s.DailyBoard(ctx, league.ID)
	if err != nil {
		return nil, err
	}
	weekly, err := s.WeeklyBoard(ctx, league.ID)
	if err != nil {
		return nil, err
	}
	allTime, err := s.AllTimeBoard(ctx, league.ID)
	if err != nil {
		return nil, err
	}

	// A roster entry with no history contributes nothing worth
	// publishing; drop empty aggregate rows so a league with no data
	// renders as empty, not as a wall of dashes.
	weekly = trimWeekly(weekly)
	allTime = trimAllTime(allTime)

	return &model.Leaderboard{
		LeagueID:     league.ID,
		LeagueName:   league.Name,
		PuzzleNumber: puzzle.NumberForDate(s.epoch, s.now()),
		Daily:        daily,
		Weekly:       weekly,
		AllTime:      allTime,
		GeneratedAt:  s.now(),
	}, nil
}

func trimWeekly(in []model.WeeklyAggregate) []model.WeeklyAggregate {
	out := in[:0]
	for _, a := range in {
		if a.UsedCount > 0 || a.FailedCount > 0 {
			out = append(out, a)
		}
	}
	return out
}

func trimAllTime(in []model.AllTimeStats) []model.AllTimeStats {
	out := in[:0]
	for _, a := range in {
		if a.GamesPlayed > 0 {
			out = append(out, a)
		}
	}
	return out
}
