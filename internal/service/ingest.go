// Package service provides the extraction and aggregation business
// logic.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"wordle-league-tracker/internal/fetch"
	"wordle-league-tracker/internal/model"
	"wordle-league-tracker/internal/parse"
	"wordle-league-tracker/internal/puzzle"
	"wordle-league-tracker/internal/repository"
)

// IngestSummary counts what happened to one batch of messages. Skips
// are normal (most messages are chat); failures cover only records
// that could not be persisted.
type IngestSummary struct {
	Saved       int
	Duplicates  int
	Skipped     int
	Unknown     int
	Implausible int
	Failed      int
}

// IngestService turns raw messages into persisted ScoreRecords.
type IngestService struct {
	roster    *repository.RosterRepository
	scores    *repository.ScoreRepository
	epoch     time.Time
	tolerance int
	now       func() time.Time
}

// NewIngestService creates a new IngestService instance.
func NewIngestService(
	roster *repository.RosterRepository,
	scores *repository.ScoreRepository,
	epoch time.Time,
	tolerance int,
) *IngestService {
	return &IngestService{
		roster:    roster,
		scores:    scores,
		epoch:     epoch,
		tolerance: tolerance,
		now:       time.Now,
	}
}

// ProcessBatch runs every message through the extraction pipeline. A
// message that fails to persist does not stop the rest of the batch;
// each record commits in its own transaction.
func (s *IngestService) ProcessBatch(ctx context.Context, messages []fetch.Message) IngestSummary {
	var summary IngestSummary
	for _, msg := range messages {
		switch record, created, err := s.processMessage(ctx, msg); {
		case errors.Is(err, errNoScore):
			summary.Skipped++
		case errors.Is(err, errUnknownContact):
			summary.Unknown++
		case errors.Is(err, errImplausibleNumber):
			summary.Implausible++
		case errors.Is(err, repository.ErrDuplicateScore):
			summary.Duplicates++
			log.Warn().
				Str("contact", msg.Contact).
				Int64("league", msg.LeagueID).
				Msg("Duplicate score rejected")
		case err != nil:
			summary.Failed++
			log.Error().Err(err).
				Str("contact", msg.Contact).
				Int64("league", msg.LeagueID).
				Msg("Failed to persist score")
		case !created:
			summary.Duplicates++
		default:
			summary.Saved++
			log.Info().
				Int64("player", record.PlayerID).
				Int64("league", record.LeagueID).
				Int("puzzle", record.PuzzleNumber).
				Int("result", record.Result).
				Msg("Score saved")
		}
	}
	return summary
}

// Pipeline-internal outcomes. Only persistence problems escape
// processMessage as real errors.
var (
	errNoScore           = errors.New("no score in message")
	errUnknownContact    = errors.New("contact not on league roster")
	errImplausibleNumber = errors.New("puzzle number implausible for today")
)

func (s *IngestService) processMessage(ctx context.Context, msg fetch.Message) (*model.ScoreRecord, bool, error) {
	text := parse.Normalize(msg.RawHTML)

	puzzleNumber, result, ok := parse.MatchScore(text)
	if !ok {
		return nil, false, errNoScore
	}

	today := puzzle.NumberForDate(s.epoch, s.now())
	if !puzzle.Plausible(puzzleNumber, today, s.tolerance) {
		// Usually a quoted or re-forwarded old share; storing it would
		// attribute a stale result to the wrong day.
		log.Warn().
			Int("puzzle", puzzleNumber).
			Int("today", today).
			Str("contact", msg.Contact).
			Int64("league", msg.LeagueID).
			Msg("Implausible puzzle number, record rejected for manual review")
		return nil, false, errImplausibleNumber
	}

	player, err := s.roster.GetPlayerByContact(ctx, msg.LeagueID, msg.Contact)
	if err != nil {
		if errors.Is(err, repository.ErrPlayerNotFound) {
			log.Warn().
				Str("contact", msg.Contact).
				Int64("league", msg.LeagueID).
				Msg("Score from contact not on roster")
			return nil, false, errUnknownContact
		}
		return nil, false, err
	}

	grid, hasGrid := parse.ExtractGrid(msg.RawHTML, text)
	if hasGrid && !parse.GridMatchesResult(grid, result) {
		// The declared result stays authoritative; the grid is kept
		// best-effort.
		log.Warn().
			Str("player", player.Name).
			Int("puzzle", puzzleNumber).
			Int("result", result).
			Msg("Grid shape does not match declared result")
	}

	record := &model.ScoreRecord{
		PlayerID:     player.ID,
		LeagueID:     player.LeagueID,
		PuzzleNumber: puzzleNumber,
		Result:       result,
		EmojiGrid:    grid,
		CapturedAt:   s.now(),
	}

	return s.scores.Upsert(ctx, record)
}
