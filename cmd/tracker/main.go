// Package main is the entry point for the Wordle league tracker.
//
// The default invocation runs the extraction/aggregation/publishing
// pipeline, either once (run.interval = 0, for an external scheduler)
// or on an internal interval. The override and delete subcommands are
// the administrative correction surface.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wordle-league-tracker/internal/config"
	"wordle-league-tracker/internal/fetch"
	"wordle-league-tracker/internal/model"
	"wordle-league-tracker/internal/pkg/db"
	"wordle-league-tracker/internal/render"
	"wordle-league-tracker/internal/repository"
	"wordle-league-tracker/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sqlDB, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	roster := repository.NewRosterRepository(sqlDB)
	if err := syncRoster(ctx, roster, cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to sync league roster")
	}

	scores := repository.NewScoreRepository(sqlDB, repository.UpsertPolicy(cfg.Ingest.UpsertPolicy))

	if len(os.Args) > 1 {
		if err := runAdminCommand(ctx, os.Args[1], os.Args[2:], roster, scores); err != nil {
			log.Fatal().Err(err).Str("command", os.Args[1]).Msg("Command failed")
		}
		return
	}

	epoch, err := cfg.Puzzle.EpochDate()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid puzzle epoch")
	}

	ingest := service.NewIngestService(roster, scores, epoch, cfg.Ingest.PlausibilityTolerance)
	stats := service.NewStatsService(roster, scores, epoch)
	fetcher := fetch.NewDirFetcher(cfg.Ingest.SourceDir)

	renderer, err := render.New(cfg.Output.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize renderer")
	}

	runCycle(ctx, cfg, roster, fetcher, ingest, stats, renderer)

	if cfg.Run.Interval <= 0 {
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Run.Interval)
	defer ticker.Stop()

	log.Info().Dur("interval", cfg.Run.Interval).Msg("Tracker running on interval")
	for {
		select {
		case sig := <-sigChan:
			log.Info().Str("signal", sig.String()).Msg("Shutting down")
			return
		case <-ticker.C:
			runCycle(ctx, cfg, roster, fetcher, ingest, stats, renderer)
		}
	}
}

// runCycle runs one full pass: fetch, extract, persist, aggregate,
// publish, league by league. Cycles are serial; a failure in one
// league never blocks the others.
func runCycle(
	ctx context.Context,
	cfg *config.Config,
	roster *repository.RosterRepository,
	fetcher fetch.Fetcher,
	ingest *service.IngestService,
	stats *service.StatsService,
	renderer *render.Renderer,
) {
	leagues, err := roster.ListLeagues(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list leagues")
		return
	}

	for _, league := range leagues {
		messages, err := fetchWithTimeout(ctx, fetcher, league, cfg.Ingest.FetchTimeout)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				// The thread will still be there next cycle.
				log.Warn().Int64("league", league.ID).Msg("Upstream fetch timed out, skipping cycle")
				continue
			}
			log.Error().Err(err).Int64("league", league.ID).Msg("Failed to fetch messages")
			continue
		}

		summary := ingest.ProcessBatch(ctx, messages)
		log.Info().
			Int64("league", league.ID).
			Int("saved", summary.Saved).
			Int("duplicates", summary.Duplicates).
			Int("skipped", summary.Skipped).
			Int("unknown", summary.Unknown).
			Int("implausible", summary.Implausible).
			Int("failed", summary.Failed).
			Msg("Ingest cycle complete")

		board, err := stats.Leaderboard(ctx, league)
		if err != nil {
			log.Error().Err(err).Int64("league", league.ID).Msg("Failed to compute leaderboard")
			continue
		}
		if err := renderer.Publish(board); err != nil {
			log.Error().Err(err).Int64("league", league.ID).Msg("Failed to publish leaderboard")
		}
	}
}

func fetchWithTimeout(ctx context.Context, fetcher fetch.Fetcher, league model.League, timeout time.Duration) ([]fetch.Message, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fetcher.Fetch(fetchCtx, league)
}

// syncRoster mirrors the configured leagues and players into the
// database. Rosters are declarative: the config file is the source of
// truth, the tables just make it joinable.
func syncRoster(ctx context.Context, roster *repository.RosterRepository, cfg *config.Config) error {
	for _, lc := range cfg.Leagues {
		league := model.League{
			ID:          lc.ID,
			Name:        lc.Name,
			Description: lc.Description,
			ThreadRef:   lc.ThreadRef,
		}
		if err := roster.SyncLeague(ctx, league); err != nil {
			return err
		}
		for _, pc := range lc.Players {
			player := model.Player{
				Name:     pc.Name,
				LeagueID: lc.ID,
				Contact:  pc.Contact,
			}
			if err := roster.SyncPlayer(ctx, player); err != nil {
				return err
			}
		}
	}
	return nil
}

// runAdminCommand handles the correction subcommands. These replace
// the pile of one-shot fix scripts the league used to accumulate:
// every manual change goes through the same repository operations the
// pipeline uses.
func runAdminCommand(ctx context.Context, command string, args []string, roster *repository.RosterRepository, scores *repository.ScoreRepository) error {
	switch command {
	case "override":
		fs := flag.NewFlagSet("override", flag.ExitOnError)
		leagueID := fs.Int64("league", 0, "league id")
		playerName := fs.String("player", "", "player display name")
		puzzleNumber := fs.Int("puzzle", 0, "puzzle number")
		result := fs.Int("result", 0, "corrected result (1-6, or 7 for a failed attempt)")
		grid := fs.String("grid", "", "corrected emoji grid (optional, newline-separated rows)")
		if err := fs.Parse(args); err != nil {
			return err
		}

		player, err := roster.GetPlayerByName(ctx, *leagueID, *playerName)
		if err != nil {
			return err
		}
		if err := scores.Override(ctx, player.ID, *leagueID, *puzzleNumber, *result, *grid); err != nil {
			return err
		}
		log.Info().
			Str("player", *playerName).
			Int64("league", *leagueID).
			Int("puzzle", *puzzleNumber).
			Int("result", *result).
			Msg("Score overridden")
		return nil

	case "delete":
		fs := flag.NewFlagSet("delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "score record id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := scores.Delete(ctx, *id); err != nil {
			return err
		}
		log.Info().Int64("id", *id).Msg("Score deleted")
		return nil

	default:
		return fmt.Errorf("unknown command %q (want override or delete)", command)
	}
}
