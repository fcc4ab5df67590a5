// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration, including the league
// roster. The roster is static administrative input: leagues and their
// players are declared here, not discovered from messages.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Puzzle   PuzzleConfig   `mapstructure:"puzzle"`
	Run      RunConfig      `mapstructure:"run"`
	Output   OutputConfig   `mapstructure:"output"`
	Leagues  []LeagueConfig `mapstructure:"leagues"`
}

// DatabaseConfig holds SQLite storage configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// IngestConfig holds message ingestion configuration.
type IngestConfig struct {
	SourceDir             string        `mapstructure:"source_dir"`
	FetchTimeout          time.Duration `mapstructure:"fetch_timeout"`
	UpsertPolicy          string        `mapstructure:"upsert_policy"`
	PlausibilityTolerance int           `mapstructure:"plausibility_tolerance"`
}

// PuzzleConfig pins the puzzle-number epoch. Every "today's puzzle
// number" computation derives from this single value.
type PuzzleConfig struct {
	Epoch string `mapstructure:"epoch"`
}

// RunConfig holds scheduling configuration. An interval of zero means
// run one cycle and exit; the external scheduler owns periodicity in
// that mode.
type RunConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// OutputConfig holds rendering output configuration.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// LeagueConfig declares one league and its roster.
type LeagueConfig struct {
	ID          int64          `mapstructure:"id"`
	Name        string         `mapstructure:"name"`
	Description string         `mapstructure:"description"`
	ThreadRef   string         `mapstructure:"thread_ref"`
	Players     []PlayerConfig `mapstructure:"players"`
}

// PlayerConfig declares one player in a league roster.
type PlayerConfig struct {
	Name    string `mapstructure:"name"`
	Contact string `mapstructure:"contact"`
}

// EpochDate parses the configured epoch as a calendar date.
func (p *PuzzleConfig) EpochDate() (time.Time, error) {
	t, err := time.Parse("2006-01-02", p.Epoch)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse puzzle epoch %q: %w", p.Epoch, err)
	}
	return t, nil
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the given directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. DATABASE_PATH, INGEST_SOURCE_DIR, OUTPUT_DIR.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - env vars can provide all config
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "wordle_league.db")

	v.SetDefault("ingest.source_dir", "exports")
	v.SetDefault("ingest.fetch_timeout", "30s")
	v.SetDefault("ingest.upsert_policy", "skip")
	v.SetDefault("ingest.plausibility_tolerance", 2)

	// Wordle #0 was published on June 19, 2021.
	v.SetDefault("puzzle.epoch", "2021-06-19")

	v.SetDefault("run.interval", "0s")
	v.SetDefault("output.dir", "site")
}

func (c *Config) validate() error {
	switch c.Ingest.UpsertPolicy {
	case "skip", "reject":
	default:
		return fmt.Errorf("invalid ingest.upsert_policy %q (want skip or reject)", c.Ingest.UpsertPolicy)
	}
	if c.Ingest.PlausibilityTolerance < 0 {
		return fmt.Errorf("ingest.plausibility_tolerance must not be negative")
	}
	if _, err := c.Puzzle.EpochDate(); err != nil {
		return err
	}
	seen := make(map[int64]bool, len(c.Leagues))
	for _, l := range c.Leagues {
		if l.ID == 0 {
			return fmt.Errorf("league %q has no id", l.Name)
		}
		if seen[l.ID] {
			return fmt.Errorf("duplicate league id %d", l.ID)
		}
		seen[l.ID] = true
		names := make(map[string]bool, len(l.Players))
		for _, p := range l.Players {
			if p.Name == "" {
				return fmt.Errorf("league %d has a player with no name", l.ID)
			}
			if names[p.Name] {
				return fmt.Errorf("duplicate player %q in league %d", p.Name, l.ID)
			}
			names[p.Name] = true
		}
	}
	return nil
}
