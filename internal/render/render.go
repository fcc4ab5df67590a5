// Package render turns computed leaderboards into the static artifacts
// the site host serves. It is the last stop before publishing; nothing
// here feeds back into the pipeline.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"wordle-league-tracker/internal/model"
)

// Renderer writes one directory per league under the output dir,
// holding leaderboard.json (the raw computed structure) and index.html.
type Renderer struct {
	outDir string
	tmpl   *template.Template
}

// New creates a Renderer writing under outDir.
func New(outDir string) (*Renderer, error) {
	tmpl, err := template.New("leaderboard").Funcs(template.FuncMap{
		"result": formatResult,
		"gridRows": func(grid string) []string {
			if grid == "" {
				return nil
			}
			return strings.Split(grid, "\n")
		},
		"average": func(s model.AllTimeStats) string {
			if !s.HasAverage {
				return "-"
			}
			return fmt.Sprintf("%.2f", s.Average)
		},
		"weeklyScore": func(a model.WeeklyAggregate) string {
			if !a.HasScore {
				return "-"
			}
			return fmt.Sprintf("%d", a.WeeklyScore)
		},
	}).Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse leaderboard template: %w", err)
	}
	return &Renderer{outDir: outDir, tmpl: tmpl}, nil
}

// Publish writes the artifacts for one league. An empty board is
// skipped entirely so the previously published pages survive a cycle
// that produced no data.
func (r *Renderer) Publish(board *model.Leaderboard) error {
	if board.Empty() {
		log.Info().
			Int64("league", board.LeagueID).
			Msg("No data this cycle, leaving published output unchanged")
		return nil
	}

	dir := filepath.Join(r.outDir, fmt.Sprintf("league_%d", board.LeagueID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	data, err := json.MarshalIndent(board, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}
	if err := writeFile(filepath.Join(dir, "leaderboard.json"), data); err != nil {
		return err
	}

	var page bytes.Buffer
	if err := r.tmpl.Execute(&page, board); err != nil {
		return fmt.Errorf("failed to render leaderboard page: %w", err)
	}
	if err := writeFile(filepath.Join(dir, "index.html"), page.Bytes()); err != nil {
		return err
	}

	log.Info().
		Int64("league", board.LeagueID).
		Str("dir", dir).
		Int("daily", len(board.Daily)).
		Int("weekly", len(board.Weekly)).
		Int("all_time", len(board.AllTime)).
		Msg("Leaderboard published")

	return nil
}

// writeFile replaces path atomically so a crash mid-write never leaves
// a truncated page on the host.
func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func formatResult(result int) string {
	if result == model.FailedResult {
		return "X/6"
	}
	return fmt.Sprintf("%d/6", result)
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.LeagueName}} - Wordle League</title>
</head>
<body>
<h1>{{.LeagueName}}</h1>
<p>Wordle #{{.PuzzleNumber}} &middot; generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</p>

<h2>Today</h2>
{{if .Daily}}
<table>
<tr><th>Player</th><th>Result</th><th>Grid</th></tr>
{{range .Daily}}
<tr>
  <td>{{.PlayerName}}</td>
  <td>{{result .Result}}</td>
  <td>{{range gridRows .EmojiGrid}}<div>{{.}}</div>{{end}}</td>
</tr>
{{end}}
</table>
{{else}}
<p>No scores yet today.</p>
{{end}}

<h2>This Week</h2>
<table>
<tr><th>Player</th><th>Weekly Score</th><th>Used</th><th>Failed</th></tr>
{{range .Weekly}}
<tr>
  <td>{{.PlayerName}}{{if not .Eligible}} *{{end}}</td>
  <td>{{weeklyScore .}}</td>
  <td>{{.UsedCount}}</td>
  <td>{{.FailedCount}}</td>
</tr>
{{end}}
</table>
<p><small>* fewer than five scores this week; not ranked for the weekly win</small></p>

<h2>All Time</h2>
<table>
<tr><th>Player</th><th>Games</th><th>Average</th><th>Failed</th></tr>
{{range .AllTime}}
<tr>
  <td>{{.PlayerName}}</td>
  <td>{{.GamesPlayed}}</td>
  <td>{{average .}}</td>
  <td>{{.FailedCount}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`
