// Package model defines the data models for the Wordle league tracker.
package model

import "time"

// Result values for a ScoreRecord.
// A solved puzzle records the guess count 1-6; an unsolved puzzle (the
// "X/6" share) is stored with the FailedResult sentinel.
const (
	MinResult    = 1
	MaxResult    = 6
	FailedResult = 7
)

// BestOfWeek is the number of lowest results that count toward a
// player's weekly total.
const BestOfWeek = 5

// League is a named group of players sharing one chat thread.
type League struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	ThreadRef   string `db:"thread_ref" json:"-"`
}

// Player is one identity within one league. The same human shows up as
// a distinct Player row in each league they belong to. Contact is the
// phone number the chat provider attaches to their messages; it is used
// only to attribute incoming messages and is never displayed.
type Player struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	LeagueID int64  `db:"league_id" json:"league_id"`
	Contact  string `db:"contact" json:"-"`
}

// ScoreRecord is one player's result for one puzzle.
type ScoreRecord struct {
	ID           int64     `db:"id" json:"id"`
	PlayerID     int64     `db:"player_id" json:"player_id"`
	LeagueID     int64     `db:"league_id" json:"league_id"`
	PuzzleNumber int       `db:"puzzle_number" json:"puzzle_number"`
	Result       int       `db:"result" json:"result"`
	EmojiGrid    string    `db:"emoji_grid" json:"emoji_grid"`
	CapturedAt   time.Time `db:"captured_at" json:"captured_at"`
}

// Failed reports whether the record is a failed attempt.
func (r *ScoreRecord) Failed() bool {
	return r.Result == FailedResult
}

// WeeklyAggregate is a player's derived standing for one Monday-Sunday
// puzzle window. It is recomputed from ScoreRecords on demand, never
// stored. WeeklyScore is the sum of the used results; it only counts
// as a reported score (HasScore) once five results back it - with
// fewer the player shows as "no score" alongside their counts.
type WeeklyAggregate struct {
	PlayerID    int64  `json:"player_id"`
	PlayerName  string `json:"player"`
	StartPuzzle int    `json:"start_puzzle"`
	WeeklyScore int    `json:"weekly_score"`
	HasScore    bool   `json:"has_score"`
	UsedCount   int    `json:"used_count"`
	ThrownOut   int    `json:"thrown_out"`
	FailedCount int    `json:"failed_count"`
	Eligible    bool   `json:"eligible"`
}

// AllTimeStats is a player's standing across every recorded puzzle.
// The average treats failed attempts as 7, and GamesPlayed includes
// them.
type AllTimeStats struct {
	PlayerID     int64   `json:"player_id"`
	PlayerName   string  `json:"player"`
	GamesPlayed  int     `json:"games_played"`
	Average      float64 `json:"average"`
	HasAverage   bool    `json:"has_average"`
	Distribution [6]int  `json:"distribution"`
	FailedCount  int     `json:"failed_count"`
}

// DailyEntry is one player's result on the current puzzle, shown on the
// daily board.
type DailyEntry struct {
	PlayerName   string `json:"player"`
	PuzzleNumber int    `json:"puzzle_number"`
	Result       int    `json:"result"`
	EmojiGrid    string `json:"grid"`
}

// Leaderboard is the full computed standing for one league. It is the
// contract handed to the rendering boundary.
type Leaderboard struct {
	LeagueID     int64             `json:"league_id"`
	LeagueName   string            `json:"league"`
	PuzzleNumber int               `json:"puzzle_number"`
	Daily        []DailyEntry      `json:"daily"`
	Weekly       []WeeklyAggregate `json:"weekly"`
	AllTime      []AllTimeStats    `json:"all_time"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

// Empty reports whether the leaderboard carries no data at all, in
// which case the renderer leaves the previously published artifacts
// untouched.
func (b *Leaderboard) Empty() bool {
	return len(b.Daily) == 0 && len(b.Weekly) == 0 && len(b.AllTime) == 0
}
