package parse

import (
	"regexp"
	"strconv"
	"strings"

	"wordle-league-tracker/internal/model"
)

// The three score patterns, strictest first. All are case-insensitive:
// players share "x/6" as often as "X/6", and the tracker missed the
// lowercase form for months when only the strict pattern carried the
// flag.
var scorePatterns = []*regexp.Regexp{
	// "Wordle 1503 4/6", "Wordle #1,503 X/6"
	regexp.MustCompile(`(?i)Wordle\s+#?(\d+(?:,\d+)?)\s+([1-6X])/6`),
	// Allows colons and loose whitespace around the number:
	// "Wordle: 1503: 4/6"
	regexp.MustCompile(`(?i)Wordle[:\s]+#?(\d+(?:,\d+)?)\s*[:\s]+([1-6X])/6`),
	// Anything non-numeric between the label, the number and the
	// result token. Last resort for mangled forwards.
	regexp.MustCompile(`(?i)Wordle[^\d]*(\d+(?:,\d+)?)[^\d]*?([1-6X])/6`),
}

// MatchScore scans normalized message text for a Wordle score. It
// returns the puzzle number and the result (1-6, or
// model.FailedResult for an X). ok is false when the message contains
// no recognizable score, which is not an error - most messages are
// just chat.
func MatchScore(text string) (puzzleNumber, result int, ok bool) {
	for _, pattern := range scorePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		// Puzzle numbers past 999 arrive comma-grouped ("1,503").
		num, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			continue
		}

		token := m[2]
		if strings.EqualFold(token, "X") {
			return num, model.FailedResult, true
		}
		r, err := strconv.Atoi(token)
		if err != nil || r < model.MinResult || r > model.MaxResult {
			continue
		}
		return num, r, true
	}

	return 0, 0, false
}
