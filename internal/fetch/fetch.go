// Package fetch defines the message ingestion boundary. How messages
// come off the chat provider is an upstream concern; the pipeline only
// sees ordered (raw HTML, contact, league) tuples.
package fetch

import (
	"context"

	"wordle-league-tracker/internal/model"
)

// Message is one chat bubble as delivered by the upstream collaborator.
// RawHTML is the unmodified fragment for that bubble; Contact is the
// provider's sender identifier.
type Message struct {
	RawHTML  string
	Contact  string
	LeagueID int64
}

// Fetcher produces the messages currently visible for a league's
// thread. Implementations must honor ctx cancellation; a timed-out
// fetch is treated by the caller as an empty cycle, not a failure.
type Fetcher interface {
	Fetch(ctx context.Context, league model.League) ([]Message, error)
}
