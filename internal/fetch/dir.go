package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"wordle-league-tracker/internal/model"
)

// DirFetcher reads conversation exports from a directory. The upstream
// browser automation dumps each visible thread as
// conversation_<threadref>*.html; every message in an export is a
// div.message holding a div.sender (the contact identifier) and a
// div.content (the message bubble).
type DirFetcher struct {
	dir string
}

// NewDirFetcher creates a DirFetcher over the given directory.
func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{dir: dir}
}

// Fetch returns the messages for a league's thread, in document order
// per file and lexical file order across files.
func (f *DirFetcher) Fetch(ctx context.Context, league model.League) ([]Message, error) {
	pattern := filepath.Join(f.dir, "conversation_"+league.ThreadRef+"*.html")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob exports: %w", err)
	}
	sort.Strings(files)

	var messages []Message
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := os.ReadFile(file)
		if err != nil {
			// A missing or unreadable export is worth a warning, but
			// the other files in the cycle still count.
			log.Warn().Err(err).Str("file", file).Msg("Skipping unreadable conversation export")
			continue
		}

		parsed, err := parseConversation(string(raw), league.ID)
		if err != nil {
			log.Warn().Err(err).Str("file", file).Msg("Skipping unparseable conversation export")
			continue
		}
		messages = append(messages, parsed...)
	}

	log.Debug().
		Int64("league", league.ID).
		Int("files", len(files)).
		Int("messages", len(messages)).
		Msg("Fetched conversation exports")

	return messages, nil
}

// parseConversation pulls the per-message tuples out of one export.
func parseConversation(rawHTML string, leagueID int64) ([]Message, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse export: %w", err)
	}

	var messages []Message
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "message") {
			if msg, ok := messageFromNode(n, leagueID); ok {
				messages = append(messages, msg)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return messages, nil
}

func messageFromNode(n *html.Node, leagueID int64) (Message, bool) {
	sender := findClass(n, "sender")
	content := findClass(n, "content")
	if sender == nil || content == nil {
		return Message{}, false
	}

	return Message{
		RawHTML:  innerHTML(content),
		Contact:  strings.TrimSpace(nodeText(sender)),
		LeagueID: leagueID,
	}, true
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func findClass(n *html.Node, class string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && hasClass(c, class) {
			return c
		}
		if found := findClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func innerHTML(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		// Render only fails on unrenderable node types, which a parsed
		// document never contains.
		_ = html.Render(&b, c)
	}
	return b.String()
}
