package parse

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"wordle-league-tracker/internal/model"
)

// The four square glyphs a Wordle share grid is built from. Gray
// squares arrive as black on dark-theme clients and white on light
// ones.
const (
	GreenSquare  = '\U0001F7E9' // 🟩
	YellowSquare = '\U0001F7E8' // 🟨
	BlackSquare  = '⬛'     // ⬛
	WhiteSquare  = '⬜'     // ⬜
)

// variationSelector trails square glyphs on some clients and carries no
// information.
const variationSelector = '️'

// GridWidth is the number of squares per grid row.
const GridWidth = 5

// altSquares maps img alt labels to grid glyphs. Google Voice renders
// emoji as <img> tags whose alt is either the glyph itself or its
// long Unicode name.
var altSquares = map[string]rune{
	"🟩":                 GreenSquare,
	"🟨":                 YellowSquare,
	"⬛":                 BlackSquare,
	"⬜":                 WhiteSquare,
	"green square":       GreenSquare,
	"yellow square":      YellowSquare,
	"black large square": BlackSquare,
	"white large square": WhiteSquare,
}

func squareForAlt(alt string) (string, bool) {
	r, ok := altSquares[strings.TrimSuffix(strings.TrimSpace(alt), string(variationSelector))]
	if !ok {
		return "", false
	}
	return string(r), true
}

func isSquare(r rune) bool {
	switch r {
	case GreenSquare, YellowSquare, BlackSquare, WhiteSquare:
		return true
	}
	return false
}

// ExtractGrid recovers the emoji grid from a message. The primary path
// scans the raw HTML token stream, collecting squares from img alt
// attributes and literal text runs in document order - rows routinely
// mix both renderings. When the HTML yields nothing the literal glyphs
// in the normalized text are used instead. The squares are re-chunked
// into rows of five; a trailing partial row is dropped and anything
// past six rows is ignored. ok is false when no grid was found.
func ExtractGrid(rawHTML, text string) (grid string, ok bool) {
	squares := scanHTMLSquares(rawHTML)
	if len(squares) == 0 {
		squares = scanTextSquares(text)
	}
	return chunkRows(squares)
}

// scanHTMLSquares walks the HTML token stream and returns every grid
// square in document order, whether rendered as an <img> or as a
// literal glyph. Mis-decoded byte sequences never look like square
// glyphs, so corrupted input naturally produces nothing rather than
// garbled rows.
func scanHTMLSquares(rawHTML string) []rune {
	if rawHTML == "" || !utf8.ValidString(rawHTML) {
		return nil
	}

	var squares []rune
	z := html.NewTokenizer(strings.NewReader(rawHTML))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return squares
		case html.TextToken:
			squares = append(squares, scanTextSquares(string(z.Text()))...)
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "img" {
				continue
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) != "alt" {
					continue
				}
				if s, found := squareForAlt(string(val)); found {
					squares = append(squares, []rune(s)[0])
				}
				break
			}
		}
	}
}

func scanTextSquares(text string) []rune {
	if !utf8.ValidString(text) {
		return nil
	}
	var squares []rune
	for _, r := range text {
		if isSquare(r) {
			squares = append(squares, r)
		}
		// Variation selectors and everything else fall through.
	}
	return squares
}

func chunkRows(squares []rune) (string, bool) {
	rows := len(squares) / GridWidth
	if rows == 0 {
		return "", false
	}
	if rows > 6 {
		rows = 6
	}

	lines := make([]string, rows)
	for i := 0; i < rows; i++ {
		lines[i] = string(squares[i*GridWidth : (i+1)*GridWidth])
	}
	return strings.Join(lines, "\n"), true
}

// GridMatchesResult checks the grid shape against the declared result:
// a solved puzzle has exactly result rows ending in an all-green row, a
// failed one has six rows none of which is all green. A mismatch is a
// data-quality warning only; the declared result stays authoritative.
func GridMatchesResult(grid string, result int) bool {
	lines := strings.Split(grid, "\n")

	if result == model.FailedResult {
		if len(lines) != 6 {
			return false
		}
		for _, line := range lines {
			if allGreen(line) {
				return false
			}
		}
		return true
	}

	if len(lines) != result {
		return false
	}
	return allGreen(lines[len(lines)-1])
}

func allGreen(line string) bool {
	if utf8.RuneCountInString(line) != GridWidth {
		return false
	}
	for _, r := range line {
		if r != GreenSquare {
			return false
		}
	}
	return true
}
