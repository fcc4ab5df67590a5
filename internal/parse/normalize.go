// Package parse recovers Wordle scores and emoji grids from raw chat
// message HTML.
package parse

import (
	"strings"

	"golang.org/x/net/html"
)

// Normalize converts a raw HTML fragment representing one chat message
// into plain text. Markup is stripped, <br> and block boundaries become
// newlines, entities are decoded, and emoji survive verbatim. Some
// message sources render grid squares as <img> tags; their alt labels
// are folded back into the text as the glyphs they stand for, so the
// grid survives normalization too.
func Normalize(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		// html.Parse is tolerant to the point that errors are rare;
		// fall back to the input so digits are never lost.
		return strings.TrimSpace(rawHTML)
	}

	var b strings.Builder
	walkText(doc, &b)

	return tidyText(b.String())
}

func walkText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		// The tokenizer has already decoded entities here.
		b.WriteString(n.Data)
	case html.ElementNode:
		switch n.Data {
		case "br":
			b.WriteByte('\n')
			return
		case "img":
			if glyph, ok := squareForAlt(attrVal(n, "alt")); ok {
				b.WriteString(glyph)
			}
			return
		case "script", "style":
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, b)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "div", "p", "li", "tr":
			b.WriteByte('\n')
		}
	}
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// tidyText collapses the newline noise left behind by nested block
// elements without disturbing line content.
func tidyText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
