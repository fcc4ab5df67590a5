package parse

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		rawHTML  string
		expected string
	}{
		{
			"br becomes newline",
			"<div>Wordle 1503 4/6<br>🟩🟩🟩🟩🟩</div>",
			"Wordle 1503 4/6\n🟩🟩🟩🟩🟩",
		},
		{
			"entities decoded",
			"<span>Wordle #1,503 4/6 &amp; done</span>",
			"Wordle #1,503 4/6 & done",
		},
		{
			"nested markup stripped",
			`<div class="content"><b>Wordle</b> <i>1503</i> 2/6</div>`,
			"Wordle 1503 2/6",
		},
		{
			"img alt squares inlined",
			`<div>Wordle 1500 1/6<br>` + img("green square") + img("🟩") +
				img("green square") + img("green square") + img("green square") + `</div>`,
			"Wordle 1500 1/6\n🟩🟩🟩🟩🟩",
		},
		{
			"block elements break lines",
			"<div>Wordle 1503 2/6</div><div>🟨🟨⬜⬜⬜</div><div>🟩🟩🟩🟩🟩</div>",
			"Wordle 1503 2/6\n🟨🟨⬜⬜⬜\n🟩🟩🟩🟩🟩",
		},
		{
			"script contents dropped",
			"<div>Wordle 1503 3/6<script>var x = 99;</script></div>",
			"Wordle 1503 3/6",
		},
		{
			"plain text passes through",
			"Wordle 1503 5/6",
			"Wordle 1503 5/6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.rawHTML)
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.rawHTML, got, tt.expected)
			}
		})
	}
}

// TestNormalizeThenMatch covers the full fragment-to-score path the
// ingest pipeline runs.
func TestNormalizeThenMatch(t *testing.T) {
	raw := `<div class="content">Wordle 1,503 x/6<br>` +
		`⬜🟨⬜⬜⬜<br>🟨🟩⬜⬜🟩<br>🟩🟩⬜🟩🟩<br>` +
		`🟩🟩🟩⬜🟩<br>🟩🟩🟩🟩⬜<br>🟩🟩🟩🟩⬜</div>`

	text := Normalize(raw)
	puzzle, result, ok := MatchScore(text)
	if !ok {
		t.Fatalf("no score matched in %q", text)
	}
	if puzzle != 1503 || result != 7 {
		t.Errorf("got (%d, %d), want (1503, 7)", puzzle, result)
	}

	grid, ok := ExtractGrid(raw, text)
	if !ok {
		t.Fatal("expected a grid")
	}
	if !GridMatchesResult(grid, result) {
		t.Errorf("grid %q inconsistent with failed result", grid)
	}
}
