package chunker

import (
	"strings"
	"testing"
)

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	c := New(DefaultConfig())

	text := strings.Repeat("A", 50)
	pieces := c.Split(text)

	if len(pieces) != 1 {
		t.Fatalf("expected 1 piece, got %d", len(pieces))
	}
	if pieces[0].Content != text {
		t.Errorf("expected content %q, got %q", text, pieces[0].Content)
	}
	if pieces[0].Index != 0 {
		t.Errorf("expected index 0, got %d", pieces[0].Index)
	}
	if pieces[0].StartChar != 0 || pieces[0].EndChar != 50 {
		t.Errorf("expected span [0,50), got [%d,%d)", pieces[0].StartChar, pieces[0].EndChar)
	}
}

func TestSplit_NormalizesLineEndingsAndTrims(t *testing.T) {
	c := New(DefaultConfig())

	pieces := c.Split("  hello\r\nworld\r ")
	if len(pieces) != 1 {
		t.Fatalf("expected 1 piece, got %d", len(pieces))
	}
	if pieces[0].Content != "hello\nworld" {
		t.Errorf("expected normalized content, got %q", pieces[0].Content)
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	c := New(DefaultConfig())

	for _, input := range []string{"", "   ", "\r\n\r\n"} {
		if pieces := c.Split(input); pieces != nil {
			t.Errorf("Split(%q): expected nil, got %d pieces", input, len(pieces))
		}
	}
}

func TestSplit_AccumulatesParagraphs(t *testing.T) {
	c := New(Config{ChunkSize: 100, Overlap: 20, Separator: "\n\n"})

	// Three paragraphs of 40 chars: first two fit in one chunk (40+2+40),
	// the third overflows.
	p1 := strings.Repeat("a", 40)
	p2 := strings.Repeat("b", 40)
	p3 := strings.Repeat("c", 40)
	pieces := c.Split(p1 + "\n\n" + p2 + "\n\n" + p3)

	if len(pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(pieces))
	}
	if !strings.Contains(pieces[0].Content, p1) || !strings.Contains(pieces[0].Content, p2) {
		t.Errorf("first piece should hold both leading paragraphs, got %q", pieces[0].Content)
	}
	if !strings.Contains(pieces[1].Content, p3) {
		t.Errorf("second piece should hold trailing paragraph, got %q", pieces[1].Content)
	}
}

func TestSplit_OverlapTailSharedBetweenChunks(t *testing.T) {
	c := New(Config{ChunkSize: 100, Overlap: 30, Separator: "\n\n"})

	var paragraphs []string
	for i := 0; i < 6; i++ {
		paragraphs = append(paragraphs, "The quick brown fox jumps over the lazy dog near the river bank today.")
	}
	pieces := c.Split(strings.Join(paragraphs, "\n\n"))

	if len(pieces) < 2 {
		t.Fatalf("expected multiple pieces, got %d", len(pieces))
	}
	for i := 1; i < len(pieces); i++ {
		prev := pieces[i-1]
		cur := pieces[i]
		// StartChar of each piece rewinds into the previous piece's span
		if cur.StartChar > prev.EndChar {
			t.Errorf("gap between piece %d and %d: [%d,%d) then [%d,%d)",
				i-1, i, prev.StartChar, prev.EndChar, cur.StartChar, cur.EndChar)
		}
		if cur.StartChar < prev.StartChar {
			t.Errorf("piece %d starts before piece %d", i, i-1)
		}
	}
}

func TestSplit_SequentialIndexes(t *testing.T) {
	c := New(Config{ChunkSize: 80, Overlap: 10, Separator: "\n\n"})

	text := strings.Repeat("word word word word word. ", 40)
	pieces := c.Split(text)

	if len(pieces) < 2 {
		t.Fatalf("expected multiple pieces, got %d", len(pieces))
	}
	for i, p := range pieces {
		if p.Index != i {
			t.Errorf("piece %d has index %d", i, p.Index)
		}
	}
}

func TestSplit_OversizedParagraph(t *testing.T) {
	c := New(Config{ChunkSize: 100, Overlap: 20, Separator: "\n\n"})

	// One paragraph, no separators, far over the chunk size.
	text := strings.Repeat("Sentence number one here. ", 30)
	pieces := c.Split(text)

	if len(pieces) < 2 {
		t.Fatalf("expected oversized paragraph to split, got %d pieces", len(pieces))
	}
	for i, p := range pieces {
		if len(p.Content) > 100 {
			t.Errorf("piece %d exceeds chunk size: %d chars", i, len(p.Content))
		}
	}
}

func TestSplit_OversizedParagraphPrefersSentenceBreak(t *testing.T) {
	c := New(Config{ChunkSize: 100, Overlap: 20, Separator: "\n\n"})

	text := strings.Repeat("Alpha beta gamma delta epsilon zeta. ", 10)
	pieces := c.Split(text)

	if len(pieces) < 2 {
		t.Fatalf("expected multiple pieces, got %d", len(pieces))
	}
	if !strings.HasSuffix(pieces[0].Content, ".") {
		t.Errorf("expected first piece to end at a sentence boundary, got %q", pieces[0].Content)
	}
}

func TestSplit_CoverageNoGaps(t *testing.T) {
	c := New(Config{ChunkSize: 120, Overlap: 25, Separator: "\n\n"})

	var sb strings.Builder
	for i := 0; i < 12; i++ {
		sb.WriteString("Paragraph text with several words in it that runs a while. ")
		sb.WriteString("\n\n")
	}
	pieces := c.Split(sb.String())

	if len(pieces) == 0 {
		t.Fatal("expected pieces")
	}
	if pieces[0].StartChar != 0 {
		t.Errorf("first piece should start at 0, got %d", pieces[0].StartChar)
	}
	for i := 1; i < len(pieces); i++ {
		if pieces[i].StartChar > pieces[i-1].EndChar {
			t.Errorf("coverage gap before piece %d", i)
		}
	}
	for _, p := range pieces {
		if p.EndChar-p.StartChar != len(p.Content) {
			t.Errorf("piece %d span length %d != content length %d",
				p.Index, p.EndChar-p.StartChar, len(p.Content))
		}
	}
}

func TestNew_InvalidConfigFallsBack(t *testing.T) {
	c := New(Config{ChunkSize: -5, Overlap: -1, Separator: ""})
	if c.cfg.ChunkSize != 1000 || c.cfg.Overlap != 200 || c.cfg.Separator != "\n\n" {
		t.Errorf("expected defaults, got %+v", c.cfg)
	}

	// Overlap not smaller than chunk size is unusable too
	c = New(Config{ChunkSize: 100, Overlap: 100})
	if c.cfg.Overlap >= c.cfg.ChunkSize {
		t.Errorf("overlap %d should be below chunk size %d", c.cfg.Overlap, c.cfg.ChunkSize)
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 100), 25},
		{strings.Repeat("x", 101), 26},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%d chars) = %d, want %d", len(tt.text), got, tt.want)
		}
	}
}
