// Package chunker splits normalized text into bounded, overlapping pieces
// suitable for embedding. Splitting is greedy and paragraph-aware: whole
// paragraphs are packed into a chunk until the size budget runs out, and
// consecutive chunks share an overlap tail so sentences cut at a boundary
// stay retrievable.
package chunker

import (
	"strings"
)

// Config holds chunking parameters
type Config struct {
	// ChunkSize is the target chunk size in characters
	ChunkSize int

	// Overlap is the size of the tail carried into the next chunk
	Overlap int

	// Separator splits the text into paragraphs
	Separator string
}

// DefaultConfig returns the default chunking configuration
func DefaultConfig() Config {
	return Config{
		ChunkSize: 1000,
		Overlap:   200,
		Separator: "\n\n",
	}
}

// Piece is one bounded span of the normalized input text
type Piece struct {
	Content string

	// Index is the running position of the piece within its input
	Index int

	// StartChar and EndChar are approximate character offsets in the
	// normalized text. Consecutive pieces overlap; ignoring the overlap,
	// the spans cover the input with no gaps.
	StartChar int
	EndChar   int
}

// Chunker splits text according to a fixed configuration. Safe for
// concurrent use.
type Chunker struct {
	cfg Config
}

// New creates a Chunker, falling back to defaults for unusable values
func New(cfg Config) *Chunker {
	def := DefaultConfig()
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = def.Overlap
		if cfg.Overlap >= cfg.ChunkSize {
			cfg.Overlap = cfg.ChunkSize / 5
		}
	}
	if cfg.Separator == "" {
		cfg.Separator = def.Separator
	}
	return &Chunker{cfg: cfg}
}

// Split cuts text into ordered pieces. The result is recomputed on every
// call. Empty or whitespace-only input yields no pieces.
func (c *Chunker) Split(text string) []Piece {
	normalized := normalize(text)
	if normalized == "" {
		return nil
	}

	if len(normalized) <= c.cfg.ChunkSize {
		return []Piece{{
			Content:   normalized,
			Index:     0,
			StartChar: 0,
			EndChar:   len(normalized),
		}}
	}

	var paragraphs []string
	for _, p := range strings.Split(normalized, c.cfg.Separator) {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	var pieces []Piece
	var buffer string
	cursor := 0

	flush := func() {
		if buffer == "" {
			return
		}
		pieces = append(pieces, Piece{
			Content:   buffer,
			Index:     len(pieces),
			StartChar: cursor,
			EndChar:   cursor + len(buffer),
		})
		tail := c.overlapTail(buffer)
		cursor += len(buffer) - len(tail)
		buffer = tail
	}

	for _, para := range paragraphs {
		if len(para) > c.cfg.ChunkSize {
			flush()
			if buffer != "" {
				// An overlap tail alone is not worth a chunk; drop it so
				// the oversized paragraph starts clean.
				cursor += len(buffer)
				buffer = ""
			}
			pieces = c.splitOversized(para, pieces, &cursor)
			continue
		}

		if buffer == "" {
			buffer = para
			continue
		}
		if len(buffer)+len(c.cfg.Separator)+len(para) <= c.cfg.ChunkSize {
			buffer += c.cfg.Separator + para
			continue
		}
		flush()
		if len(buffer)+len(c.cfg.Separator)+len(para) <= c.cfg.ChunkSize {
			buffer += c.cfg.Separator + para
		} else {
			cursor += len(buffer)
			buffer = para
		}
	}

	if buffer != "" && len(pieces) > 0 && len(buffer) <= c.cfg.Overlap {
		// Trailing content that is pure overlap tail is already covered
		// by the previous piece.
		lastTail := c.overlapTail(pieces[len(pieces)-1].Content)
		if buffer == lastTail {
			buffer = ""
		}
	}
	if buffer != "" {
		pieces = append(pieces, Piece{
			Content:   buffer,
			Index:     len(pieces),
			StartChar: cursor,
			EndChar:   cursor + len(buffer),
		})
	}
	return pieces
}

// splitOversized cuts a single paragraph larger than the chunk size with a
// hard-boundary pass, preferring sentence ends, then word ends, then a
// plain character cut. The window advances by roughly size minus overlap
// and stops once the remaining tail is smaller than the overlap.
func (c *Chunker) splitOversized(para string, pieces []Piece, cursor *int) []Piece {
	size := c.cfg.ChunkSize
	overlap := c.cfg.Overlap

	start := 0
	for start < len(para) {
		remaining := len(para) - start
		if remaining <= size {
			if len(pieces) > 0 && remaining < overlap {
				break
			}
			pieces = append(pieces, Piece{
				Content:   para[start:],
				Index:     len(pieces),
				StartChar: *cursor,
				EndChar:   *cursor + remaining,
			})
			*cursor += remaining
			break
		}

		window := para[start : start+size]
		cut := size
		if idx := strings.LastIndex(window, ". "); idx > 0 {
			cut = idx + 2
		} else if idx := strings.LastIndex(window, " "); idx > 0 {
			cut = idx + 1
		}

		content := strings.TrimRight(para[start:start+cut], " ")
		pieces = append(pieces, Piece{
			Content:   content,
			Index:     len(pieces),
			StartChar: *cursor,
			EndChar:   *cursor + len(content),
		})

		next := start + cut - overlap
		if next <= start {
			next = start + cut
		}
		*cursor += next - start
		start = next
	}
	return pieces
}

// overlapTail takes the carried-over tail from a flushed chunk, breaking at
// the last sentence boundary in the trailing window, then the last word
// boundary, then a hard character cut.
func (c *Chunker) overlapTail(s string) string {
	if len(s) <= c.cfg.Overlap {
		return s
	}
	window := s[len(s)-c.cfg.Overlap:]
	if idx := strings.LastIndex(window, ". "); idx >= 0 {
		return window[idx+2:]
	}
	if idx := strings.LastIndex(window, " "); idx >= 0 {
		return window[idx+1:]
	}
	return window
}

// normalize standardizes line endings and trims surrounding whitespace
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}

// EstimateTokens approximates the token count of a text as one token per
// four characters, rounded up. A cheap proxy for quota accounting, not a
// real tokenizer.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
