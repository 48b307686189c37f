package domain

import "time"

// Chunk is a bounded slice of a source's text paired with its embedding
// vector. Chunks are immutable once written: reprocessing deletes and
// recreates them, never edits in place. The ProjectID is denormalized from
// the owning source for query-time filtering and must never be accepted
// from a caller directly.
type Chunk struct {
	ID             string            `json:"id"`
	SourceID       string            `json:"source_id"`
	ProjectID      string            `json:"project_id"`
	Content        string            `json:"content"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	TokenCount     int               `json:"token_count"`
	Embedding      []float32         `json:"embedding,omitempty"`
	EmbeddingModel string            `json:"embedding_model"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Metadata keys written by the processor
const (
	// MetaItemIndex is the positional index of the chunk within its source
	MetaItemIndex = "chunk_index"

	// MetaStartChar and MetaEndChar are approximate character offsets
	// of the chunk within the normalized source text
	MetaStartChar = "start_char"
	MetaEndChar   = "end_char"

	// MetaSourceURL is the page URL for website-derived chunks
	MetaSourceURL = "source_url"

	// MetaPageID is the workspace page ID for notion-derived chunks
	MetaPageID = "page_id"

	// MetaItemTitle is the originating sub-resource title, when known
	MetaItemTitle = "title"
)
