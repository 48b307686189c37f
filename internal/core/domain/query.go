package domain

import "time"

// Query defaults and caps. External callers authenticated by API key are
// capped harder than interactive internal use.
const (
	DefaultTopK     = 5
	MaxTopKExternal = 20

	DefaultSimilarityThreshold = 0.0
)

// QueryOptions configures a similarity query
type QueryOptions struct {
	// TopK is the maximum number of results to return
	TopK int `json:"top_k,omitempty"`

	// Threshold is the strict lower bound: only results with
	// similarity > Threshold are returned
	Threshold float64 `json:"threshold,omitempty"`
}

// QueryMatch is one ranked similarity result
type QueryMatch struct {
	ChunkID    string            `json:"chunk_id"`
	SourceID   string            `json:"source_id"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Similarity float64           `json:"similarity"`
}

// QueryResult is the full response for a similarity query
type QueryResult struct {
	ProjectID string        `json:"project_id"`
	Query     string        `json:"query"`
	Matches   []*QueryMatch `json:"matches"`
	Took      time.Duration `json:"took"`
}
