package driven

import (
	"context"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
)

// ChunkIndex persists embedded chunks and answers nearest-neighbor
// similarity queries (PostgreSQL + pgvector)
type ChunkIndex interface {
	// SaveBatch writes all chunks in one transaction. An aborted attempt
	// must leave no chunks behind.
	SaveBatch(ctx context.Context, chunks []*domain.Chunk) error

	// Query returns chunks of the project ranked by cosine similarity to
	// the vector, strictly above threshold, capped at topK. Results are
	// ordered by similarity descending with chunk ID as tie-break.
	Query(ctx context.Context, projectID string, vector []float32, threshold float64, topK int) ([]*domain.QueryMatch, error)

	// DeleteBySource deletes all chunks for a source
	DeleteBySource(ctx context.Context, sourceID string) error

	// CountBySource returns the number of chunks stored for a source
	CountBySource(ctx context.Context, sourceID string) (int, error)
}
