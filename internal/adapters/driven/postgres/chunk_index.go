package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pgvector/pgvector-go"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChunkIndex = (*ChunkIndex)(nil)

// ChunkIndex implements driven.ChunkIndex on PostgreSQL with pgvector.
// Ranking uses the cosine distance operator; similarity is 1 - distance.
type ChunkIndex struct {
	db *DB
}

// NewChunkIndex creates a new ChunkIndex
func NewChunkIndex(db *DB) *ChunkIndex {
	return &ChunkIndex{db: db}
}

// SaveBatch writes all chunks in one transaction; a failed batch writes
// nothing
func (s *ChunkIndex) SaveBatch(ctx context.Context, chunks []*domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO chunks (id, source_id, project_id, content, metadata, token_count,
			                    embedding, embedding_model, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, chunk := range chunks {
			metadataJSON, err := json.Marshal(chunk.Metadata)
			if err != nil {
				return err
			}

			_, err = stmt.ExecContext(ctx,
				chunk.ID,
				chunk.SourceID,
				chunk.ProjectID,
				chunk.Content,
				metadataJSON,
				chunk.TokenCount,
				pgvector.NewVector(chunk.Embedding),
				chunk.EmbeddingModel,
				chunk.CreatedAt,
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// Query returns chunks of the project ranked by cosine similarity to the
// vector, strictly above threshold, capped at topK
func (s *ChunkIndex) Query(ctx context.Context, projectID string, vector []float32, threshold float64, topK int) ([]*domain.QueryMatch, error) {
	query := `
		SELECT id, source_id, content, metadata,
		       1 - (embedding <=> $2) AS similarity
		FROM chunks
		WHERE project_id = $1
		  AND 1 - (embedding <=> $2) > $3
		ORDER BY similarity DESC, id ASC
		LIMIT $4
	`

	rows, err := s.db.QueryContext(ctx, query,
		projectID, pgvector.NewVector(vector), threshold, topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*domain.QueryMatch
	for rows.Next() {
		var match domain.QueryMatch
		var metadataJSON []byte
		if err := rows.Scan(
			&match.ChunkID,
			&match.SourceID,
			&match.Content,
			&metadataJSON,
			&match.Similarity,
		); err != nil {
			return nil, err
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &match.Metadata); err != nil {
				return nil, err
			}
		}
		matches = append(matches, &match)
	}
	return matches, rows.Err()
}

// DeleteBySource deletes all chunks for a source
func (s *ChunkIndex) DeleteBySource(ctx context.Context, sourceID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE source_id = $1`, sourceID)
	return err
}

// CountBySource returns the number of chunks stored for a source
func (s *ChunkIndex) CountBySource(ctx context.Context, sourceID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks WHERE source_id = $1`, sourceID).Scan(&count)
	return count, err
}
