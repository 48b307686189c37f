package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driving"
)

// Ensure queryService implements QueryService
var _ driving.QueryService = (*queryService)(nil)

// queryService answers similarity queries over a project's chunks.
type queryService struct {
	chunkIndex driven.ChunkIndex
	embeddings driven.EmbeddingService
	logger     *slog.Logger
}

// NewQueryService creates a QueryService.
func NewQueryService(
	chunkIndex driven.ChunkIndex,
	embeddings driven.EmbeddingService,
	logger *slog.Logger,
) driving.QueryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &queryService{
		chunkIndex: chunkIndex,
		embeddings: embeddings,
		logger:     logger,
	}
}

// Query embeds the query text and returns the project's most similar
// chunks. An empty match list is a valid result, not an error.
func (s *queryService) Query(ctx context.Context, projectID string, req driving.QueryRequest) (*domain.QueryResult, error) {
	start := time.Now()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query required", domain.ErrInvalidInput)
	}
	if projectID == "" {
		return nil, fmt.Errorf("%w: project id required", domain.ErrInvalidInput)
	}

	topK := req.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	if topK > domain.MaxTopKExternal {
		topK = domain.MaxTopKExternal
	}

	threshold := domain.DefaultSimilarityThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < -1 || threshold >= 1 {
		return nil, fmt.Errorf("%w: threshold must be in [-1, 1)", domain.ErrInvalidInput)
	}

	vector, err := s.embeddings.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.chunkIndex.Query(ctx, projectID, vector, threshold, topK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	if matches == nil {
		matches = []*domain.QueryMatch{}
	}

	return &domain.QueryResult{
		ProjectID: projectID,
		Query:     query,
		Matches:   matches,
		Took:      time.Since(start),
	}, nil
}
