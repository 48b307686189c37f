package driving

import (
	"context"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
)

// QueryRequest is a similarity search over a project's indexed chunks
type QueryRequest struct {
	Query     string   `json:"query"`
	TopK      int      `json:"top_k,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// QueryService answers similarity queries against the chunk index
type QueryService interface {
	Query(ctx context.Context, projectID string, req QueryRequest) (*domain.QueryResult, error)
}
