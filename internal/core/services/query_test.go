package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven/mocks"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driving"
)

func seedChunks(t *testing.T, index *mocks.MockChunkIndex, embeddings *mocks.MockEmbeddingService, projectID string, contents ...string) {
	t.Helper()
	chunks := make([]*domain.Chunk, len(contents))
	for i, content := range contents {
		vectors, err := embeddings.Embed(context.Background(), []string{content})
		if err != nil {
			t.Fatalf("embed seed chunk: %v", err)
		}
		chunks[i] = &domain.Chunk{
			ID:        fmt.Sprintf("chunk-%d", i),
			SourceID:  "src-1",
			ProjectID: projectID,
			Content:   content,
			Embedding: vectors[0],
		}
	}
	if err := index.SaveBatch(context.Background(), chunks); err != nil {
		t.Fatalf("seed chunks: %v", err)
	}
}

func TestQuery(t *testing.T) {
	index := mocks.NewMockChunkIndex()
	embeddings := mocks.NewMockEmbeddingService()
	seedChunks(t, index, embeddings, "proj-1", "refund policy details", "shipping times")
	service := NewQueryService(index, embeddings, nil)

	result, err := service.Query(context.Background(), "proj-1", driving.QueryRequest{Query: "refund policy details"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if result.ProjectID != "proj-1" {
		t.Errorf("unexpected project: %q", result.ProjectID)
	}
	if len(result.Matches) == 0 {
		t.Fatal("expected matches")
	}

	// The identical text embeds to the identical vector, so it must rank
	// first with similarity 1.
	top := result.Matches[0]
	if top.Content != "refund policy details" {
		t.Errorf("unexpected top match: %q", top.Content)
	}
	if top.Similarity < 0.999 {
		t.Errorf("expected near-perfect similarity, got %f", top.Similarity)
	}
	for i := 1; i < len(result.Matches); i++ {
		if result.Matches[i].Similarity > result.Matches[i-1].Similarity {
			t.Error("matches not ordered by similarity")
		}
	}
}

func TestQuery_ProjectIsolation(t *testing.T) {
	index := mocks.NewMockChunkIndex()
	embeddings := mocks.NewMockEmbeddingService()
	seedChunks(t, index, embeddings, "proj-other", "refund policy details")
	service := NewQueryService(index, embeddings, nil)

	result, err := service.Query(context.Background(), "proj-1", driving.QueryRequest{Query: "refund policy details"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(result.Matches) != 0 {
		t.Errorf("expected no cross-project matches, got %d", len(result.Matches))
	}
}

func TestQuery_TopKDefaultsAndCap(t *testing.T) {
	index := mocks.NewMockChunkIndex()
	embeddings := mocks.NewMockEmbeddingService()
	contents := make([]string, 30)
	for i := range contents {
		contents[i] = fmt.Sprintf("content number %d", i)
	}
	seedChunks(t, index, embeddings, "proj-1", contents...)
	service := NewQueryService(index, embeddings, nil)

	threshold := -1.0
	result, err := service.Query(context.Background(), "proj-1", driving.QueryRequest{Query: "content", Threshold: &threshold})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(result.Matches) != domain.DefaultTopK {
		t.Errorf("expected default top-k %d, got %d", domain.DefaultTopK, len(result.Matches))
	}

	result, err = service.Query(context.Background(), "proj-1", driving.QueryRequest{Query: "content", TopK: 100, Threshold: &threshold})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(result.Matches) != domain.MaxTopKExternal {
		t.Errorf("expected cap %d, got %d", domain.MaxTopKExternal, len(result.Matches))
	}
}

func TestQuery_Validation(t *testing.T) {
	service := NewQueryService(mocks.NewMockChunkIndex(), mocks.NewMockEmbeddingService(), nil)

	if _, err := service.Query(context.Background(), "proj-1", driving.QueryRequest{Query: "  "}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty query, got %v", err)
	}
	if _, err := service.Query(context.Background(), "", driving.QueryRequest{Query: "q"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty project, got %v", err)
	}

	bad := 1.0
	if _, err := service.Query(context.Background(), "proj-1", driving.QueryRequest{Query: "q", Threshold: &bad}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for threshold 1.0, got %v", err)
	}
}

func TestQuery_EmbeddingFailure(t *testing.T) {
	embeddings := mocks.NewMockEmbeddingService()
	embeddings.FailEmbed = fmt.Errorf("provider down")
	service := NewQueryService(mocks.NewMockChunkIndex(), embeddings, nil)

	if _, err := service.Query(context.Background(), "proj-1", driving.QueryRequest{Query: "q"}); err == nil {
		t.Fatal("expected error when embedding fails")
	}
}

func TestQuery_EmptyResultIsNotError(t *testing.T) {
	service := NewQueryService(mocks.NewMockChunkIndex(), mocks.NewMockEmbeddingService(), nil)

	result, err := service.Query(context.Background(), "proj-1", driving.QueryRequest{Query: "anything"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if result.Matches == nil || len(result.Matches) != 0 {
		t.Errorf("expected empty non-nil matches, got %v", result.Matches)
	}
}
