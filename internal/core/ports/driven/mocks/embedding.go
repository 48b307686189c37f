package mocks

import (
	"context"
	"sync"

	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Ensure MockEmbeddingService implements EmbeddingService
var _ driven.EmbeddingService = (*MockEmbeddingService)(nil)

// MockEmbeddingService is a mock implementation of EmbeddingService for
// testing. It produces deterministic vectors derived from the text so
// identical texts get identical embeddings.
type MockEmbeddingService struct {
	mu         sync.Mutex
	dimensions int

	// FailEmbed forces the next Embed/EmbedQuery call to return this error
	FailEmbed error

	// EmbedCalls records the batches passed to Embed
	EmbedCalls [][]string
}

// NewMockEmbeddingService creates a mock with a small vector dimension
func NewMockEmbeddingService() *MockEmbeddingService {
	return &MockEmbeddingService{dimensions: 8}
}

func (m *MockEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailEmbed != nil {
		return nil, m.FailEmbed
	}
	m.EmbedCalls = append(m.EmbedCalls, texts)
	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = m.vectorFor(text)
	}
	return result, nil
}

func (m *MockEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailEmbed != nil {
		return nil, m.FailEmbed
	}
	return m.vectorFor(query), nil
}

// vectorFor folds the text bytes into a fixed-size vector
func (m *MockEmbeddingService) vectorFor(text string) []float32 {
	v := make([]float32, m.dimensions)
	for i, b := range []byte(text) {
		v[i%m.dimensions] += float32(b) / 255.0
	}
	return v
}

func (m *MockEmbeddingService) Dimensions() int {
	return m.dimensions
}

func (m *MockEmbeddingService) Model() string {
	return "mock-embedding-001"
}

func (m *MockEmbeddingService) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *MockEmbeddingService) Close() error {
	return nil
}
