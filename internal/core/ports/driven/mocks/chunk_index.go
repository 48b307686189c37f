package mocks

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Ensure MockChunkIndex implements ChunkIndex
var _ driven.ChunkIndex = (*MockChunkIndex)(nil)

// MockChunkIndex is an in-memory ChunkIndex for testing. Query computes
// real cosine similarity so ranking tests exercise the same ordering
// contract as the pgvector adapter.
type MockChunkIndex struct {
	mu     sync.RWMutex
	chunks map[string]*domain.Chunk

	// FailSaveBatch forces SaveBatch to return this error when set
	FailSaveBatch error
}

// NewMockChunkIndex creates a new MockChunkIndex
func NewMockChunkIndex() *MockChunkIndex {
	return &MockChunkIndex{
		chunks: make(map[string]*domain.Chunk),
	}
}

func (m *MockChunkIndex) SaveBatch(ctx context.Context, chunks []*domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaveBatch != nil {
		return m.FailSaveBatch
	}
	for _, chunk := range chunks {
		cp := *chunk
		m.chunks[chunk.ID] = &cp
	}
	return nil
}

func (m *MockChunkIndex) Query(ctx context.Context, projectID string, vector []float32, threshold float64, topK int) ([]*domain.QueryMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []*domain.QueryMatch
	for _, chunk := range m.chunks {
		if chunk.ProjectID != projectID {
			continue
		}
		sim := cosineSimilarity(vector, chunk.Embedding)
		if sim <= threshold {
			continue
		}
		matches = append(matches, &domain.QueryMatch{
			ChunkID:    chunk.ID,
			SourceID:   chunk.SourceID,
			Content:    chunk.Content,
			Metadata:   chunk.Metadata,
			Similarity: sim,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ChunkID < matches[j].ChunkID
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *MockChunkIndex) DeleteBySource(ctx context.Context, sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, chunk := range m.chunks {
		if chunk.SourceID == sourceID {
			delete(m.chunks, id)
		}
	}
	return nil
}

func (m *MockChunkIndex) CountBySource(ctx context.Context, sourceID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, chunk := range m.chunks {
		if chunk.SourceID == sourceID {
			count++
		}
	}
	return count, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Helper methods for testing

func (m *MockChunkIndex) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = make(map[string]*domain.Chunk)
}

func (m *MockChunkIndex) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

func (m *MockChunkIndex) All() []*domain.Chunk {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Chunk
	for _, chunk := range m.chunks {
		cp := *chunk
		result = append(result, &cp)
	}
	return result
}
