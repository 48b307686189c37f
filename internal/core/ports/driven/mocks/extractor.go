package mocks

import (
	"context"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Ensure mock types implement their interfaces
var (
	_ driven.Extractor         = (*MockExtractor)(nil)
	_ driven.ExtractorRegistry = (*MockExtractorRegistry)(nil)
)

// MockExtractor is a configurable Extractor for testing
type MockExtractor struct {
	SourceType domain.SourceType

	// Items is returned from Extract when Err is nil
	Items []driven.Item

	// Err forces Extract to fail
	Err error

	// ExtractCount tracks how many times Extract was invoked
	ExtractCount int
}

// NewMockExtractor creates an extractor for the given type returning items
func NewMockExtractor(sourceType domain.SourceType, items ...driven.Item) *MockExtractor {
	return &MockExtractor{SourceType: sourceType, Items: items}
}

func (m *MockExtractor) Type() domain.SourceType {
	return m.SourceType
}

func (m *MockExtractor) Extract(ctx context.Context, source *domain.Source) ([]driven.Item, error) {
	m.ExtractCount++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Items, nil
}

// MockExtractorRegistry resolves extractors from a static map
type MockExtractorRegistry struct {
	extractors map[domain.SourceType]driven.Extractor
}

// NewMockExtractorRegistry creates a registry holding the given extractors
func NewMockExtractorRegistry(extractors ...driven.Extractor) *MockExtractorRegistry {
	r := &MockExtractorRegistry{
		extractors: make(map[domain.SourceType]driven.Extractor),
	}
	for _, e := range extractors {
		r.extractors[e.Type()] = e
	}
	return r
}

// Register adds an extractor after construction
func (r *MockExtractorRegistry) Register(e driven.Extractor) {
	r.extractors[e.Type()] = e
}

func (r *MockExtractorRegistry) Get(sourceType domain.SourceType) driven.Extractor {
	return r.extractors[sourceType]
}
