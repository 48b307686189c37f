// Package extract implements content extractors for each source type.
// An extractor turns a source's configuration into a flat list of
// retrievable items; the processor chunks and embeds whatever comes out.
package extract

import (
	"sync"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps source types to their extractors.
type Registry struct {
	mu         sync.RWMutex
	extractors map[domain.SourceType]driven.Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[domain.SourceType]driven.Extractor),
	}
}

// Register registers an extractor under its own source type.
func (r *Registry) Register(extractor driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[extractor.Type()] = extractor
}

// Get returns the extractor for a source type, or nil if none is registered.
func (r *Registry) Get(sourceType domain.SourceType) driven.Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.extractors[sourceType]
}

// SupportedTypes returns all registered source types.
func (r *Registry) SupportedTypes() []domain.SourceType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]domain.SourceType, 0, len(r.extractors))
	for t := range r.extractors {
		types = append(types, t)
	}
	return types
}
