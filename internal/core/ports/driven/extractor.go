package driven

import (
	"context"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
)

// Item is one extracted unit of content: a page, a Q&A pair, or a whole
// text body, with metadata the processor carries onto the chunks cut
// from it.
type Item struct {
	Text     string
	Metadata map[string]string
}

// Extractor loads a source type's raw content. A collaborator error is
// surfaced as a processing failure with the message attached. Extractors
// for multi-item types (website, notion) may return partial results when
// some items fail, as long as at least one item succeeded.
type Extractor interface {
	// Type is the source type this extractor handles
	Type() domain.SourceType

	// Extract loads the source's content as retrievable items
	Extract(ctx context.Context, source *domain.Source) ([]Item, error)
}

// ExtractorRegistry resolves extractors by source type
type ExtractorRegistry interface {
	// Get returns the extractor for a source type, or nil if none is
	// registered
	Get(sourceType domain.SourceType) Extractor
}
