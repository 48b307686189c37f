package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Ensure DocumentExtractor implements the interface.
var _ driven.Extractor = (*DocumentExtractor)(nil)

// DocumentExtractor handles uploaded document sources. The upload
// pipeline extracts the document text before the source is created, so
// by the time processing runs the content sits in the source config
// like a text source does.
type DocumentExtractor struct{}

// NewDocumentExtractor creates a document extractor.
func NewDocumentExtractor() *DocumentExtractor {
	return &DocumentExtractor{}
}

// Type returns the source type this extractor handles.
func (e *DocumentExtractor) Type() domain.SourceType {
	return domain.SourceTypeDocument
}

// Extract returns the extracted document text as a single item.
func (e *DocumentExtractor) Extract(_ context.Context, source *domain.Source) ([]driven.Item, error) {
	text := strings.TrimSpace(source.Config.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: document source has no extracted text", domain.ErrInvalidInput)
	}

	item := driven.Item{Text: text, Metadata: map[string]string{}}
	if title := strings.TrimSpace(source.Config.Title); title != "" {
		item.Metadata[domain.MetaItemTitle] = title
	}
	return []driven.Item{item}, nil
}
