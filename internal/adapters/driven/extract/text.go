package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Ensure TextExtractor implements the interface.
var _ driven.Extractor = (*TextExtractor)(nil)

// TextExtractor handles raw text sources. The content is carried
// directly in the source config, so extraction never leaves the process.
type TextExtractor struct{}

// NewTextExtractor creates a text extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Type returns the source type this extractor handles.
func (e *TextExtractor) Type() domain.SourceType {
	return domain.SourceTypeText
}

// Extract returns the configured text as a single item.
func (e *TextExtractor) Extract(_ context.Context, source *domain.Source) ([]driven.Item, error) {
	text := strings.TrimSpace(source.Config.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: text source has no content", domain.ErrInvalidInput)
	}

	item := driven.Item{Text: text, Metadata: map[string]string{}}
	if title := strings.TrimSpace(source.Config.Title); title != "" {
		item.Metadata[domain.MetaItemTitle] = title
	}
	return []driven.Item{item}, nil
}
