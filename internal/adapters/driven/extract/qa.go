package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Ensure QAExtractor implements the interface.
var _ driven.Extractor = (*QAExtractor)(nil)

// QAExtractor handles question/answer sources. Each pair becomes one
// item so a question and its answer always land in the same chunk.
type QAExtractor struct{}

// NewQAExtractor creates a qa extractor.
func NewQAExtractor() *QAExtractor {
	return &QAExtractor{}
}

// Type returns the source type this extractor handles.
func (e *QAExtractor) Type() domain.SourceType {
	return domain.SourceTypeQA
}

// Extract returns one item per configured pair. Pairs with an empty
// question or answer are skipped.
func (e *QAExtractor) Extract(_ context.Context, source *domain.Source) ([]driven.Item, error) {
	if len(source.Config.Pairs) == 0 {
		return nil, fmt.Errorf("%w: qa source has no pairs", domain.ErrInvalidInput)
	}

	items := make([]driven.Item, 0, len(source.Config.Pairs))
	for _, pair := range source.Config.Pairs {
		question := strings.TrimSpace(pair.Question)
		answer := strings.TrimSpace(pair.Answer)
		if question == "" || answer == "" {
			continue
		}
		items = append(items, driven.Item{
			Text:     fmt.Sprintf("Q: %s\nA: %s", question, answer),
			Metadata: map[string]string{domain.MetaItemTitle: question},
		})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: qa source has no usable pairs", domain.ErrInvalidInput)
	}
	return items, nil
}
