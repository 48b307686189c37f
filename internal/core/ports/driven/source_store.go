package driven

import (
	"context"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
)

// SourceStore handles source persistence (PostgreSQL)
type SourceStore interface {
	// Save creates or updates a source
	Save(ctx context.Context, source *domain.Source) error

	// Get retrieves a source by ID
	Get(ctx context.Context, id string) (*domain.Source, error)

	// ListByProject retrieves all sources for a project
	ListByProject(ctx context.Context, projectID string) ([]*domain.Source, error)

	// ListPending retrieves up to limit sources in pending status,
	// oldest first
	ListPending(ctx context.Context, limit int) ([]*domain.Source, error)

	// ListRetrainCandidates retrieves up to limit completed auto-retrain
	// sources of re-crawlable types whose last training is older than the
	// cutoff (or that never trained). Project/plan eligibility is checked
	// by the caller.
	ListRetrainCandidates(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Source, error)

	// ClaimForProcessing atomically transitions a source to processing
	// unless it is already processing, clearing the previous error
	// message. Returns domain.ErrAlreadyProcessing when the claim loses,
	// domain.ErrNotFound when the source does not exist.
	ClaimForProcessing(ctx context.Context, id string) error

	// MarkCompleted records a successful run's counters and, when
	// trainedAt is non-nil, the retrain stamp
	MarkCompleted(ctx context.Context, id string, chunkCount, tokenCount int, trainedAt *time.Time) error

	// MarkFailed records a failed run with its message, zeroing counters
	MarkFailed(ctx context.Context, id string, message string) error

	// ResetToPending requeues a source for processing
	ResetToPending(ctx context.Context, id string) error

	// Delete deletes a source (chunks cascade)
	Delete(ctx context.Context, id string) error
}
