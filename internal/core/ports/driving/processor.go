package driving

import (
	"context"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
)

// ProcessOptions tweaks a single processing run
type ProcessOptions struct {
	// Retrain deletes existing chunks and reprocesses from scratch even
	// when the source already completed. Non-retrain runs of a completed
	// source are skipped.
	Retrain bool
}

// ProcessorService drives sources through the
// extraction -> chunking -> embedding -> indexing pipeline
type ProcessorService interface {
	// ProcessSource runs the pipeline for one source. Idempotent entry
	// point for create, retrain, and cron flows; a source that is
	// already processing is rejected with domain.ErrAlreadyProcessing.
	ProcessSource(ctx context.Context, sourceID string, opts ProcessOptions) (*domain.ProcessResult, error)

	// ProcessPending sweeps a bounded page of pending sources with
	// independent failure isolation
	ProcessPending(ctx context.Context) (*domain.SweepResult, error)
}

// CreateSourceRequest registers new content for ingestion
type CreateSourceRequest struct {
	ProjectID   string              `json:"project_id"`
	Name        string              `json:"name"`
	Type        domain.SourceType   `json:"type"`
	Config      domain.SourceConfig `json:"config"`
	AutoRetrain bool                `json:"auto_retrain"`
}

// SourceService manages source registration and lifecycle
type SourceService interface {
	// Create registers a source in pending status
	Create(ctx context.Context, req CreateSourceRequest) (*domain.Source, error)

	// Get retrieves a source by ID
	Get(ctx context.Context, id string) (*domain.Source, error)

	// List retrieves all sources for a project
	List(ctx context.Context, projectID string) ([]*domain.Source, error)

	// Delete removes a source and its chunks
	Delete(ctx context.Context, id string) error
}
