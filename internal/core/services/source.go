package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driving"
)

// Ensure sourceService implements SourceService
var _ driving.SourceService = (*sourceService)(nil)

// sourceService manages source registration. Processing itself happens
// in the worker: Create persists the source as pending and enqueues a
// durable task for it.
type sourceService struct {
	sources    driven.SourceStore
	chunkIndex driven.ChunkIndex
	projects   driven.ProjectStore
	taskQueue  driven.TaskQueue
	logger     *slog.Logger
}

// NewSourceService creates a SourceService.
func NewSourceService(
	sources driven.SourceStore,
	chunkIndex driven.ChunkIndex,
	projects driven.ProjectStore,
	taskQueue driven.TaskQueue,
	logger *slog.Logger,
) driving.SourceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &sourceService{
		sources:    sources,
		chunkIndex: chunkIndex,
		projects:   projects,
		taskQueue:  taskQueue,
		logger:     logger,
	}
}

// Create registers a source in pending status and enqueues processing.
func (s *sourceService) Create(ctx context.Context, req driving.CreateSourceRequest) (*domain.Source, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	project, err := s.projects.GetProject(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if !project.Active {
		return nil, domain.ErrProjectInactive
	}

	source := domain.NewSource(req.ProjectID, strings.TrimSpace(req.Name), req.Type, req.Config)
	source.AutoRetrain = req.AutoRetrain && req.Type.SupportsRetrain()

	if err := s.sources.Save(ctx, source); err != nil {
		return nil, fmt.Errorf("save source: %w", err)
	}

	task := domain.NewProcessSourceTask(source.ProjectID, source.ID)
	if err := s.taskQueue.Enqueue(ctx, task); err != nil {
		// The source stays pending; the sweep picks it up later.
		s.logger.Error("failed to enqueue processing task",
			"source_id", source.ID,
			"error", err,
		)
	}

	s.logger.Info("source created",
		"source_id", source.ID,
		"project_id", source.ProjectID,
		"type", source.Type,
	)
	return source, nil
}

// Get retrieves a source by ID.
func (s *sourceService) Get(ctx context.Context, id string) (*domain.Source, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: source id required", domain.ErrInvalidInput)
	}
	return s.sources.Get(ctx, id)
}

// List retrieves all sources for a project.
func (s *sourceService) List(ctx context.Context, projectID string) ([]*domain.Source, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: project id required", domain.ErrInvalidInput)
	}
	return s.sources.ListByProject(ctx, projectID)
}

// Delete removes a source and its chunks.
func (s *sourceService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: source id required", domain.ErrInvalidInput)
	}

	// The chunk rows cascade with the source, but deleting them first
	// keeps the index consistent if the source delete fails midway.
	if err := s.chunkIndex.DeleteBySource(ctx, id); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := s.sources.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}

	s.logger.Info("source deleted", "source_id", id)
	return nil
}

func validateCreateRequest(req driving.CreateSourceRequest) error {
	if req.ProjectID == "" {
		return fmt.Errorf("%w: project id required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	}
	if !domain.ValidSourceType(req.Type) {
		return fmt.Errorf("%w: unknown source type %q", domain.ErrInvalidInput, req.Type)
	}

	switch req.Type {
	case domain.SourceTypeText, domain.SourceTypeDocument:
		if strings.TrimSpace(req.Config.Text) == "" {
			return fmt.Errorf("%w: text content required", domain.ErrInvalidInput)
		}
	case domain.SourceTypeQA:
		if len(req.Config.Pairs) == 0 {
			return fmt.Errorf("%w: at least one qa pair required", domain.ErrInvalidInput)
		}
	case domain.SourceTypeWebsite:
		if len(req.Config.URLs) == 0 {
			return fmt.Errorf("%w: at least one url required", domain.ErrInvalidInput)
		}
	case domain.SourceTypeNotion:
		if len(req.Config.PageIDs) == 0 {
			return fmt.Errorf("%w: at least one page id required", domain.ErrInvalidInput)
		}
		if req.Config.CredentialID == "" {
			return fmt.Errorf("%w: credential id required", domain.ErrInvalidInput)
		}
	}
	return nil
}
