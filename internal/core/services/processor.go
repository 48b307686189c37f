package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/docbase-labs/docbase-core/internal/chunker"
	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driving"
)

// Ensure processorService implements ProcessorService
var _ driving.ProcessorService = (*processorService)(nil)

// sweepPageSize bounds how many pending sources one sweep picks up.
const sweepPageSize = 10

// processorService drives sources through extraction, chunking,
// embedding, and indexing. The status claim on the source store is the
// only concurrency guard: whoever wins the claim owns the run end to end.
type processorService struct {
	sources    driven.SourceStore
	chunkIndex driven.ChunkIndex
	embeddings driven.EmbeddingService
	extractors driven.ExtractorRegistry
	chunker    *chunker.Chunker
	logger     *slog.Logger
}

// NewProcessorService creates a ProcessorService.
func NewProcessorService(
	sources driven.SourceStore,
	chunkIndex driven.ChunkIndex,
	embeddings driven.EmbeddingService,
	extractors driven.ExtractorRegistry,
	splitter *chunker.Chunker,
	logger *slog.Logger,
) driving.ProcessorService {
	if splitter == nil {
		splitter = chunker.New(chunker.DefaultConfig())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &processorService{
		sources:    sources,
		chunkIndex: chunkIndex,
		embeddings: embeddings,
		extractors: extractors,
		chunker:    splitter,
		logger:     logger,
	}
}

// ProcessSource runs the pipeline for one source.
func (s *processorService) ProcessSource(ctx context.Context, sourceID string, opts driving.ProcessOptions) (*domain.ProcessResult, error) {
	start := time.Now()
	logger := s.logger.With("source_id", sourceID)

	source, err := s.sources.Get(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}

	// A completed source only reprocesses on an explicit retrain.
	if source.Status == domain.SourceStatusCompleted && !opts.Retrain {
		logger.Info("source already completed, skipping")
		return &domain.ProcessResult{
			SourceID:      sourceID,
			Success:       true,
			ChunksCreated: source.ChunkCount,
			TotalTokens:   source.TokenCount,
			Duration:      time.Since(start).Seconds(),
		}, nil
	}

	if err := s.sources.ClaimForProcessing(ctx, sourceID); err != nil {
		return nil, fmt.Errorf("claim source: %w", err)
	}

	chunkCount, tokenCount, err := s.run(ctx, source)
	if err != nil {
		logger.Error("processing failed", "error", err)
		if markErr := s.sources.MarkFailed(ctx, sourceID, err.Error()); markErr != nil {
			logger.Error("failed to mark source failed", "error", markErr)
		}
		return &domain.ProcessResult{
			SourceID: sourceID,
			Success:  false,
			Error:    err.Error(),
			Duration: time.Since(start).Seconds(),
		}, nil
	}

	var trainedAt *time.Time
	if source.AutoRetrain && source.Type.SupportsRetrain() {
		now := time.Now()
		trainedAt = &now
	}
	if err := s.sources.MarkCompleted(ctx, sourceID, chunkCount, tokenCount, trainedAt); err != nil {
		return nil, fmt.Errorf("mark completed: %w", err)
	}

	logger.Info("processing completed",
		"chunks", chunkCount,
		"tokens", tokenCount,
		"duration", time.Since(start),
	)

	return &domain.ProcessResult{
		SourceID:      sourceID,
		Success:       true,
		ChunksCreated: chunkCount,
		TotalTokens:   tokenCount,
		Duration:      time.Since(start).Seconds(),
	}, nil
}

// run executes the pipeline for a claimed source and returns the chunk
// and token counts. Any error fails the run; the caller records it.
func (s *processorService) run(ctx context.Context, source *domain.Source) (int, int, error) {
	extractor := s.extractors.Get(source.Type)
	if extractor == nil {
		return 0, 0, fmt.Errorf("%w: %s", domain.ErrExtractorNotFound, source.Type)
	}

	// Reprocessing replaces the source's chunks wholesale.
	if err := s.chunkIndex.DeleteBySource(ctx, source.ID); err != nil {
		return 0, 0, fmt.Errorf("delete existing chunks: %w", err)
	}

	items, err := extractor.Extract(ctx, source)
	if err != nil {
		return 0, 0, fmt.Errorf("extract: %w", err)
	}

	chunks := s.buildChunks(source, items)
	if len(chunks) == 0 {
		return 0, 0, domain.ErrNoChunks
	}

	contents := make([]string, len(chunks))
	for i, chunk := range chunks {
		contents[i] = chunk.Content
	}
	vectors, err := s.embeddings.Embed(ctx, contents)
	if err != nil {
		return 0, 0, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, 0, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(chunks))
	}
	for i, chunk := range chunks {
		chunk.Embedding = vectors[i]
	}

	if err := s.chunkIndex.SaveBatch(ctx, chunks); err != nil {
		return 0, 0, fmt.Errorf("save chunks: %w", err)
	}

	tokenCount := 0
	for _, chunk := range chunks {
		tokenCount += chunk.TokenCount
	}
	return len(chunks), tokenCount, nil
}

// buildChunks splits every extracted item and stamps the chunks with
// metadata. The project ID always comes from the owning source.
func (s *processorService) buildChunks(source *domain.Source, items []driven.Item) []*domain.Chunk {
	var chunks []*domain.Chunk
	index := 0
	for _, item := range items {
		for _, piece := range s.chunker.Split(item.Text) {
			metadata := map[string]string{
				domain.MetaItemIndex: fmt.Sprintf("%d", index),
				domain.MetaStartChar: fmt.Sprintf("%d", piece.StartChar),
				domain.MetaEndChar:   fmt.Sprintf("%d", piece.EndChar),
			}
			for k, v := range item.Metadata {
				metadata[k] = v
			}
			chunks = append(chunks, &domain.Chunk{
				ID:             domain.GenerateID(),
				SourceID:       source.ID,
				ProjectID:      source.ProjectID,
				Content:        piece.Content,
				Metadata:       metadata,
				TokenCount:     chunker.EstimateTokens(piece.Content),
				EmbeddingModel: s.embeddings.Model(),
				CreatedAt:      time.Now(),
			})
			index++
		}
	}
	return chunks
}

// ProcessPending sweeps a page of pending sources concurrently. Each
// source's outcome is independent: the claim guard resolves overlap with
// other workers, and one failure never aborts the sweep.
func (s *processorService) ProcessPending(ctx context.Context) (*domain.SweepResult, error) {
	pending, err := s.sources.ListPending(ctx, sweepPageSize)
	if err != nil {
		return nil, fmt.Errorf("list pending sources: %w", err)
	}

	result := &domain.SweepResult{
		Total:   len(pending),
		Details: make([]*domain.ProcessResult, len(pending)),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for i, source := range pending {
		wg.Add(1)
		go func(i int, sourceID string) {
			defer wg.Done()
			res, err := s.ProcessSource(ctx, sourceID, driving.ProcessOptions{})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				if errors.Is(err, domain.ErrAlreadyProcessing) {
					result.Skipped++
				} else {
					result.Failed++
				}
				result.Details[i] = &domain.ProcessResult{SourceID: sourceID, Error: err.Error()}
			case res.Success:
				result.Success++
				result.Details[i] = res
			default:
				result.Failed++
				result.Details[i] = res
			}
		}(i, source.ID)
	}
	wg.Wait()

	return result, nil
}
