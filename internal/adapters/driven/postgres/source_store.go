package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SourceStore = (*SourceStore)(nil)

// SourceStore implements driven.SourceStore using PostgreSQL
type SourceStore struct {
	db *DB
}

// NewSourceStore creates a new SourceStore
func NewSourceStore(db *DB) *SourceStore {
	return &SourceStore{db: db}
}

const sourceColumns = `id, project_id, name, type, status, config, chunk_count, token_count,
       error_message, auto_retrain, last_trained_at, created_at, updated_at`

// Save creates or updates a source
func (s *SourceStore) Save(ctx context.Context, source *domain.Source) error {
	configJSON, err := json.Marshal(source.Config)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sources (id, project_id, name, type, status, config, chunk_count, token_count,
		                     error_message, auto_retrain, last_trained_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			config = EXCLUDED.config,
			auto_retrain = EXCLUDED.auto_retrain,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		source.ID,
		source.ProjectID,
		source.Name,
		string(source.Type),
		string(source.Status),
		configJSON,
		source.ChunkCount,
		source.TokenCount,
		NullString(nullableString(source.ErrorMessage)),
		source.AutoRetrain,
		NullTime(source.LastTrainedAt),
		source.CreatedAt,
		source.UpdatedAt,
	)
	return err
}

// Get retrieves a source by ID
func (s *SourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sourceColumns+`
		FROM sources
		WHERE id = $1
	`, id)
	return scanSource(row)
}

// ListByProject retrieves all sources for a project
func (s *SourceStore) ListByProject(ctx context.Context, projectID string) ([]*domain.Source, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sourceColumns+`
		FROM sources
		WHERE project_id = $1
		ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSources(rows)
}

// ListPending retrieves up to limit pending sources, oldest first
func (s *SourceStore) ListPending(ctx context.Context, limit int) ([]*domain.Source, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sourceColumns+`
		FROM sources
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSources(rows)
}

// ListRetrainCandidates retrieves completed auto-retrain sources whose last
// training is older than the cutoff or absent
func (s *SourceStore) ListRetrainCandidates(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Source, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sourceColumns+`
		FROM sources
		WHERE auto_retrain = TRUE
		  AND status = 'completed'
		  AND type IN ('website', 'notion')
		  AND (last_trained_at IS NULL OR last_trained_at <= $1)
		ORDER BY last_trained_at ASC NULLS FIRST
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSources(rows)
}

// ClaimForProcessing atomically transitions a source to processing unless
// another run holds it. The status guard is the claim: losing the race
// touches zero rows.
func (s *SourceStore) ClaimForProcessing(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sources
		SET status = 'processing', error_message = NULL, updated_at = NOW()
		WHERE id = $1 AND status <> 'processing'
	`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either missing or already claimed; distinguish for the caller
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM sources WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrAlreadyProcessing
	}
	return nil
}

// MarkCompleted records a successful run's counters
func (s *SourceStore) MarkCompleted(ctx context.Context, id string, chunkCount, tokenCount int, trainedAt *time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sources
		SET status = 'completed',
		    chunk_count = $2,
		    token_count = $3,
		    error_message = NULL,
		    last_trained_at = COALESCE($4, last_trained_at),
		    updated_at = NOW()
		WHERE id = $1
	`, id, chunkCount, tokenCount, NullTime(trainedAt))
	if err != nil {
		return err
	}
	return requireRow(res)
}

// MarkFailed records a failed run with its message, zeroing counters
func (s *SourceStore) MarkFailed(ctx context.Context, id string, message string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sources
		SET status = 'failed',
		    error_message = $2,
		    chunk_count = 0,
		    token_count = 0,
		    updated_at = NOW()
		WHERE id = $1
	`, id, message)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ResetToPending requeues a source for processing
func (s *SourceStore) ResetToPending(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sources
		SET status = 'pending', error_message = NULL, updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete deletes a source; its chunks cascade
func (s *SourceStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSource(row rowScanner) (*domain.Source, error) {
	var source domain.Source
	var configJSON []byte
	var errorMessage sql.NullString
	var lastTrainedAt sql.NullTime

	err := row.Scan(
		&source.ID,
		&source.ProjectID,
		&source.Name,
		&source.Type,
		&source.Status,
		&configJSON,
		&source.ChunkCount,
		&source.TokenCount,
		&errorMessage,
		&source.AutoRetrain,
		&lastTrainedAt,
		&source.CreatedAt,
		&source.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(configJSON, &source.Config); err != nil {
		return nil, err
	}
	source.ErrorMessage = errorMessage.String
	source.LastTrainedAt = TimePtr(lastTrainedAt)

	return &source, nil
}

func scanSources(rows *sql.Rows) ([]*domain.Source, error) {
	var sources []*domain.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}
