package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.APIKeyStore = (*APIKeyStore)(nil)

// APIKeyStore implements driven.APIKeyStore using PostgreSQL
type APIKeyStore struct {
	db *DB
}

// NewAPIKeyStore creates a new APIKeyStore
func NewAPIKeyStore(db *DB) *APIKeyStore {
	return &APIKeyStore{db: db}
}

// Save creates or updates an API key record
func (s *APIKeyStore) Save(ctx context.Context, key *domain.APIKey) error {
	query := `
		INSERT INTO api_keys (id, project_id, organization_id, name, key_hash, key_prefix,
		                      active, expires_at, last_used_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			active = EXCLUDED.active,
			expires_at = EXCLUDED.expires_at
	`

	_, err := s.db.ExecContext(ctx, query,
		key.ID,
		key.ProjectID,
		key.OrganizationID,
		key.Name,
		key.KeyHash,
		key.KeyPrefix,
		key.Active,
		NullTime(key.ExpiresAt),
		NullTime(key.LastUsedAt),
		key.CreatedAt,
	)
	return err
}

// GetByHash retrieves a key by its (hash, prefix) pair
func (s *APIKeyStore) GetByHash(ctx context.Context, hash, prefix string) (*domain.APIKey, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, organization_id, name, key_hash, key_prefix,
		       active, expires_at, last_used_at, created_at
		FROM api_keys
		WHERE key_prefix = $1 AND key_hash = $2
	`, prefix, hash)
	return scanAPIKey(row)
}

// ListByProject retrieves all keys for a project
func (s *APIKeyStore) ListByProject(ctx context.Context, projectID string) ([]*domain.APIKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, organization_id, name, key_hash, key_prefix,
		       active, expires_at, last_used_at, created_at
		FROM api_keys
		WHERE project_id = $1
		ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*domain.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// TouchLastUsed stamps the key's last-used time
func (s *APIKeyStore) TouchLastUsed(ctx context.Context, id string, usedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used_at = $2 WHERE id = $1`, id, usedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Revoke deactivates a key
func (s *APIKeyStore) Revoke(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE api_keys SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanAPIKey(row rowScanner) (*domain.APIKey, error) {
	var key domain.APIKey
	var expiresAt, lastUsedAt sql.NullTime

	err := row.Scan(
		&key.ID,
		&key.ProjectID,
		&key.OrganizationID,
		&key.Name,
		&key.KeyHash,
		&key.KeyPrefix,
		&key.Active,
		&expiresAt,
		&lastUsedAt,
		&key.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	key.ExpiresAt = TimePtr(expiresAt)
	key.LastUsedAt = TimePtr(lastUsedAt)
	return &key, nil
}
