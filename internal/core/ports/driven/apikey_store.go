package driven

import (
	"context"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
)

// APIKeyStore handles API key persistence (PostgreSQL)
type APIKeyStore interface {
	// Save creates or updates an API key record
	Save(ctx context.Context, key *domain.APIKey) error

	// GetByHash retrieves a key by its (hash, prefix) pair. The prefix is
	// an index discriminator; the hash is the actual check.
	GetByHash(ctx context.Context, hash, prefix string) (*domain.APIKey, error)

	// ListByProject retrieves all keys for a project
	ListByProject(ctx context.Context, projectID string) ([]*domain.APIKey, error)

	// TouchLastUsed stamps the key's last-used time
	TouchLastUsed(ctx context.Context, id string, usedAt time.Time) error

	// Revoke deactivates a key
	Revoke(ctx context.Context, id string) error
}
