package driving

import (
	"context"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
)

// GenerateKeyRequest mints a new API key for a project
type GenerateKeyRequest struct {
	ProjectID string     `json:"project_id"`
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// GenerateKeyResponse carries the plaintext key exactly once; only the
// hash is stored
type GenerateKeyResponse struct {
	Key      *domain.APIKey `json:"key"`
	Plaintext string        `json:"plaintext"`
}

// APIKeyService authenticates requests and manages key lifecycle
type APIKeyService interface {
	// Authenticate resolves a bearer credential to the project it
	// belongs to. Invalid, revoked, and expired keys all surface as
	// domain.ErrKeyInvalid or domain.ErrKeyExpired.
	Authenticate(ctx context.Context, credential string) (*domain.AuthenticatedProject, error)

	// Generate mints a key; the plaintext is only returned here
	Generate(ctx context.Context, req GenerateKeyRequest) (*GenerateKeyResponse, error)

	// List returns a project's keys without hashes
	List(ctx context.Context, projectID string) ([]*domain.APIKey, error)

	// Revoke deactivates a key
	Revoke(ctx context.Context, keyID string) error
}
