package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driving"
)

// Ensure apiKeyService implements APIKeyService
var _ driving.APIKeyService = (*apiKeyService)(nil)

// apiKeyService authenticates public requests and manages key lifecycle.
type apiKeyService struct {
	keys     driven.APIKeyStore
	projects driven.ProjectStore
	logger   *slog.Logger
}

// NewAPIKeyService creates an APIKeyService.
func NewAPIKeyService(
	keys driven.APIKeyStore,
	projects driven.ProjectStore,
	logger *slog.Logger,
) driving.APIKeyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &apiKeyService{
		keys:     keys,
		projects: projects,
		logger:   logger,
	}
}

// Authenticate resolves a "Bearer <key>" credential to its project
// scope. Headers not shaped that way are rejected before any lookup,
// so garbage credentials never reach the store.
func (s *apiKeyService) Authenticate(ctx context.Context, credential string) (*domain.AuthenticatedProject, error) {
	parts := strings.SplitN(strings.TrimSpace(credential), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, domain.ErrKeyInvalid
	}
	plaintext := strings.TrimSpace(parts[1])
	if len(plaintext) < domain.MinAPIKeyLen {
		return nil, domain.ErrKeyInvalid
	}

	hash := domain.HashAPIKey(plaintext)
	prefix := plaintext[:domain.APIKeyPrefixLen]

	key, err := s.keys.GetByHash(ctx, hash, prefix)
	if err != nil {
		return nil, domain.ErrKeyInvalid
	}
	if !key.Active {
		return nil, domain.ErrKeyInvalid
	}
	if key.IsExpired() {
		return nil, domain.ErrKeyExpired
	}

	project, err := s.projects.GetProject(ctx, key.ProjectID)
	if err != nil {
		return nil, domain.ErrKeyInvalid
	}
	if !project.Active {
		return nil, domain.ErrProjectInactive
	}

	// Best effort; an authentication must not fail on the stamp.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.keys.TouchLastUsed(ctx, key.ID, time.Now()); err != nil {
			s.logger.Warn("failed to stamp key usage", "key_id", key.ID, "error", err)
		}
	}()

	return &domain.AuthenticatedProject{
		ProjectID:      key.ProjectID,
		OrganizationID: key.OrganizationID,
		KeyID:          key.ID,
	}, nil
}

// Generate mints a new key for a project. The plaintext appears only in
// the response.
func (s *apiKeyService) Generate(ctx context.Context, req driving.GenerateKeyRequest) (*driving.GenerateKeyResponse, error) {
	if req.ProjectID == "" {
		return nil, fmt.Errorf("%w: project id required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: expiry must be in the future", domain.ErrInvalidInput)
	}

	project, err := s.projects.GetProject(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	generated, err := domain.GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("generate key material: %w", err)
	}

	key := &domain.APIKey{
		ID:             domain.GenerateID(),
		ProjectID:      project.ID,
		OrganizationID: project.OrganizationID,
		Name:           strings.TrimSpace(req.Name),
		KeyHash:        generated.Hash,
		KeyPrefix:      generated.Prefix,
		Active:         true,
		ExpiresAt:      req.ExpiresAt,
		CreatedAt:      time.Now(),
	}
	if err := s.keys.Save(ctx, key); err != nil {
		return nil, fmt.Errorf("save key: %w", err)
	}

	s.logger.Info("api key generated", "key_id", key.ID, "project_id", key.ProjectID)
	return &driving.GenerateKeyResponse{Key: key, Plaintext: generated.Plaintext}, nil
}

// List returns a project's keys.
func (s *apiKeyService) List(ctx context.Context, projectID string) ([]*domain.APIKey, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: project id required", domain.ErrInvalidInput)
	}
	return s.keys.ListByProject(ctx, projectID)
}

// Revoke deactivates a key.
func (s *apiKeyService) Revoke(ctx context.Context, keyID string) error {
	if keyID == "" {
		return fmt.Errorf("%w: key id required", domain.ErrInvalidInput)
	}
	if err := s.keys.Revoke(ctx, keyID); err != nil {
		return err
	}
	s.logger.Info("api key revoked", "key_id", keyID)
	return nil
}
