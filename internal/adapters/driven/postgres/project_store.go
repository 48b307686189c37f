package postgres

import (
	"context"
	"database/sql"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ProjectStore = (*ProjectStore)(nil)

// ProjectStore implements driven.ProjectStore using PostgreSQL. Projects
// and organizations are written by an external collaborator; this store
// only reads them.
type ProjectStore struct {
	db *DB
}

// NewProjectStore creates a new ProjectStore
func NewProjectStore(db *DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// GetProject retrieves a project by ID
func (s *ProjectStore) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	var project domain.Project
	err := s.db.QueryRowContext(ctx, `
		SELECT id, organization_id, name, active, created_at
		FROM projects
		WHERE id = $1
	`, id).Scan(
		&project.ID,
		&project.OrganizationID,
		&project.Name,
		&project.Active,
		&project.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetOrganization retrieves an organization by ID
func (s *ProjectStore) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	var org domain.Organization
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, plan, subscription_active
		FROM organizations
		WHERE id = $1
	`, id).Scan(
		&org.ID,
		&org.Name,
		&org.Plan,
		&org.SubscriptionActive,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}
