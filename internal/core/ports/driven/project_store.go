package driven

import (
	"context"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
)

// ProjectStore supplies the tenant/plan state the core reads. Project and
// organization lifecycle is owned by an external collaborator.
type ProjectStore interface {
	// GetProject retrieves a project by ID
	GetProject(ctx context.Context, id string) (*domain.Project, error)

	// GetOrganization retrieves an organization by ID
	GetOrganization(ctx context.Context, id string) (*domain.Organization, error)
}
