package driving

import (
	"context"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
)

// AdminAuthService gates the management API behind short-lived session
// tokens issued against a configured admin password
type AdminAuthService interface {
	// Login checks the password and issues a session token
	Login(ctx context.Context, password string) (*domain.AdminLoginResponse, error)

	// Verify validates a session token and returns its claims
	Verify(token string) (*domain.TokenClaims, error)
}
