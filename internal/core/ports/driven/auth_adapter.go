package driven

import "github.com/docbase-labs/docbase-core/internal/core/domain"

// AuthAdapter handles management-API token and password operations
type AuthAdapter interface {
	// VerifyPassword checks a password against a bcrypt hash
	VerifyPassword(password, hash string) bool

	// HashPassword generates a bcrypt hash from a plaintext password
	HashPassword(password string) (string, error)

	// GenerateToken creates a signed JWT from domain claims
	GenerateToken(claims *domain.TokenClaims) (string, error)

	// ParseToken validates a JWT and extracts domain claims
	ParseToken(tokenString string) (*domain.TokenClaims, error)
}
