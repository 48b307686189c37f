package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driving"
)

// Ensure adminAuthService implements AdminAuthService
var _ driving.AdminAuthService = (*adminAuthService)(nil)

// adminAuthService issues and verifies management session tokens. The
// deployment carries a single bcrypt-hashed admin password; there is no
// user table on this surface.
type adminAuthService struct {
	auth         driven.AuthAdapter
	passwordHash string
	tokenTTL     time.Duration
	logger       *slog.Logger
}

// NewAdminAuthService creates an AdminAuthService checking against the
// given bcrypt password hash.
func NewAdminAuthService(auth driven.AuthAdapter, passwordHash string, tokenTTL time.Duration, logger *slog.Logger) driving.AdminAuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &adminAuthService{
		auth:         auth,
		passwordHash: passwordHash,
		tokenTTL:     tokenTTL,
		logger:       logger,
	}
}

// Login checks the password and issues a session token.
func (s *adminAuthService) Login(_ context.Context, password string) (*domain.AdminLoginResponse, error) {
	if s.passwordHash == "" {
		return nil, fmt.Errorf("%w: admin access not configured", domain.ErrUnauthorized)
	}
	if !s.auth.VerifyPassword(password, s.passwordHash) {
		s.logger.Warn("admin login rejected")
		return nil, domain.ErrUnauthorized
	}

	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)
	token, err := s.auth.GenerateToken(&domain.TokenClaims{
		Subject:   "admin",
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.Info("admin session issued", "expires_at", expiresAt)
	return &domain.AdminLoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// Verify validates a session token.
func (s *adminAuthService) Verify(token string) (*domain.TokenClaims, error) {
	return s.auth.ParseToken(token)
}
