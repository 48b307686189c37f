package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven/mocks"
)

func TestAdminLogin(t *testing.T) {
	auth := mocks.NewMockAuthAdapter()
	hash, err := auth.HashPassword("hunter2-but-longer")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	service := NewAdminAuthService(auth, hash, time.Hour, nil)

	resp, err := service.Login(context.Background(), "hunter2-but-longer")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
	if !resp.ExpiresAt.After(time.Now()) {
		t.Error("expected future expiry")
	}

	claims, err := service.Verify(resp.Token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != "admin" {
		t.Errorf("unexpected subject: %q", claims.Subject)
	}
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	auth := mocks.NewMockAuthAdapter()
	hash, _ := auth.HashPassword("correct")
	service := NewAdminAuthService(auth, hash, time.Hour, nil)

	if _, err := service.Login(context.Background(), "wrong"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAdminLogin_NotConfigured(t *testing.T) {
	service := NewAdminAuthService(mocks.NewMockAuthAdapter(), "", time.Hour, nil)

	if _, err := service.Login(context.Background(), "anything"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}
