package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven/mocks"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driving"
)

type apiKeyFixture struct {
	keys     *mocks.MockAPIKeyStore
	projects *mocks.MockProjectStore
	service  driving.APIKeyService
}

func newAPIKeyFixture(t *testing.T) *apiKeyFixture {
	t.Helper()
	f := &apiKeyFixture{
		keys:     mocks.NewMockAPIKeyStore(),
		projects: mocks.NewMockProjectStore(),
	}
	f.projects.AddProject(&domain.Project{ID: "proj-1", OrganizationID: "org-1", Active: true})
	f.projects.AddProject(&domain.Project{ID: "proj-frozen", OrganizationID: "org-1", Active: false})
	f.service = NewAPIKeyService(f.keys, f.projects, nil)
	return f
}

func (f *apiKeyFixture) generate(t *testing.T, projectID string) *driving.GenerateKeyResponse {
	t.Helper()
	resp, err := f.service.Generate(context.Background(), driving.GenerateKeyRequest{
		ProjectID: projectID,
		Name:      "server key",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return resp
}

func TestGenerateKey(t *testing.T) {
	f := newAPIKeyFixture(t)
	resp := f.generate(t, "proj-1")

	if !strings.HasPrefix(resp.Plaintext, "dbk_") {
		t.Errorf("expected dbk_ prefix, got %q", resp.Plaintext)
	}
	if len(resp.Plaintext) != len("dbk_")+48 {
		t.Errorf("unexpected plaintext length: %d", len(resp.Plaintext))
	}
	if resp.Key.KeyHash == resp.Plaintext {
		t.Error("plaintext must not be stored")
	}
	if resp.Key.KeyPrefix != resp.Plaintext[:domain.APIKeyPrefixLen] {
		t.Errorf("prefix mismatch: %q", resp.Key.KeyPrefix)
	}
	if resp.Key.OrganizationID != "org-1" {
		t.Errorf("expected org scope from project, got %q", resp.Key.OrganizationID)
	}
	if !resp.Key.Active {
		t.Error("new key should be active")
	}
}

func TestGenerateKey_Validation(t *testing.T) {
	f := newAPIKeyFixture(t)

	past := time.Now().Add(-time.Hour)
	tests := []struct {
		name string
		req  driving.GenerateKeyRequest
		want error
	}{
		{"missing project", driving.GenerateKeyRequest{Name: "k"}, domain.ErrInvalidInput},
		{"missing name", driving.GenerateKeyRequest{ProjectID: "proj-1"}, domain.ErrInvalidInput},
		{"past expiry", driving.GenerateKeyRequest{ProjectID: "proj-1", Name: "k", ExpiresAt: &past}, domain.ErrInvalidInput},
		{"unknown project", driving.GenerateKeyRequest{ProjectID: "nope", Name: "k"}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.service.Generate(context.Background(), tt.req); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	f := newAPIKeyFixture(t)
	resp := f.generate(t, "proj-1")

	scope, err := f.service.Authenticate(context.Background(), "Bearer "+resp.Plaintext)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if scope.ProjectID != "proj-1" || scope.OrganizationID != "org-1" {
		t.Errorf("unexpected scope: %+v", scope)
	}
	if scope.KeyID != resp.Key.ID {
		t.Errorf("unexpected key id: %q", scope.KeyID)
	}

	// The scheme comparison is case-insensitive.
	if _, err := f.service.Authenticate(context.Background(), "bearer "+resp.Plaintext); err != nil {
		t.Errorf("lowercase scheme rejected: %v", err)
	}
}

func TestAuthenticate_StampsLastUsed(t *testing.T) {
	f := newAPIKeyFixture(t)
	resp := f.generate(t, "proj-1")

	if _, err := f.service.Authenticate(context.Background(), "Bearer "+resp.Plaintext); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	// The stamp happens on a background goroutine.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if f.keys.Touches() > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("expected last-used stamp")
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	f := newAPIKeyFixture(t)
	resp := f.generate(t, "proj-1")

	tests := []struct {
		name       string
		credential string
	}{
		{"empty", ""},
		{"no bearer scheme", resp.Plaintext},
		{"wrong scheme", "Basic " + resp.Plaintext},
		{"too short", "Bearer dbk_short"},
		{"unknown", "Bearer dbk_0000000000000000000000000000000000000000000000000000"},
		{"tampered", "Bearer " + resp.Plaintext[:len(resp.Plaintext)-1] + "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.service.Authenticate(context.Background(), tt.credential); !errors.Is(err, domain.ErrKeyInvalid) {
				t.Errorf("expected ErrKeyInvalid, got %v", err)
			}
		})
	}
}

func TestAuthenticate_RevokedKey(t *testing.T) {
	f := newAPIKeyFixture(t)
	resp := f.generate(t, "proj-1")

	if err := f.service.Revoke(context.Background(), resp.Key.ID); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := f.service.Authenticate(context.Background(), "Bearer "+resp.Plaintext); !errors.Is(err, domain.ErrKeyInvalid) {
		t.Errorf("expected ErrKeyInvalid for revoked key, got %v", err)
	}
}

func TestAuthenticate_ExpiredKey(t *testing.T) {
	f := newAPIKeyFixture(t)
	resp := f.generate(t, "proj-1")

	// Backdate the expiry directly in the store.
	key := f.keys.Get(resp.Key.ID)
	past := time.Now().Add(-time.Minute)
	key.ExpiresAt = &past
	if err := f.keys.Save(context.Background(), key); err != nil {
		t.Fatalf("save key: %v", err)
	}

	if _, err := f.service.Authenticate(context.Background(), "Bearer "+resp.Plaintext); !errors.Is(err, domain.ErrKeyExpired) {
		t.Errorf("expected ErrKeyExpired, got %v", err)
	}
}

func TestAuthenticate_InactiveProject(t *testing.T) {
	f := newAPIKeyFixture(t)
	resp := f.generate(t, "proj-frozen")

	if _, err := f.service.Authenticate(context.Background(), "Bearer "+resp.Plaintext); !errors.Is(err, domain.ErrProjectInactive) {
		t.Errorf("expected ErrProjectInactive, got %v", err)
	}
}

func TestListAndRevoke(t *testing.T) {
	f := newAPIKeyFixture(t)
	f.generate(t, "proj-1")
	f.generate(t, "proj-1")

	keys, err := f.service.List(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("expected 2 keys, got %d", len(keys))
	}

	if err := f.service.Revoke(context.Background(), keys[0].ID); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if f.keys.Get(keys[0].ID).Active {
		t.Error("revoked key still active")
	}
}
