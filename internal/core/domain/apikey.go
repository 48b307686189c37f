package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	// apiKeyTag is the fixed textual prefix on generated keys,
	// making leaked keys greppable in logs and repositories.
	apiKeyTag = "dbk_"

	// apiKeyRandomBytes is the entropy of the random part (48 hex chars).
	apiKeyRandomBytes = 24

	// APIKeyPrefixLen is how many leading characters of the plaintext key
	// are persisted as an index-friendly lookup discriminator. The hash is
	// the actual check; the prefix is not a security boundary.
	APIKeyPrefixLen = 8

	// MinAPIKeyLen is the minimum credential length accepted by the
	// authenticator before any lookup happens.
	MinAPIKeyLen = 10
)

// APIKey maps a hashed credential to a project and organization scope.
// The plaintext is shown once at creation and never stored.
type APIKey struct {
	ID             string     `json:"id"`
	ProjectID      string     `json:"project_id"`
	OrganizationID string     `json:"organization_id"`
	Name           string     `json:"name"`
	KeyHash        string     `json:"-"` // Never serialize
	KeyPrefix      string     `json:"key_prefix"`
	Active         bool       `json:"active"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	LastUsedAt     *time.Time `json:"last_used_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsExpired reports whether the key carries an expiry in the past.
func (k *APIKey) IsExpired() bool {
	if k.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*k.ExpiresAt)
}

// GeneratedKey is the result of key material generation. Plaintext is
// returned to the caller exactly once; only Hash and Prefix are persisted.
type GeneratedKey struct {
	Plaintext string
	Hash      string
	Prefix    string
}

// GenerateAPIKey produces a random high-entropy credential with the fixed
// tag, its SHA-256 hash, and the lookup prefix.
func GenerateAPIKey() (*GeneratedKey, error) {
	b := make([]byte, apiKeyRandomBytes)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}

	plaintext := apiKeyTag + hex.EncodeToString(b)
	return &GeneratedKey{
		Plaintext: plaintext,
		Hash:      HashAPIKey(plaintext),
		Prefix:    plaintext[:APIKeyPrefixLen],
	}, nil
}

// HashAPIKey computes the one-way hash stored and looked up for a key.
// SHA-256 is deterministic, which the (hash, prefix) lookup requires;
// key material is high-entropy so no salt or work factor is needed.
func HashAPIKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// AuthenticatedProject is the scope a valid API key resolves to.
type AuthenticatedProject struct {
	ProjectID      string `json:"project_id"`
	OrganizationID string `json:"organization_id"`
	KeyID          string `json:"key_id"`
}
