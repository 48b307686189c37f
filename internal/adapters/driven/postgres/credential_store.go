package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore implements driven.CredentialStore on PostgreSQL with
// secrets encrypted at rest.
type CredentialStore struct {
	db        *DB
	encryptor *SecretEncryptor
}

// NewCredentialStore creates a new CredentialStore
func NewCredentialStore(db *DB, encryptor *SecretEncryptor) *CredentialStore {
	return &CredentialStore{db: db, encryptor: encryptor}
}

// SaveCredential stores a secret under the given ID, encrypting it
func (s *CredentialStore) SaveCredential(ctx context.Context, id, projectID, secret string) error {
	blob, err := s.encryptor.Encrypt(secret)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (id, project_id, secret, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET secret = EXCLUDED.secret
	`, id, projectID, blob, time.Now())
	return err
}

// GetCredential retrieves and decrypts the secret for an ID
func (s *CredentialStore) GetCredential(ctx context.Context, id string) (string, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT secret FROM credentials WHERE id = $1`, id).Scan(&blob)
	if err == sql.ErrNoRows {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return s.encryptor.Decrypt(blob)
}

// DeleteCredential removes a stored secret
func (s *CredentialStore) DeleteCredential(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
