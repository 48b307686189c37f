package driven

import "context"

// CredentialStore holds third-party integration secrets (Notion tokens)
// encrypted at rest. Referenced from source configs by credential ID.
type CredentialStore interface {
	// SaveCredential stores a secret under the given ID, encrypting it
	SaveCredential(ctx context.Context, id, projectID, secret string) error

	// GetCredential retrieves and decrypts the secret for an ID
	GetCredential(ctx context.Context, id string) (string, error)

	// DeleteCredential removes a stored secret
	DeleteCredential(ctx context.Context, id string) error
}
