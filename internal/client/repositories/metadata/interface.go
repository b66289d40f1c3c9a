// Package metadata persists plaintext vault parameters (Argon2 salt and
// passphrase verifier) in the vault_meta table.
package metadata

import (
	"context"
)

// Repository is a small key/value store for vault parameters.
// Get returns (nil, nil) when the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
