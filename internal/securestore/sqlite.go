package securestore

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/consentvault/internal/client/migrations"
	"github.com/dmitrijs2005/consentvault/internal/client/models"
	"github.com/dmitrijs2005/consentvault/internal/client/repositories/items"
	"github.com/dmitrijs2005/consentvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/consentvault/internal/common"
	"github.com/dmitrijs2005/consentvault/internal/cryptox"
	"github.com/dmitrijs2005/consentvault/internal/dbx"
	"github.com/dmitrijs2005/consentvault/internal/filex"

	_ "modernc.org/sqlite"
)

const (
	metaSalt     = "kdf_salt"
	metaVerifier = "kdf_verifier"
)

// SQLite is a Storage backed by a local SQLite database. The storage key
// stays in memory until Close.
type SQLite struct {
	db  *sql.DB
	key []byte
}

// Open opens (or creates) the vault database at dsn, applies migrations and
// unlocks it with passphrase. A fresh vault adopts the passphrase; an existing
// one rejects a different passphrase with common.ErrWrongPassphrase.
func Open(ctx context.Context, dsn string, passphrase []byte) (*SQLite, error) {
	if err := filex.EnsureParentDir(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open vault database: %w", err)
	}
	// one connection keeps ":memory:" databases coherent and serialises writers
	db.SetMaxOpenConns(1)

	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	key, err := unlock(ctx, db, passphrase)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db, key: key}, nil
}

func unlock(ctx context.Context, db *sql.DB, passphrase []byte) (key []byte, err error) {
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		meta := metadata.NewSQLiteRepository(tx)

		salt, err := meta.Get(ctx, metaSalt)
		if err != nil {
			return err
		}

		if salt == nil {
			salt = common.GenerateRandByteArray(cryptox.SaltSize)
			key = cryptox.DeriveStorageKey(passphrase, salt)
			if err := meta.Set(ctx, metaSalt, salt); err != nil {
				return err
			}
			return meta.Set(ctx, metaVerifier, cryptox.MakeVerifier(key))
		}

		verifier, err := meta.Get(ctx, metaVerifier)
		if err != nil {
			return err
		}

		candidate := cryptox.DeriveStorageKey(passphrase, salt)
		if subtle.ConstantTimeCompare(verifier, cryptox.MakeVerifier(candidate)) == 0 {
			common.WipeByteArray(candidate)
			return common.ErrWrongPassphrase
		}
		key = candidate
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrWrongPassphrase) {
			return nil, err
		}
		return nil, fmt.Errorf("unlock vault: %w", err)
	}
	return key, nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	item, err := items.NewSQLiteRepository(s.db).Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	plaintext, err := cryptox.Open(item.Ciphertext, item.Nonce, s.key, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("decrypt item[%s]: %w", key, err)
	}
	if plaintext == nil {
		// present but empty must not read as absent
		plaintext = []byte{}
	}
	return plaintext, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	return s.Apply(ctx, Put(key, value))
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	return s.Apply(ctx, Remove(key))
}

// Apply seals every value first, then runs all writes in one transaction.
func (s *SQLite) Apply(ctx context.Context, ops ...Op) error {
	if err := validate(ops); err != nil {
		return err
	}

	sealed := make([]*models.SealedItem, len(ops))
	for i, op := range ops {
		if op.Delete {
			continue
		}
		ct, nonce, err := cryptox.Seal(op.Value, s.key, []byte(op.Key))
		if err != nil {
			return fmt.Errorf("encrypt item[%s]: %w", op.Key, err)
		}
		sealed[i] = &models.SealedItem{Key: op.Key, Ciphertext: ct, Nonce: nonce}
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := items.NewSQLiteRepository(tx)
		for i, op := range ops {
			if op.Delete {
				if err := repo.Delete(ctx, op.Key); err != nil {
					return err
				}
				continue
			}
			if err := repo.Put(ctx, sealed[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Keys lists stored keys without decrypting anything.
func (s *SQLite) Keys(ctx context.Context) ([]string, error) {
	return items.NewSQLiteRepository(s.db).Keys(ctx)
}

// Close wipes the storage key and closes the database.
func (s *SQLite) Close() error {
	common.WipeByteArray(s.key)
	return s.db.Close()
}
