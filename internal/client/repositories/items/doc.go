// Package items is the persistence layer for sealed values.
//
// Each row of the secure_items table holds an AES-GCM ciphertext and nonce;
// the repository never sees plaintext. Encryption is done one layer up, in
// internal/securestore.
//
// The SQLite implementation works over dbx.DBTX, so the same repository type
// serves plain reads (bound to *sql.DB) and atomic multi-key writes (bound to
// the *sql.Tx given by dbx.WithTx).
//
//	repo := items.NewSQLiteRepository(db)
//	_ = repo.Put(ctx, &models.SealedItem{Key: k, Ciphertext: ct, Nonce: n})
//	item, _ := repo.Get(ctx, k)
//	_ = repo.Delete(ctx, k)
package items
