// Package models defines the rows persisted by the local vault database.
package models

// SealedItem is one encrypted value in the secure_items table. Ciphertext is
// AES-GCM output with the item key as associated data; Nonce is its GCM nonce.
type SealedItem struct {
	Key        string
	Ciphertext []byte
	Nonce      []byte
}
