// Package cryptox seals values for at-rest storage. A storage key is derived
// from the device passphrase with Argon2id and every value is encrypted with
// AES-256-GCM under a fresh nonce.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// KeySize is the length of a storage key in bytes.
const KeySize = 32

// SaltSize is the length of the Argon2 salt in bytes.
const SaltSize = 32

var ErrInvalidKey = errors.New("storage key must be 32 bytes")

// MakeVerifier returns a digest of key that can be stored to check a
// passphrase later without keeping the key itself.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// DeriveStorageKey stretches passphrase into a KeySize-byte key.
func DeriveStorageKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with AES-GCM. aad is authenticated but not
// encrypted; callers pass the storage key name so a ciphertext cannot be
// moved to a different slot unnoticed.
func Seal(plaintext, key, aad []byte) (ciphertext, nonce []byte, err error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("nonce: %w", err)
	}

	ciphertext = aesgcm.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Open reverses Seal. It fails if the key, nonce, aad or ciphertext differ
// from what was sealed.
func Open(ciphertext, nonce, key, aad []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aesgcm.NonceSize() {
		return nil, fmt.Errorf("nonce must be %d bytes", aesgcm.NonceSize())
	}

	return aesgcm.Open(nil, nonce, ciphertext, aad)
}
