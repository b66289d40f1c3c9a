// Package wallet provides the user's cryptographic identity: a secp256k1
// keypair with an Ethereum-style checksummed address, generated at random
// or imported from a hex secret.
package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/consentvault/internal/common"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
)

// SecretPrefix is the canonical prefix of a textual secret.
const SecretPrefix = "0x"

// Keypair is one identity. The private key never leaves the value except
// through Secret, which the store uses for persistence only.
type Keypair struct {
	priv    *ecdsa.PrivateKey
	address string
}

// Address is the EIP-55 checksummed address, e.g. 0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed.
func (k *Keypair) Address() string {
	return k.address
}

// Secret returns the canonical textual secret: 0x followed by 64 lowercase
// hex digits.
func (k *Keypair) Secret() string {
	return SecretPrefix + hex.EncodeToString(crypto.FromECDSA(k.priv))
}

// SignMessage signs msg the way personal_sign does (EIP-191 prefix, then
// Keccak-256) and returns the 65-byte [R || S || V] signature.
func (k *Keypair) SignMessage(msg []byte) ([]byte, error) {
	return crypto.Sign(accounts.TextHash(msg), k.priv)
}

// RecoverAddress returns the address that produced sig over msg with
// SignMessage.
func RecoverAddress(msg, sig []byte) (string, error) {
	pub, err := crypto.SigToPub(accounts.TextHash(msg), sig)
	if err != nil {
		return "", fmt.Errorf("recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

func newKeypair(priv *ecdsa.PrivateKey) *Keypair {
	return &Keypair{priv: priv, address: crypto.PubkeyToAddress(priv.PublicKey).Hex()}
}

// NormalizeSecret trims surrounding whitespace, makes sure exactly one 0x
// prefix is present and lowercases the hex digits. It does not validate.
func NormalizeSecret(secret string) string {
	s := strings.TrimSpace(secret)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	return SecretPrefix + strings.ToLower(s)
}

// Provider creates keypairs.
type Provider struct{}

func NewProvider() *Provider {
	return &Provider{}
}

// Generate returns a fresh random keypair.
func (p *Provider) Generate() (*Keypair, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return newKeypair(priv), nil
}

// FromSecret parses a secret in raw or 0x-prefixed form. Anything that is
// not a valid secp256k1 private key fails with common.ErrInvalidSecret.
func (p *Provider) FromSecret(secret string) (*Keypair, error) {
	s := NormalizeSecret(secret)

	priv, err := crypto.HexToECDSA(strings.TrimPrefix(s, SecretPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidSecret, err)
	}
	return newKeypair(priv), nil
}
