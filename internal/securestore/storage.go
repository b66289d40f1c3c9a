// Package securestore is the secure key-value storage the identity store
// persists into. Values are opaque bytes; the SQLite implementation seals
// each one with AES-GCM under a passphrase-derived key before it touches
// disk.
package securestore

import (
	"context"
	"errors"
)

// Storage is get/set/delete by key plus an atomic multi-key write.
//
// Get returns (nil, nil) when the key is absent. Delete of an absent key
// succeeds. Apply either performs every op or none of them.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Apply(ctx context.Context, ops ...Op) error
}

// Op is one write inside Apply.
type Op struct {
	Key    string
	Value  []byte
	Delete bool
}

// Put returns an op storing value under key.
func Put(key string, value []byte) Op {
	return Op{Key: key, Value: value}
}

// Remove returns an op deleting key.
func Remove(key string) Op {
	return Op{Key: key, Delete: true}
}

var ErrEmptyKey = errors.New("storage key must not be empty")

func validate(ops []Op) error {
	for _, op := range ops {
		if op.Key == "" {
			return ErrEmptyKey
		}
	}
	return nil
}
