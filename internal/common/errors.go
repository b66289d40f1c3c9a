// Package common defines shared sentinel errors and small helpers used across
// the consent vault layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrStorage         = errors.New("storage error")
	ErrWrongPassphrase = errors.New("wrong passphrase")

	// Identity errors.
	ErrInvalidSecret   = errors.New("invalid secret")
	ErrUnauthenticated = errors.New("unauthenticated")

	// Consent ledger errors.
	ErrNotFound       = errors.New("consent not found")
	ErrPersistence    = errors.New("persistence error")
	ErrParse          = errors.New("consent ledger is corrupt")
	ErrInvalidConsent = errors.New("invalid consent")
)
