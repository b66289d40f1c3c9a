// Package store is the identity and consent store: it owns the active wallet
// identity and the consent ledger, persists both into secure storage and
// exposes the operations the front-end drives.
//
// Every mutation follows the same policy: stage the change on a copy,
// persist it, and only then commit it to memory. A failed write leaves the
// in-memory state exactly as it was. Mutations are serialised, so concurrent
// callers never lose each other's updates.
//
// Each operation records its outcome in the store's last-error field, which
// is cleared when the next operation starts, and also returns the typed error
// (see package common) to the caller.
package store
