// Package cli provides the interactive consent vault command-line client.
//
// It wires configuration, the encrypted local vault, the identity and consent
// store, and a REPL. Typical flow: unlock the vault with a passphrase, create
// or import an identity, grant consents, inspect and revoke them.
//
// Commands:
//   - create / import      set up an identity
//   - grant / enroll       grant a single consent or enroll in a set of categories
//   - list / active / show inspect the ledger
//   - revoke / sweep       revoke a consent, expire overdue ones
//   - whoami / logout      identity housekeeping
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
