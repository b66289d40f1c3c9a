package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/consentvault/internal/common"
)

// Create generates a new identity. An existing identity is only replaced
// after the user confirms.
func (a *App) Create(ctx context.Context) error {
	if ok, err := a.confirmReplace(); !ok || err != nil {
		return err
	}

	addr, err := a.store.CreateIdentity(ctx)
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintln(a.out, "Identity created.")
	fmt.Fprintf(a.out, "Address: %s\n", addr)
	return nil
}

// Import restores an identity from its private key, read without echo.
func (a *App) Import(ctx context.Context) error {
	if ok, err := a.confirmReplace(); !ok || err != nil {
		return err
	}

	secret, err := getPassword(a.out, "Private key (hex, with or without 0x): ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)

	addr, err := a.store.ImportIdentity(ctx, string(secret))
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintln(a.out, "Identity imported.")
	fmt.Fprintf(a.out, "Address: %s\n", addr)
	return nil
}

func (a *App) confirmReplace() (bool, error) {
	if !a.isLoggedIn() {
		return true, nil
	}
	ok, err := getConfirmation(a.reader, "This replaces the current identity and its consents on this device. Continue?", a.out)
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
	}
	return ok, nil
}

// WhoAmI prints the active identity.
func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.report(common.ErrUnauthenticated)
	}
	addr := a.store.Address()
	fmt.Fprintf(a.out, "%s (%s)\n", shortAddress(addr), addr)
	fmt.Fprintf(a.out, "Active consents: %d\n", len(a.store.ActiveConsents()))
	return nil
}

// Logout deletes the identity and the ledger from this device after
// confirmation.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "No identity to log out from.")
		return nil
	}

	ok, err := getConfirmation(a.reader, "Logging out deletes your private key and consent history from this device. Continue?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	if err := a.store.ClearIdentity(ctx); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
