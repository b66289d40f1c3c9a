package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/consentvault/internal/consent"
	"github.com/dmitrijs2005/consentvault/internal/securestore"
	"github.com/dmitrijs2005/consentvault/internal/wallet"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestStore_EncryptedVaultRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vault.db")

	vault, err := securestore.Open(ctx, path, []byte("passphrase"))
	require.NoError(t, err)

	s := New(vault, wallet.NewProvider(), Options{})
	require.NoError(t, s.Init(ctx))
	_, err = s.ImportIdentity(ctx, testSecret)
	require.NoError(t, err)

	added, err := s.GrantConsents(ctx, []consent.Request{
		{DataType: "demographic", Purpose: "Clinical Research", Organization: "Org A"},
		{DataType: "genetic", Purpose: "Clinical Research", Organization: "Org A"},
	})
	require.NoError(t, err)
	_, err = s.RevokeConsent(ctx, added[1].ID)
	require.NoError(t, err)

	want := s.Consents()
	require.NoError(t, s.Dispose(ctx))

	vault, err = securestore.Open(ctx, path, []byte("passphrase"))
	require.NoError(t, err)
	reopened := New(vault, wallet.NewProvider(), Options{})
	t.Cleanup(func() { _ = reopened.Dispose(ctx) })
	require.NoError(t, reopened.Init(ctx))

	require.Equal(t, testAddress, reopened.Address())
	if diff := cmp.Diff(want, reopened.Consents()); diff != "" {
		t.Fatalf("ledger changed across reopen (-want +got):\n%s", diff)
	}

	require.NoError(t, reopened.ClearIdentity(ctx))
	keys, err := vault.Keys(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)
}
