package cryptox

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	return DeriveStorageKey([]byte("passphrase"), []byte("salt-for-tests"))
}

func TestDeriveStorageKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveStorageKey(password, salt)
	key2 := DeriveStorageKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	require.Len(t, key1, KeySize)

	// Argon2id t=1, m=64MiB, p=4 known answer; changing the parameters
	// orphans existing vaults
	expectedHex := "9290403300158e19f27e48e7087f7383b03065bf5b25ef23ebc40229616cd8b3"
	if hex.EncodeToString(key1) != expectedHex {
		t.Errorf("expected %s, got %s", expectedHex, hex.EncodeToString(key1))
	}
}

func TestDeriveStorageKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")

	key1 := DeriveStorageKey(password, []byte("salt-1"))
	key2 := DeriveStorageKey(password, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestMakeVerifier(t *testing.T) {
	key := testKey(t)
	v1 := MakeVerifier(key)
	v2 := MakeVerifier(key)
	require.Len(t, v1, 32)
	require.Equal(t, v1, v2)
	require.NotEqual(t, key, v1)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := testKey(t)
	aad := []byte("pharma_blockchain_private_key")

	ct, nonce, err := Seal([]byte("0xdeadbeef"), key, aad)
	require.NoError(t, err)
	require.Len(t, nonce, 12)
	require.NotContains(t, string(ct), "deadbeef")

	pt, err := Open(ct, nonce, key, aad)
	require.NoError(t, err)
	require.Equal(t, "0xdeadbeef", string(pt))
}

func TestSeal_FreshNoncePerCall(t *testing.T) {
	key := testKey(t)

	ct1, n1, err := Seal([]byte("same"), key, nil)
	require.NoError(t, err)
	ct2, n2, err := Seal([]byte("same"), key, nil)
	require.NoError(t, err)

	require.NotEqual(t, n1, n2)
	require.NotEqual(t, ct1, ct2)
}

func TestOpen_FailsOnTampering(t *testing.T) {
	key := testKey(t)
	aad := []byte("slot-a")

	ct, nonce, err := Seal([]byte("payload"), key, aad)
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		other := DeriveStorageKey([]byte("other"), []byte("salt-for-tests"))
		_, err := Open(ct, nonce, other, aad)
		require.Error(t, err)
	})

	t.Run("wrong aad", func(t *testing.T) {
		_, err := Open(ct, nonce, key, []byte("slot-b"))
		require.Error(t, err)
	})

	t.Run("flipped byte", func(t *testing.T) {
		bad := append([]byte(nil), ct...)
		bad[0] ^= 0xff
		_, err := Open(bad, nonce, key, aad)
		require.Error(t, err)
	})

	t.Run("short nonce", func(t *testing.T) {
		_, err := Open(ct, nonce[:4], key, aad)
		require.Error(t, err)
	})
}

func TestSealOpen_RejectShortKey(t *testing.T) {
	_, _, err := Seal([]byte("x"), []byte("short"), nil)
	require.ErrorIs(t, err, ErrInvalidKey)

	_, err = Open([]byte("x"), make([]byte, 12), []byte("short"), nil)
	require.ErrorIs(t, err, ErrInvalidKey)
}
