package wallet

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/consentvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// well-known development key (first Hardhat/Anvil account)
const (
	devSecret  = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestFromSecret_KnownAddress(t *testing.T) {
	kp, err := NewProvider().FromSecret(devSecret)
	require.NoError(t, err)
	assert.Equal(t, devAddress, kp.Address())
	assert.Equal(t, devSecret, kp.Secret())
}

func TestFromSecret_PrefixNormalisation(t *testing.T) {
	p := NewProvider()
	raw := strings.TrimPrefix(devSecret, "0x")

	inputs := []string{
		devSecret,
		raw,
		"0X" + raw,
		"  " + devSecret + "\n",
		strings.ToUpper(raw),
	}
	for _, in := range inputs {
		kp, err := p.FromSecret(in)
		require.NoError(t, err, in)
		assert.Equal(t, devAddress, kp.Address(), in)
		assert.Equal(t, devSecret, kp.Secret(), in)
	}
}

func TestFromSecret_Invalid(t *testing.T) {
	p := NewProvider()
	raw := strings.TrimPrefix(devSecret, "0x")

	bad := []string{
		"",
		"0x",
		"0x1234",
		raw + "00",
		"0x0x" + raw,
		"zz" + raw[2:],
		"0x" + strings.Repeat("0", 64), // zero is not a valid scalar
	}
	for _, in := range bad {
		_, err := p.FromSecret(in)
		require.ErrorIs(t, err, common.ErrInvalidSecret, "input %q", in)
	}
}

func TestNormalizeSecret(t *testing.T) {
	assert.Equal(t, "0xabcd", NormalizeSecret("abcd"))
	assert.Equal(t, "0xabcd", NormalizeSecret("0xABCD"))
	assert.Equal(t, "0xabcd", NormalizeSecret(" 0Xabcd "))
	// only one prefix is stripped, so a doubled prefix stays invalid
	assert.Equal(t, "0x0xab", NormalizeSecret("0x0xab"))
}

func TestGenerate_ProducesDistinctImportableKeys(t *testing.T) {
	p := NewProvider()

	a, err := p.Generate()
	require.NoError(t, err)
	b, err := p.Generate()
	require.NoError(t, err)

	assert.NotEqual(t, a.Address(), b.Address())
	assert.Len(t, a.Secret(), 66)
	assert.True(t, strings.HasPrefix(a.Address(), "0x"))

	again, err := p.FromSecret(a.Secret())
	require.NoError(t, err)
	assert.Equal(t, a.Address(), again.Address())
}

func TestSignMessage_RecoversSigner(t *testing.T) {
	kp, err := NewProvider().FromSecret(devSecret)
	require.NoError(t, err)

	msg := []byte(`{"action":"grant"}`)
	sig, err := kp.SignMessage(msg)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	signer, err := RecoverAddress(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, devAddress, signer)

	other, err := RecoverAddress([]byte("tampered"), sig)
	require.NoError(t, err)
	assert.NotEqual(t, devAddress, other)
}

func TestRecoverAddress_BadSignature(t *testing.T) {
	_, err := RecoverAddress([]byte("m"), []byte{1, 2, 3})
	require.Error(t, err)
}
