package services

import (
	"encoding/hex"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) string {
	key := make([]byte, 32)
	for i := range key {
		key[i] = b
	}
	return hex.EncodeToString(key)
}

func TestTokenCryptoRoundTrip(t *testing.T) {
	crypto, err := NewTokenCrypto(testKey(0x11), "")
	require.NoError(t, err)

	sealed, err := crypto.Encrypt("gho_secrettoken")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "gho_secrettoken")

	opened, err := crypto.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "gho_secrettoken", opened)
}

func TestTokenCryptoNoncesDiffer(t *testing.T) {
	crypto, err := NewTokenCrypto(testKey(0x11), "")
	require.NoError(t, err)

	first, err := crypto.Encrypt("same plaintext")
	require.NoError(t, err)
	second, err := crypto.Encrypt("same plaintext")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestTokenCryptoWrongKeyFails(t *testing.T) {
	crypto, err := NewTokenCrypto(testKey(0x11), "")
	require.NoError(t, err)
	other, err := NewTokenCrypto(testKey(0x22), "")
	require.NoError(t, err)

	sealed, err := crypto.Encrypt("gho_secrettoken")
	require.NoError(t, err)

	_, err = other.Decrypt(sealed)
	assert.Error(t, err)
}

func TestTokenCryptoTamperDetected(t *testing.T) {
	crypto, err := NewTokenCrypto(testKey(0x11), "")
	require.NoError(t, err)

	sealed, err := crypto.Encrypt("gho_secrettoken")
	require.NoError(t, err)

	tampered := []byte(sealed)
	tampered[len(tampered)-5] ^= 'x'
	_, err = crypto.Decrypt(string(tampered))
	assert.Error(t, err)
}

func TestTokenCryptoRejectsBadKey(t *testing.T) {
	_, err := NewTokenCrypto("not-hex", "")
	assert.Error(t, err)

	_, err = NewTokenCrypto("abcd", "")
	assert.Error(t, err, "a short key must be rejected")
}

func TestTokenCryptoKeyFilePersists(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "token.key")

	first, err := NewTokenCrypto("", keyPath)
	require.NoError(t, err)
	sealed, err := first.Encrypt("gho_secrettoken")
	require.NoError(t, err)

	// A second instance reads the same key file and can open the token
	second, err := NewTokenCrypto("", keyPath)
	require.NoError(t, err)
	opened, err := second.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "gho_secrettoken", opened)
}
