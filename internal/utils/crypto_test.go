// internal/utils/crypto_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := "short secret"

	enc, err := Encrypt("AIzaSyA1234567890abcdefghijk", key)
	require.NoError(t, err)
	assert.NotEqual(t, "AIzaSyA1234567890abcdefghijk", enc)

	plain, err := Decrypt(enc, key)
	require.NoError(t, err)
	assert.Equal(t, "AIzaSyA1234567890abcdefghijk", plain)
}

func TestDecrypt_WrongKey(t *testing.T) {
	enc, err := Encrypt("secret value", "key one")
	require.NoError(t, err)

	_, err = Decrypt(enc, "another key")
	assert.Error(t, err)
}

func TestDecrypt_InvalidInput(t *testing.T) {
	_, err := Decrypt("not base64!!!", "key")
	assert.Error(t, err)

	_, err = Decrypt("YWJj", "key") // 太短，不含nonce
	assert.Error(t, err)
}

func TestGenerateSecureKey(t *testing.T) {
	key, err := GenerateSecureKey(32)
	require.NoError(t, err)
	assert.Len(t, key, 32)

	other, err := GenerateSecureKey(32)
	require.NoError(t, err)
	assert.NotEqual(t, key, other)

	_, err = GenerateSecureKey(0)
	assert.Error(t, err)
}
