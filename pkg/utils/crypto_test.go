package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecryptRoundTrip(t *testing.T) {
	encrypted, err := Encrypt([]byte("page-access-token"), testKey)
	require.NoError(t, err)
	assert.NotEqual(t, "page-access-token", encrypted)

	decrypted, err := Decrypt(encrypted, testKey)
	require.NoError(t, err)
	assert.Equal(t, "page-access-token", decrypted)
}

func TestEncryptProducesUniqueCiphertexts(t *testing.T) {
	first, err := Encrypt([]byte("same token"), testKey)
	require.NoError(t, err)
	second, err := Encrypt([]byte("same token"), testKey)
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "nonce must differ per encryption")
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	encrypted, err := Encrypt([]byte("secret"), testKey)
	require.NoError(t, err)

	otherKey := []byte("fedcba9876543210fedcba9876543210")
	_, err = Decrypt(encrypted, otherKey)
	assert.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	_, err := Decrypt("not base64 at all!!!", testKey)
	assert.Error(t, err)

	_, err = Decrypt("c2hvcnQ=", testKey) // valid base64, shorter than a nonce
	assert.Error(t, err)
}
