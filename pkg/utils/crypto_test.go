package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecryptRoundTrip(t *testing.T) {
	encrypted, err := Encrypt([]byte("super secret token"), testKey)
	require.NoError(t, err)
	assert.NotEqual(t, "super secret token", encrypted)

	plaintext, err := Decrypt(encrypted, testKey)
	require.NoError(t, err)
	assert.Equal(t, "super secret token", plaintext)
}

func TestEncryptProducesFreshNonce(t *testing.T) {
	first, err := Encrypt([]byte("same input"), testKey)
	require.NoError(t, err)
	second, err := Encrypt([]byte("same input"), testKey)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestDecryptWrongKey(t *testing.T) {
	encrypted, err := Encrypt([]byte("payload"), testKey)
	require.NoError(t, err)

	otherKey := []byte("fedcba9876543210fedcba9876543210")
	_, err = Decrypt(encrypted, otherKey)
	require.Error(t, err)

	var decErr *DecryptionError
	assert.True(t, errors.As(err, &decErr))
}

func TestDecryptGarbageInput(t *testing.T) {
	for _, input := range []string{"not-base64!!!", "aGVsbG8=", ""} {
		_, err := Decrypt(input, testKey)
		require.Error(t, err, input)

		var decErr *DecryptionError
		assert.True(t, errors.As(err, &decErr), input)
	}
}
