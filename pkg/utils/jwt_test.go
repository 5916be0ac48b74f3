package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func TestStateTokenRoundTrip(t *testing.T) {
	token, err := GenerateStateToken(testSecret, "42", 15*time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.NotEmpty(t, claims.Nonce)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateStateToken(testSecret, "42", 15*time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken("a different secret", token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	token, err := GenerateStateToken(testSecret, "42", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(testSecret, token)
	assert.Error(t, err)
}

func TestStateTokenNoncesDiffer(t *testing.T) {
	first, err := GenerateStateToken(testSecret, "42", 15*time.Minute)
	require.NoError(t, err)
	second, err := GenerateStateToken(testSecret, "42", 15*time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
