package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Secret!2025", "pepper")
	require.NoError(t, err)

	assert.True(t, VerifyPassword("Secret!2025", "pepper", hash))
	assert.False(t, VerifyPassword("Secret!2025", "autre", hash))
	assert.False(t, VerifyPassword("mauvais", "pepper", hash))
	assert.False(t, VerifyPassword("Secret!2025", "pepper", ""))
}

func TestHashPassword_TooShort(t *testing.T) {
	_, err := HashPassword("court", "")
	assert.Error(t, err)
}

func TestHashPassword_LongWithoutPepper(t *testing.T) {
	long := strings.Repeat("a", 100)
	hash, err := HashPassword(long, "")
	require.NoError(t, err)
	assert.True(t, VerifyPassword(long, "", hash))
}

func TestSessionToken(t *testing.T) {
	a, err := GenerateSessionToken()
	require.NoError(t, err)
	b, err := GenerateSessionToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.NoError(t, ValidateSessionToken(a))
	assert.Error(t, ValidateSessionToken("abc"))
	assert.Error(t, ValidateSessionToken(strings.Repeat("z", 64)))
}
