package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, "secret1", hash)
	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))

	again, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")
}

func TestNewResetToken(t *testing.T) {
	plain, hash, err := NewResetToken()
	require.NoError(t, err)

	assert.Len(t, plain, resetTokenBytes*2)
	assert.Equal(t, HashResetToken(plain), hash)
	assert.NotEqual(t, plain, hash)

	other, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, plain, other)
}
