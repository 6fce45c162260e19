package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("geheim", 4)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 4, cost)
	assert.True(t, VerifyPassword(hash, "geheim"))
	assert.False(t, VerifyPassword(hash, "Geheim"))

	hash, err = HashPassword("geheim", 99)
	require.NoError(t, err)
	cost, err = bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestHashPassword_Length(t *testing.T) {
	t.Parallel()

	_, err := HashPassword(strings.Repeat("x", MaxPasswordBytes), 4)
	assert.NoError(t, err)
	_, err = HashPassword(strings.Repeat("x", MaxPasswordBytes+1), 4)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	// umlauts count as two bytes
	_, err = HashPassword(strings.Repeat("ä", 37), 4)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
