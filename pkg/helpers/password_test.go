package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("Passw0rd1")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd1", hash)

	assert.True(t, CompareHashAndPassword(hash, "Passw0rd1"))
	assert.False(t, CompareHashAndPassword(hash, "passw0rd1"))
	assert.False(t, CompareHashAndPassword(hash, ""))
	assert.False(t, CompareHashAndPassword("", "Passw0rd1"))
}

func TestHashesAreSalted(t *testing.T) {
	a, err := HashPassword("same input")
	require.NoError(t, err)
	b, err := HashPassword("same input")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestIsHashed(t *testing.T) {
	hash, err := HashPassword("Passw0rd1")
	require.NoError(t, err)
	assert.True(t, IsHashed(hash))
	assert.False(t, IsHashed("Passw0rd1"))
	assert.False(t, IsHashed(""))
}
