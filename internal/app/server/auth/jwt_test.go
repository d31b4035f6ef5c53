package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Hour)

	signed, err := tokens.Generate("u1")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	userID, err := tokens.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestTokenWrongSecret(t *testing.T) {
	signed, err := NewTokens([]byte("secret-a"), time.Hour).Generate("u1")
	require.NoError(t, err)

	_, err = NewTokens([]byte("secret-b"), time.Hour).Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), -time.Minute)
	signed, err := tokens.Generate("u1")
	require.NoError(t, err)

	_, err = tokens.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Hour)
	_, err := tokens.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
