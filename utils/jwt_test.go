package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishcheyk/infinity-workspace/types"
)

func testUser() *types.User {
	return &types.User{
		ID:       "user-1",
		Email:    "alice@example.com",
		FullName: "Alice",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(testUser())
	require.NoError(t, err)

	claims, err := ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	token, err := GenerateRefreshToken(testUser())
	require.NoError(t, err)

	_, err = ParseAccessToken(token)
	assert.Error(t, err)
}

func TestAccessTokenRejectedAsRefresh(t *testing.T) {
	token, err := GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = ParseRefreshToken(token)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := ParseAccessToken("not.a.token")
	assert.Error(t, err)
}
