package utils

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// The signing key is read from the environment on first config access.
	os.Setenv("JWT_SECRET", "test-signing-secret")
	os.Exit(m.Run())
}

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("66f0c2d4a1b2c3d4e5f60718", "ada", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "66f0c2d4a1b2c3d4e5f60718", claims.UserID)
	assert.Equal(t, "ada", claims.Username)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken("66f0c2d4a1b2c3d4e5f60718", "ada", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestBlacklistToken(t *testing.T) {
	token, err := GenerateToken("66f0c2d4a1b2c3d4e5f60718", "ada", time.Hour)
	require.NoError(t, err)

	assert.False(t, IsTokenBlacklisted(token))
	BlacklistToken(token, time.Now().Add(time.Hour))
	assert.True(t, IsTokenBlacklisted(token))
}

func TestBlacklistToken_ExpiredEntryIsDropped(t *testing.T) {
	BlacklistToken("stale-token", time.Now().Add(-time.Second))
	assert.False(t, IsTokenBlacklisted("stale-token"))
}
