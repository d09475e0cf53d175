package service

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkraev/tasklist/internal/util"
)

func newTestTokenService() *TokenService {
	return NewTokenService(&util.TokenConfig{
		AccessTTL:  testAccessTTL,
		RefreshTTL: testRefreshTTL,
	})
}

func TestNewTokenPair(t *testing.T) {
	ts := newTestTokenService()

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return fixed }

	pair, err := ts.NewTokenPair()
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken,
		"access and refresh tokens come from independent random sequences")

	assert.Equal(t, fixed.Add(testAccessTTL), pair.AccessTokenExpiry)
	assert.Equal(t, fixed.Add(testRefreshTTL), pair.RefreshTokenExpiry)
}

func TestNewTokenPair_Encoding(t *testing.T) {
	ts := newTestTokenService()

	pair, err := ts.NewTokenPair()
	require.NoError(t, err)

	for _, token := range []string{pair.AccessToken, pair.RefreshToken} {
		decoded, err := base64.StdEncoding.DecodeString(token)
		require.NoError(t, err, "tokens are printable base64")
		// hex of 24 random bytes plus a unix timestamp suffix.
		assert.GreaterOrEqual(t, len(decoded), util.TokenEntropyBytes*2)
	}
}

func TestNewTokenPair_Unique(t *testing.T) {
	ts := newTestTokenService()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		pair, err := ts.NewTokenPair()
		require.NoError(t, err)

		require.False(t, seen[pair.AccessToken])
		require.False(t, seen[pair.RefreshToken])
		seen[pair.AccessToken] = true
		seen[pair.RefreshToken] = true
	}
}
