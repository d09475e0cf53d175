package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkraev/tasklist/internal/models"
	"github.com/mkraev/tasklist/internal/storage"
)

func loginSession(t *testing.T, svc *AuthService, username string) *models.LoginResult {
	t.Helper()

	registerUser(t, svc, username, "correct-pw")
	result, err := svc.Login(context.Background(), username, "correct-pw")
	require.NoError(t, err)
	return result
}

func TestRefresh_RotatesTokenPair(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	original := loginSession(t, svc, "alice")

	refreshed, err := svc.Refresh(ctx, original.Session.ID, original.Session.AccessToken, original.Session.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, original.Session.ID, refreshed.Session.ID, "the session row persists across rotation")
	assert.Equal(t, original.User, refreshed.User)
	assert.NotEqual(t, original.Session.AccessToken, refreshed.Session.AccessToken)
	assert.NotEqual(t, original.Session.RefreshToken, refreshed.Session.RefreshToken)
	assert.True(t, refreshed.Session.AccessTokenExpiry.After(original.Session.AccessTokenExpiry))
}

func TestRefresh_InvalidatesOldTokens(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	original := loginSession(t, svc, "alice")

	refreshed, err := svc.Refresh(ctx, original.Session.ID, original.Session.AccessToken, original.Session.RefreshToken)
	require.NoError(t, err)

	// The previous pair authorizes nothing anymore.
	_, err = svc.Authorize(ctx, original.Session.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Refresh(ctx, original.Session.ID, original.Session.AccessToken, original.Session.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidSession)

	// The new pair works.
	userID, err := svc.Authorize(ctx, refreshed.Session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, original.User.ID, userID)
}

func TestRefresh_MismatchedTriple(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	first := loginSession(t, svc, "alice")
	second := loginSession(t, svc, "bob")

	tests := []struct {
		name         string
		sessionID    int64
		accessToken  string
		refreshToken string
	}{
		{"other session's refresh token", first.Session.ID, first.Session.AccessToken, second.Session.RefreshToken},
		{"other session's access token", first.Session.ID, second.Session.AccessToken, first.Session.RefreshToken},
		{"wrong session id", second.Session.ID, first.Session.AccessToken, first.Session.RefreshToken},
		{"unknown session id", 9999, first.Session.AccessToken, first.Session.RefreshToken},
		{"forged refresh token", first.Session.ID, first.Session.AccessToken, "forged"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Refresh(ctx, tt.sessionID, tt.accessToken, tt.refreshToken)
			assert.ErrorIs(t, err, ErrInvalidSession)
		})
	}
}

func TestRefresh_SucceedsWithExpiredAccessToken(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	result := loginSession(t, svc, "alice")

	// Past the access expiry but well within the refresh window: this is
	// exactly the scenario refresh exists for.
	svc.now = func() time.Time { return result.Session.AccessTokenExpiry.Add(time.Hour) }

	_, err := svc.Refresh(ctx, result.Session.ID, result.Session.AccessToken, result.Session.RefreshToken)
	assert.NoError(t, err)
}

func TestRefresh_ExpiredRefreshToken(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	result := loginSession(t, svc, "alice")

	svc.now = func() time.Time { return result.Session.RefreshTokenExpiry.Add(time.Second) }

	_, err := svc.Refresh(ctx, result.Session.ID, result.Session.AccessToken, result.Session.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenExpired)
}

func TestRefresh_AccountHealthChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("inactive account", func(t *testing.T) {
		svc, store := newTestAuth(t)
		result := loginSession(t, svc, "alice")
		store.SetUserActive(result.User.ID, false)

		_, err := svc.Refresh(ctx, result.Session.ID, result.Session.AccessToken, result.Session.RefreshToken)
		assert.ErrorIs(t, err, ErrAccountInactive)
	})

	t.Run("locked account", func(t *testing.T) {
		svc, store := newTestAuth(t)
		result := loginSession(t, svc, "alice")
		for i := 0; i < svc.lockoutThreshold; i++ {
			require.NoError(t, store.IncrementLoginAttempts(ctx, result.User.ID))
		}

		_, err := svc.Refresh(ctx, result.Session.ID, result.Session.AccessToken, result.Session.RefreshToken)
		assert.ErrorIs(t, err, ErrAccountLocked)
	})
}

func TestRefresh_TokenCollisionFailsLoudly(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	first := loginSession(t, svc, "alice")
	registerUser(t, svc, "bob", "correct-pw")

	pinTokenGenerator(svc)

	// Bob's login stores the pinned pair; Alice's refresh then regenerates
	// it and must fail instead of rebinding Bob's tokens to her session.
	_, err := svc.Login(ctx, "bob", "correct-pw")
	require.NoError(t, err)

	result, err := svc.Refresh(ctx, first.Session.ID, first.Session.AccessToken, first.Session.RefreshToken)
	require.ErrorIs(t, err, storage.ErrTokenConflict)
	assert.Nil(t, result)

	// The failed rotation left the original pair in place.
	userID, err := svc.Authorize(ctx, first.Session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, userID)
}

func TestRefresh_ConcurrentCallsExactlyOneWins(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	original := loginSession(t, svc, "alice")

	const callers = 2
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		wins   []*models.LoginResult
		losses []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Refresh(ctx, original.Session.ID, original.Session.AccessToken, original.Session.RefreshToken)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				losses = append(losses, err)
			} else {
				wins = append(wins, result)
			}
		}()
	}
	wg.Wait()

	require.Len(t, wins, 1, "exactly one concurrent refresh must win")
	require.Len(t, losses, 1)
	assert.ErrorIs(t, losses[0], ErrInvalidSession)
	assert.NotEqual(t, original.Session.AccessToken, wins[0].Session.AccessToken)
	assert.NotEqual(t, original.Session.RefreshToken, wins[0].Session.RefreshToken)
}
