package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize_Success(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	result := loginSession(t, svc, "alice")

	userID, err := svc.Authorize(ctx, result.Session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, userID)

	// Pure read gate: calling again yields the same answer.
	again, err := svc.Authorize(ctx, result.Session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, again)
}

func TestAuthorize_MissingToken(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, err := svc.Authorize(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestAuthorize_UnknownToken(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, err := svc.Authorize(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthorize_ExpiryBoundary(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	result := loginSession(t, svc, "alice")
	expiry := result.Session.AccessTokenExpiry

	// One second before expiry the token still authorizes.
	svc.now = func() time.Time { return expiry.Add(-time.Second) }
	_, err := svc.Authorize(ctx, result.Session.AccessToken)
	require.NoError(t, err)

	// One second past expiry it is expired, distinctly from invalid, so
	// the client knows to refresh instead of logging in again.
	svc.now = func() time.Time { return expiry.Add(time.Second) }
	_, err = svc.Authorize(ctx, result.Session.AccessToken)
	assert.ErrorIs(t, err, ErrAccessTokenExpired)
}

func TestAuthorize_DeactivatedAccount(t *testing.T) {
	svc, store := newTestAuth(t)
	ctx := context.Background()

	result := loginSession(t, svc, "alice")

	// Deactivation bites immediately, even though the token itself is
	// still within its lifetime.
	store.SetUserActive(result.User.ID, false)

	_, err := svc.Authorize(ctx, result.Session.AccessToken)
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestAuthorize_LockedAccount(t *testing.T) {
	svc, store := newTestAuth(t)
	ctx := context.Background()

	result := loginSession(t, svc, "alice")
	for i := 0; i < svc.lockoutThreshold; i++ {
		require.NoError(t, store.IncrementLoginAttempts(ctx, result.User.ID))
	}

	_, err := svc.Authorize(ctx, result.Session.AccessToken)
	assert.ErrorIs(t, err, ErrAccountLocked)
}
