package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkraev/tasklist/internal/models"
	"github.com/mkraev/tasklist/internal/storage"
)

// Refresh rotates the session's token pair. The lookup must match session
// id, access token and refresh token simultaneously; the access token may
// already be expired, that is what refresh is for. The rotation itself is
// conditioned on the previous pair still being in place, so of two
// concurrent calls exactly one wins and the other gets ErrInvalidSession.
func (s *AuthService) Refresh(ctx context.Context, sessionID int64, accessToken, refreshToken string) (*models.LoginResult, error) {
	if accessToken == "" {
		return nil, ErrMissingToken
	}
	if refreshToken == "" {
		return nil, ErrInvalidSession
	}

	su, err := s.storage.GetSessionWithUser(ctx, sessionID, accessToken, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if !su.Active {
		return nil, ErrAccountInactive
	}
	if su.LoginAttempts >= s.lockoutThreshold {
		return nil, ErrAccountLocked
	}
	if su.RefreshTokenExpiry.Before(s.now()) {
		return nil, ErrRefreshTokenExpired
	}

	pair, err := s.tokens.NewTokenPair()
	if err != nil {
		return nil, fmt.Errorf("new token pair: %w", err)
	}

	err = s.storage.RotateSessionTokens(ctx, su.ID, su.UserID, accessToken, refreshToken, pair)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			// Lost the race against a concurrent refresh.
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("rotate session tokens: %w", err)
	}

	return &models.LoginResult{
		User: models.UserProfile{ID: su.UserID, Username: su.Username, FullName: su.FullName},
		Session: models.Session{
			ID:                 su.ID,
			UserID:             su.UserID,
			AccessToken:        pair.AccessToken,
			AccessTokenExpiry:  pair.AccessTokenExpiry,
			RefreshToken:       pair.RefreshToken,
			RefreshTokenExpiry: pair.RefreshTokenExpiry,
		},
	}, nil
}
