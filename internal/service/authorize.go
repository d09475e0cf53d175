package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkraev/tasklist/internal/storage"
)

// Authorize resolves a bearer token to the owning user id. It mutates
// nothing and is safe to call on every request. The expiry error is kept
// distinct from the invalid-token one so clients know to refresh instead
// of logging in again.
func (s *AuthService) Authorize(ctx context.Context, bearerToken string) (int64, error) {
	if bearerToken == "" {
		return 0, ErrMissingToken
	}

	su, err := s.storage.GetSessionByAccessToken(ctx, bearerToken)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return 0, ErrInvalidToken
		}
		return 0, fmt.Errorf("get session by access token: %w", err)
	}

	if !su.Active {
		return 0, ErrAccountInactive
	}
	if su.LoginAttempts >= s.lockoutThreshold {
		return 0, ErrAccountLocked
	}
	if su.AccessTokenExpiry.Before(s.now()) {
		return 0, ErrAccessTokenExpired
	}

	return su.UserID, nil
}
