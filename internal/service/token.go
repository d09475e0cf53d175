package service

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/mkraev/tasklist/internal/models"
	"github.com/mkraev/tasklist/internal/util"
)

// TokenService generates opaque bearer tokens and stamps their expiries.
// Tokens are random, not derived from any counter; uniqueness is backed by
// the UNIQUE columns in the sessions table.
type TokenService struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	randRead   func([]byte) (int, error)
}

func NewTokenService(cfg *util.TokenConfig) *TokenService {
	return &TokenService{
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
		randRead:   rand.Read,
	}
}

// NewTokenPair generates an access/refresh token pair from two independent
// random sequences, with expiries measured from a single "now".
func (ts *TokenService) NewTokenPair() (models.TokenPair, error) {
	now := ts.now()

	accessToken, err := ts.newToken(now)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("generate access token: %w", err)
	}
	refreshToken, err := ts.newToken(now)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}

	return models.TokenPair{
		AccessToken:        accessToken,
		AccessTokenExpiry:  now.Add(ts.accessTTL),
		RefreshToken:       refreshToken,
		RefreshTokenExpiry: now.Add(ts.refreshTTL),
	}, nil
}

func (ts *TokenService) AccessTTL() time.Duration  { return ts.accessTTL }
func (ts *TokenService) RefreshTTL() time.Duration { return ts.refreshTTL }

// newToken encodes 24 bytes of CSPRNG entropy plus the unix timestamp into
// a printable bearer credential.
func (ts *TokenService) newToken(now time.Time) (string, error) {
	raw := make([]byte, util.TokenEntropyBytes)
	if _, err := ts.randRead(raw); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	payload := hex.EncodeToString(raw) + strconv.FormatInt(now.Unix(), 10)
	return base64.StdEncoding.EncodeToString([]byte(payload)), nil
}
