package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkraev/tasklist/internal/models"
	"github.com/mkraev/tasklist/internal/storage"
	"github.com/mkraev/tasklist/internal/util"
)

// Error kinds surfaced by the authentication gates. The credential errors
// deliberately share one message family so responses cannot be used to
// enumerate usernames.
var (
	ErrInvalidCredentials  = errors.New("username or password is incorrect")
	ErrAccountInactive     = errors.New("user account is not active")
	ErrAccountLocked       = errors.New("user account is currently locked out")
	ErrInvalidSession      = errors.New("access token or refresh token is incorrect for this session id")
	ErrMissingToken        = errors.New("access token is missing from the header")
	ErrInvalidToken        = errors.New("access token is invalid")
	ErrAccessTokenExpired  = errors.New("access token has expired, please refresh")
	ErrRefreshTokenExpired = errors.New("refresh token has expired, please log in again")
	ErrAlreadyLoggedOut    = errors.New("failed to log out of this session, you may already be logged out")
)

const (
	maxFieldLength    = 255
	maxPasswordLength = 100
)

// AuthService owns the session lifecycle: registration, login, refresh,
// authorization and logout. It keeps no state between requests; everything
// durable lives in storage.
type AuthService struct {
	storage          storage.Storage
	tokens           *TokenService
	log              *zap.SugaredLogger
	loginDelay       time.Duration
	lockoutThreshold int
	sleep            func(time.Duration)
	now              func() time.Time
}

func NewAuthService(tokens *TokenService, store storage.Storage, cfg *util.AuthConfig, log *zap.SugaredLogger) *AuthService {
	return &AuthService{
		storage:          store,
		tokens:           tokens,
		log:              log,
		loginDelay:       cfg.LoginDelay,
		lockoutThreshold: cfg.LockoutThreshold,
		sleep:            time.Sleep,
		now:              time.Now,
	}
}

// Register creates a new user account with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserProfile, error) {
	fullName := strings.TrimSpace(req.FullName)
	username := strings.TrimSpace(req.Username)
	password := req.Password

	if len(fullName) < 1 || len(fullName) > maxFieldLength {
		return nil, util.NewResponseError(http.StatusBadRequest, "full name must be between 1 and %d characters", maxFieldLength)
	}
	if len(username) < 1 || len(username) > maxFieldLength {
		return nil, util.NewResponseError(http.StatusBadRequest, "username must be between 1 and %d characters", maxFieldLength)
	}
	if len(password) < 1 || len(password) > maxPasswordLength {
		return nil, util.NewResponseError(http.StatusBadRequest, "password must be between 1 and %d characters", maxPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt reads at most 72 bytes of input and refuses longer
		// passwords instead of truncating them.
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, util.NewResponseError(http.StatusBadRequest, "password must not exceed 72 bytes")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.storage.CreateUser(ctx, fullName, username, string(hash))
	if err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			return nil, util.NewResponseError(http.StatusConflict, "username already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	profile := user.Profile()
	return &profile, nil
}

// Login verifies the credentials and issues a new session. Every call,
// successful or not, pays the fixed delay before touching the outcome.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.LoginResult, error) {
	s.sleep(s.loginDelay)

	if len(username) < 1 || len(username) > maxFieldLength {
		return nil, util.NewResponseError(http.StatusBadRequest, "username must be between 1 and %d characters", maxFieldLength)
	}
	if len(password) < 1 || len(password) > maxFieldLength {
		return nil, util.NewResponseError(http.StatusBadRequest, "password must be between 1 and %d characters", maxFieldLength)
	}

	user, err := s.storage.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	if !user.Active {
		return nil, ErrAccountInactive
	}
	// Locked accounts never reach the password check, even with the
	// correct password.
	if user.LoginAttempts >= s.lockoutThreshold {
		return nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if incErr := s.storage.IncrementLoginAttempts(ctx, user.ID); incErr != nil {
			return nil, fmt.Errorf("increment login attempts: %w", incErr)
		}
		// The failure that reaches the threshold already reports the
		// lockout, so the counter stops exactly at the threshold.
		if user.LoginAttempts+1 >= s.lockoutThreshold {
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.NewTokenPair()
	if err != nil {
		return nil, fmt.Errorf("new token pair: %w", err)
	}

	sessionID, err := s.storage.CreateLoginSessionTx(ctx, user.ID, pair)
	if err != nil {
		return nil, fmt.Errorf("create login session: %w", err)
	}

	return &models.LoginResult{
		User: user.Profile(),
		Session: models.Session{
			ID:                 sessionID,
			UserID:             user.ID,
			AccessToken:        pair.AccessToken,
			AccessTokenExpiry:  pair.AccessTokenExpiry,
			RefreshToken:       pair.RefreshToken,
			RefreshTokenExpiry: pair.RefreshTokenExpiry,
		},
	}, nil
}

// Logout deletes the session matching both id and access token. A second
// call (or a forged token) finds nothing and reports ErrAlreadyLoggedOut.
func (s *AuthService) Logout(ctx context.Context, sessionID int64, accessToken string) error {
	if accessToken == "" {
		return ErrMissingToken
	}

	if err := s.storage.DeleteSession(ctx, sessionID, accessToken); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return ErrAlreadyLoggedOut
		}
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *AuthService) AccessTTL() time.Duration  { return s.tokens.AccessTTL() }
func (s *AuthService) RefreshTTL() time.Duration { return s.tokens.RefreshTTL() }
