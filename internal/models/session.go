package models

import "time"

// TokenPair is a freshly generated access/refresh token set with absolute
// expiries. Both tokens are always generated and persisted together.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Session binds a user to one active token pair. A user may hold any
// number of concurrent sessions (one per device/login).
type Session struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	AccessToken        string    `json:"access_token"`
	AccessTokenExpiry  time.Time `json:"access_token_expiry"`
	RefreshToken       string    `json:"refresh_token"`
	RefreshTokenExpiry time.Time `json:"refresh_token_expiry"`
}

// SessionUser is a session joined with the account-health fields of its
// owning user, as read by the refresh and authorize gates.
type SessionUser struct {
	Session
	Username      string
	FullName      string
	Active        bool
	LoginAttempts int
}

// LoginResult is the shared success shape of Login and Refresh.
type LoginResult struct {
	User    UserProfile
	Session Session
}

const (
	// CtxUserIDKey is the echo context key the bearer middleware stores
	// the authorized user id under.
	CtxUserIDKey = "userID"
)
