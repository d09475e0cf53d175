package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkraev/tasklist/internal/models"
	"github.com/mkraev/tasklist/internal/storage"
)

type SessionRepository struct {
	db storage.DBTX
}

func NewSessionRepository(db storage.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) createSession(ctx context.Context, userID int64, pair models.TokenPair) (int64, error) {
	query := `INSERT INTO sessions (user_id, access_token, access_token_expiry, refresh_token, refresh_token_expiry)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int64
	err := r.db.QueryRowContext(
		ctx,
		query,
		userID,
		pair.AccessToken,
		pair.AccessTokenExpiry,
		pair.RefreshToken,
		pair.RefreshTokenExpiry,
	).Scan(&id)
	if err != nil {
		return 0, translateUniqueViolation(fmt.Errorf("failed to insert session: %w", err), storage.ErrTokenConflict)
	}
	return id, nil
}

func (r *SessionRepository) GetSessionWithUser(
	ctx context.Context,
	sessionID int64,
	accessToken, refreshToken string,
) (*models.SessionUser, error) {
	var su models.SessionUser
	query := `SELECT s.id, s.user_id, s.access_token, s.access_token_expiry, s.refresh_token, s.refresh_token_expiry,
			u.username, u.full_name, u.active, u.login_attempts
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.id = $1 AND s.access_token = $2 AND s.refresh_token = $3`
	err := r.db.QueryRowContext(ctx, query, sessionID, accessToken, refreshToken).Scan(
		&su.ID,
		&su.UserID,
		&su.AccessToken,
		&su.AccessTokenExpiry,
		&su.RefreshToken,
		&su.RefreshTokenExpiry,
		&su.Username,
		&su.FullName,
		&su.Active,
		&su.LoginAttempts,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &su, nil
}

func (r *SessionRepository) GetSessionByAccessToken(ctx context.Context, accessToken string) (*models.SessionUser, error) {
	var su models.SessionUser
	query := `SELECT s.id, s.user_id, s.access_token, s.access_token_expiry, s.refresh_token, s.refresh_token_expiry,
			u.username, u.full_name, u.active, u.login_attempts
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.access_token = $1`
	err := r.db.QueryRowContext(ctx, query, accessToken).Scan(
		&su.ID,
		&su.UserID,
		&su.AccessToken,
		&su.AccessTokenExpiry,
		&su.RefreshToken,
		&su.RefreshTokenExpiry,
		&su.Username,
		&su.FullName,
		&su.Active,
		&su.LoginAttempts,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session by access token: %w", err)
	}
	return &su, nil
}

// RotateSessionTokens is a compare-and-swap: the update only matches while
// the previous token pair is still in place, so of two concurrent refresh
// calls exactly one can win.
func (r *SessionRepository) RotateSessionTokens(
	ctx context.Context,
	sessionID, userID int64,
	oldAccessToken, oldRefreshToken string,
	pair models.TokenPair,
) error {
	query := `UPDATE sessions
		SET access_token = $1, access_token_expiry = $2, refresh_token = $3, refresh_token_expiry = $4
		WHERE id = $5 AND user_id = $6 AND access_token = $7 AND refresh_token = $8`
	res, err := r.db.ExecContext(
		ctx,
		query,
		pair.AccessToken,
		pair.AccessTokenExpiry,
		pair.RefreshToken,
		pair.RefreshTokenExpiry,
		sessionID,
		userID,
		oldAccessToken,
		oldRefreshToken,
	)
	if err != nil {
		return translateUniqueViolation(fmt.Errorf("failed to rotate session tokens: %w", err), storage.ErrTokenConflict)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) DeleteSession(ctx context.Context, sessionID int64, accessToken string) error {
	query := `DELETE FROM sessions WHERE id = $1 AND access_token = $2`
	res, err := r.db.ExecContext(ctx, query, sessionID, accessToken)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrSessionNotFound
	}
	return nil
}
