package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkraev/tasklist/internal/models"
	"github.com/mkraev/tasklist/internal/storage"
)

type UserRepository struct {
	db storage.DBTX
}

func NewUserRepository(db storage.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, fullName, username, passwordHash string) (*models.User, error) {
	var user models.User
	query := `INSERT INTO users (full_name, username, password_hash) VALUES ($1, $2, $3)
		RETURNING id, username, full_name, password_hash, active, login_attempts`
	err := r.db.QueryRowContext(ctx, query, fullName, username, passwordHash).Scan(
		&user.ID,
		&user.Username,
		&user.FullName,
		&user.PasswordHash,
		&user.Active,
		&user.LoginAttempts,
	)
	if err != nil {
		return nil, translateUniqueViolation(fmt.Errorf("failed to create user: %w", err), storage.ErrUsernameTaken)
	}
	return &user, nil
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	query := `SELECT id, username, full_name, password_hash, active, login_attempts FROM users WHERE username = $1`
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.FullName,
		&user.PasswordHash,
		&user.Active,
		&user.LoginAttempts,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) IncrementLoginAttempts(ctx context.Context, userID int64) error {
	query := `UPDATE users SET login_attempts = login_attempts + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to increment login attempts: %w", err)
	}
	return nil
}

func (r *UserRepository) resetLoginAttempts(ctx context.Context, userID int64) error {
	query := `UPDATE users SET login_attempts = 0 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}
