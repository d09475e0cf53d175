package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/mkraev/tasklist/internal/models"
	"github.com/mkraev/tasklist/internal/storage"
)

type Storage struct {
	db *sql.DB
	*UserRepository
	*SessionRepository
	*TaskRepository
}

func NewStorage(db *sql.DB) *Storage {
	return &Storage{
		db:                db,
		UserRepository:    NewUserRepository(db),
		SessionRepository: NewSessionRepository(db),
		TaskRepository:    NewTaskRepository(db),
	}
}

// CreateLoginSessionTx resets the attempt counter and inserts the session
// in one transaction. A crash between the two leaves the pre-login state.
func (s *Storage) CreateLoginSessionTx(ctx context.Context, userID int64, pair models.TokenPair) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	userRepoTx := NewUserRepository(tx)
	sessionRepoTx := NewSessionRepository(tx)

	if err := userRepoTx.resetLoginAttempts(ctx, userID); err != nil {
		return 0, fmt.Errorf("reset login attempts in tx: %w", err)
	}

	sessionID, err := sessionRepoTx.createSession(ctx, userID, pair)
	if err != nil {
		return 0, fmt.Errorf("create session in tx: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return sessionID, nil
}

const uniqueViolation = "23505"

// translateUniqueViolation maps a postgres unique-constraint error to the
// given sentinel so generation collisions surface loudly.
func translateUniqueViolation(err, sentinel error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	return err
}

var _ storage.Storage = (*Storage)(nil)
