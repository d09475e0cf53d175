package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mkraev/tasklist/internal/models"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrUsernameTaken   = errors.New("username already exists")

	// ErrTokenConflict reports a unique-constraint violation on a token
	// column. With 24 bytes of entropy this should never happen; when it
	// does it must fail loudly instead of overwriting another session.
	ErrTokenConflict = errors.New("token value already in use")
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Storage interface {
	UserRepository
	SessionRepository
	TaskRepository

	// CreateLoginSessionTx resets the user's login attempt counter and
	// inserts the new session as a single atomic transaction. Returns the
	// new session id.
	CreateLoginSessionTx(ctx context.Context, userID int64, pair models.TokenPair) (int64, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, fullName, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// IncrementLoginAttempts adds one to the attempt counter as a single
	// atomic write.
	IncrementLoginAttempts(ctx context.Context, userID int64) error
}

type SessionRepository interface {
	// GetSessionWithUser matches all three of session id, access token and
	// refresh token, joined with the owning user. A mismatch on any field
	// is ErrSessionNotFound.
	GetSessionWithUser(ctx context.Context, sessionID int64, accessToken, refreshToken string) (*models.SessionUser, error)
	GetSessionByAccessToken(ctx context.Context, accessToken string) (*models.SessionUser, error)
	// RotateSessionTokens replaces both tokens and both expiries in one
	// update conditioned on the previous token values. If a concurrent
	// rotation already won, no row matches and ErrSessionNotFound is
	// returned.
	RotateSessionTokens(ctx context.Context, sessionID, userID int64, oldAccessToken, oldRefreshToken string, pair models.TokenPair) error
	// DeleteSession removes the session matching both id and access token;
	// ErrSessionNotFound if nothing matched.
	DeleteSession(ctx context.Context, sessionID int64, accessToken string) error
}

type TaskRepository interface {
	CreateTask(ctx context.Context, task models.Task) (*models.Task, error)
	GetTask(ctx context.Context, userID, taskID int64) (*models.Task, error)
	// ListTasks returns all of the user's tasks, optionally filtered by
	// completion state.
	ListTasks(ctx context.Context, userID int64, completed *bool) ([]models.Task, error)
	CountTasks(ctx context.Context, userID int64) (int64, error)
	ListTasksPage(ctx context.Context, userID int64, limit, offset int64) ([]models.Task, error)
	// UpdateTask writes title/description/deadline/completed of the task
	// matching both id and owner.
	UpdateTask(ctx context.Context, task models.Task) error
	DeleteTask(ctx context.Context, userID, taskID int64) error
}
