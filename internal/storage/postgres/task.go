package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkraev/tasklist/internal/models"
	"github.com/mkraev/tasklist/internal/storage"
)

type TaskRepository struct {
	db storage.DBTX
}

func NewTaskRepository(db storage.DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, user_id, title, description, deadline, completed`

func scanTask(row interface{ Scan(dest ...any) error }) (*models.Task, error) {
	var (
		task        models.Task
		description sql.NullString
		deadline    sql.NullTime
	)
	err := row.Scan(&task.ID, &task.UserID, &task.Title, &description, &deadline, &task.Completed)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		task.Description = &description.String
	}
	if deadline.Valid {
		t := deadline.Time
		task.Deadline = &t
	}
	return &task, nil
}

func (r *TaskRepository) CreateTask(ctx context.Context, task models.Task) (*models.Task, error) {
	query := `INSERT INTO tasks (user_id, title, description, deadline, completed)
		VALUES ($1, $2, $3, $4, $5) RETURNING ` + taskColumns
	created, err := scanTask(r.db.QueryRowContext(
		ctx,
		query,
		task.UserID,
		task.Title,
		task.Description,
		task.Deadline,
		task.Completed,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}
	return created, nil
}

func (r *TaskRepository) GetTask(ctx context.Context, userID, taskID int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, taskID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (r *TaskRepository) ListTasks(ctx context.Context, userID int64, completed *bool) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{userID}
	if completed != nil {
		query += ` AND completed = $2`
		args = append(args, *completed)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

func (r *TaskRepository) CountTasks(ctx context.Context, userID int64) (int64, error) {
	var count int64
	query := `SELECT COUNT(id) FROM tasks WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

func (r *TaskRepository) ListTasksPage(ctx context.Context, userID int64, limit, offset int64) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY id LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks page: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

func (r *TaskRepository) UpdateTask(ctx context.Context, task models.Task) error {
	query := `UPDATE tasks SET title = $1, description = $2, deadline = $3, completed = $4
		WHERE id = $5 AND user_id = $6`
	res, err := r.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Deadline,
		task.Completed,
		task.ID,
		task.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteTask(ctx context.Context, userID, taskID int64) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrTaskNotFound
	}
	return nil
}

func collectTasks(rows *sql.Rows) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}
