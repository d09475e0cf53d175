package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mkraev/tasklist/internal/models"
	"github.com/mkraev/tasklist/internal/storage"
	"github.com/mkraev/tasklist/internal/util"
)

var ErrTaskNotFound = errors.New("task not found")

const maxDescriptionLength = 16777215

// TaskService is the resource layer behind the authorization gate. Every
// query it issues carries the authorized user id; it never trusts a user
// identifier supplied by the client.
type TaskService struct {
	storage  storage.Storage
	log      *zap.SugaredLogger
	pageSize int64
}

func NewTaskService(store storage.Storage, log *zap.SugaredLogger) *TaskService {
	return &TaskService{
		storage:  store,
		log:      log,
		pageSize: util.TasksPerPage,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, userID int64, req models.TaskCreateRequest) (*models.Task, error) {
	task := models.Task{UserID: userID}

	if err := applyTitle(&task, req.Title); err != nil {
		return nil, err
	}
	if err := applyDescription(&task, req.Description); err != nil {
		return nil, err
	}
	if err := applyDeadline(&task, req.Deadline); err != nil {
		return nil, err
	}
	if req.Completed != nil {
		if err := applyCompleted(&task, *req.Completed); err != nil {
			return nil, err
		}
	}

	created, err := s.storage.CreateTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

func (s *TaskService) GetTask(ctx context.Context, userID, taskID int64) (*models.Task, error) {
	task, err := s.storage.GetTask(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// ListTasks returns the user's tasks; completedFlag is "" for all, or the
// Y/N wire value to filter on.
func (s *TaskService) ListTasks(ctx context.Context, userID int64, completedFlag string) ([]models.Task, error) {
	var completed *bool
	if completedFlag != "" {
		value, err := models.ParseCompletedFlag(completedFlag)
		if err != nil {
			return nil, util.NewResponseError(http.StatusBadRequest, "completed filter must be Y or N")
		}
		completed = &value
	}

	tasks, err := s.storage.ListTasks(ctx, userID, completed)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListTasksPage returns one fixed-size page. Page numbers start at 1; an
// empty task list still has one (empty) page, and a page past the end is
// not found.
func (s *TaskService) ListTasksPage(ctx context.Context, userID, page int64) (*models.TaskPage, error) {
	if page < 1 {
		return nil, util.NewResponseError(http.StatusBadRequest, "page number must be a positive integer")
	}

	total, err := s.storage.CountTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	totalPages := (total + s.pageSize - 1) / s.pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		return nil, util.NewResponseError(http.StatusNotFound, "page not found")
	}

	offset := (page - 1) * s.pageSize
	tasks, err := s.storage.ListTasksPage(ctx, userID, s.pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list tasks page: %w", err)
	}

	return &models.TaskPage{
		Tasks:           tasks,
		RowsReturned:    len(tasks),
		TotalRows:       total,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}, nil
}

// UpdateTask applies a partial update. At least one field must be present;
// the read and the conditioned write are both scoped by the owner.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID int64, req models.TaskPatchRequest) (*models.Task, error) {
	if req.Title == nil && req.Description == nil && req.Deadline == nil && req.Completed == nil {
		return nil, util.NewResponseError(http.StatusBadRequest, "no task fields provided to update")
	}

	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if err := applyTitle(task, *req.Title); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		if err := applyDescription(task, req.Description); err != nil {
			return nil, err
		}
	}
	if req.Deadline != nil {
		if err := applyDeadline(task, req.Deadline); err != nil {
			return nil, err
		}
	}
	if req.Completed != nil {
		if err := applyCompleted(task, *req.Completed); err != nil {
			return nil, err
		}
	}

	if err := s.storage.UpdateTask(ctx, *task); err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID int64) error {
	if err := s.storage.DeleteTask(ctx, userID, taskID); err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func applyTitle(task *models.Task, title string) error {
	if len(title) < 1 || len(title) > maxFieldLength {
		return util.NewResponseError(http.StatusBadRequest, "title must be between 1 and %d characters", maxFieldLength)
	}
	task.Title = title
	return nil
}

func applyDescription(task *models.Task, description *string) error {
	if description == nil {
		task.Description = nil
		return nil
	}
	if len(*description) < 1 || len(*description) > maxDescriptionLength {
		return util.NewResponseError(http.StatusBadRequest, "description must be between 1 and %d characters", maxDescriptionLength)
	}
	task.Description = description
	return nil
}

func applyDeadline(task *models.Task, deadline *string) error {
	if deadline == nil {
		task.Deadline = nil
		return nil
	}
	parsed, err := time.ParseInLocation(models.DeadlineLayout, *deadline, time.Local)
	if err != nil {
		return util.NewResponseError(http.StatusBadRequest, "deadline must use the format %s", models.DeadlineLayout)
	}
	task.Deadline = &parsed
	return nil
}

func applyCompleted(task *models.Task, flag string) error {
	completed, err := models.ParseCompletedFlag(flag)
	if err != nil {
		return util.NewResponseError(http.StatusBadRequest, "completed must be Y or N")
	}
	task.Completed = completed
	return nil
}
