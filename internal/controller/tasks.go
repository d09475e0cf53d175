package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkraev/tasklist/internal/models"
)

// authorizedUserID reads the user id the bearer middleware stored on the
// context. Task handlers never take a user id from the request itself.
func authorizedUserID(ctx echo.Context) int64 {
	id, _ := ctx.Get(models.CtxUserIDKey).(int64)
	return id
}

// (POST /v1/tasks).
func (c *Controller) CreateTask(ctx echo.Context) error {
	var req models.TaskCreateRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	task, err := c.tasks.CreateTask(ctx.Request().Context(), authorizedUserID(ctx), req)
	if err != nil {
		return err
	}

	return sendSuccess(ctx, http.StatusCreated, "Task created", models.NewTaskResponse(*task))
}

// (GET /v1/tasks/:id).
func (c *Controller) GetTask(ctx echo.Context) error {
	taskID, err := pathID(ctx, "id", "task id")
	if err != nil {
		return err
	}

	task, err := c.tasks.GetTask(ctx.Request().Context(), authorizedUserID(ctx), taskID)
	if err != nil {
		return err
	}

	return sendSuccess(ctx, http.StatusOK, "Task retrieved", models.NewTaskResponse(*task))
}

// (GET /v1/tasks?completed=Y|N).
func (c *Controller) ListTasks(ctx echo.Context) error {
	tasks, err := c.tasks.ListTasks(ctx.Request().Context(), authorizedUserID(ctx), ctx.QueryParam("completed"))
	if err != nil {
		return err
	}

	return sendSuccess(ctx, http.StatusOK, "Tasks retrieved", models.NewTaskListResponse(tasks))
}

// (GET /v1/tasks/page/:page).
func (c *Controller) ListTasksPage(ctx echo.Context) error {
	page, err := pathID(ctx, "page", "page number")
	if err != nil {
		return err
	}

	taskPage, err := c.tasks.ListTasksPage(ctx.Request().Context(), authorizedUserID(ctx), page)
	if err != nil {
		return err
	}

	tasks := make([]models.TaskResponse, 0, len(taskPage.Tasks))
	for _, t := range taskPage.Tasks {
		tasks = append(tasks, models.NewTaskResponse(t))
	}

	return sendSuccess(ctx, http.StatusOK, "Tasks retrieved", models.TaskPageResponse{
		RowsReturned:    taskPage.RowsReturned,
		TotalRows:       taskPage.TotalRows,
		TotalPages:      taskPage.TotalPages,
		HasNextPage:     taskPage.HasNextPage,
		HasPreviousPage: taskPage.HasPreviousPage,
		Tasks:           tasks,
	})
}

// (PATCH /v1/tasks/:id).
func (c *Controller) UpdateTask(ctx echo.Context) error {
	taskID, err := pathID(ctx, "id", "task id")
	if err != nil {
		return err
	}

	var req models.TaskPatchRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	task, err := c.tasks.UpdateTask(ctx.Request().Context(), authorizedUserID(ctx), taskID, req)
	if err != nil {
		return err
	}

	return sendSuccess(ctx, http.StatusOK, "Task updated", models.NewTaskResponse(*task))
}

// (DELETE /v1/tasks/:id).
func (c *Controller) DeleteTask(ctx echo.Context) error {
	taskID, err := pathID(ctx, "id", "task id")
	if err != nil {
		return err
	}

	if err := c.tasks.DeleteTask(ctx.Request().Context(), authorizedUserID(ctx), taskID); err != nil {
		return err
	}

	return sendSuccess(ctx, http.StatusOK, "Task deleted", map[string]int64{"task_id": taskID})
}
