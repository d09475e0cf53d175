package models

type RegisterRequest struct {
	FullName string `json:"fullname"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// SessionResponse mirrors the login response: user profile fields plus the
// session id and both tokens with their lifetimes in seconds.
type SessionResponse struct {
	UserID                int64  `json:"user_id"`
	Username              string `json:"username"`
	FullName              string `json:"fullname"`
	SessionID             int64  `json:"session_id"`
	AccessToken           string `json:"access_token"`
	AccessTokenExpiresIn  int64  `json:"access_token_expires_in"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
}

type TaskCreateRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Deadline    *string `json:"deadline"`
	Completed   *string `json:"completed"`
}

// TaskPatchRequest carries a partial update; nil means "leave unchanged".
type TaskPatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Deadline    *string `json:"deadline"`
	Completed   *string `json:"completed"`
}

type TaskResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Deadline    *string `json:"deadline"`
	Completed   string  `json:"completed"`
}

func NewTaskResponse(t Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   CompletedFlag(t.Completed),
	}
	if t.Deadline != nil {
		deadline := t.Deadline.Format(DeadlineLayout)
		resp.Deadline = &deadline
	}
	return resp
}

type TaskListResponse struct {
	RowsReturned int            `json:"rows_returned"`
	Tasks        []TaskResponse `json:"tasks"`
}

type TaskPageResponse struct {
	RowsReturned    int            `json:"rows_returned"`
	TotalRows       int64          `json:"total_rows"`
	TotalPages      int64          `json:"total_pages"`
	HasNextPage     bool           `json:"has_next_page"`
	HasPreviousPage bool           `json:"has_previous_page"`
	Tasks           []TaskResponse `json:"tasks"`
}

func NewTaskListResponse(tasks []Task) TaskListResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t))
	}
	return TaskListResponse{RowsReturned: len(out), Tasks: out}
}
