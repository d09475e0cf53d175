package models

import (
	"fmt"
	"time"
)

// DeadlineLayout is the wire format for task deadlines (day first).
const DeadlineLayout = "02/01/2006 15:04"

// Task is a row in the tasks table, always owned by exactly one user.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Description *string
	Deadline    *time.Time
	Completed   bool
}

// TaskPage is one page of a user's tasks plus pagination metadata.
type TaskPage struct {
	Tasks           []Task
	RowsReturned    int
	TotalRows       int64
	TotalPages      int64
	HasNextPage     bool
	HasPreviousPage bool
}

// CompletedFlag renders the boolean completed column in the Y/N wire form.
func CompletedFlag(completed bool) string {
	if completed {
		return "Y"
	}
	return "N"
}

// ParseCompletedFlag parses the Y/N wire form of the completed field.
func ParseCompletedFlag(flag string) (bool, error) {
	switch flag {
	case "Y":
		return true, nil
	case "N":
		return false, nil
	default:
		return false, fmt.Errorf("completed must be Y or N, got %q", flag)
	}
}
