package task

import "context"

// ToggleResult is the outcome of a status toggle as reported by the server.
type ToggleResult struct {
	ID            int64
	NewStatus     Status
	StatusDisplay string
}

// Draft holds the fields submitted when creating a task.
type Draft struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Due         string // "YYYY-MM-DD HH:MM" or empty
}

// Filter narrows the task list the same way the server's list page does.
// Empty fields match everything.
type Filter struct {
	Status   Status
	Priority Priority
	Search   string
}

// Repository defines the remote operations the client can perform on tasks.
type Repository interface {
	// ListTasks returns the tasks shown on the server's task list.
	ListTasks(ctx context.Context, f Filter) ([]*Task, error)

	// ToggleStatus advances a task to its next status.
	ToggleStatus(ctx context.Context, id int64) (*ToggleResult, error)

	// CreateTask submits a new task.
	CreateTask(ctx context.Context, d Draft) error
}
