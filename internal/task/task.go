// Package task defines the core domain types for taskdesk.
package task

import (
	"errors"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrTitleTooLong    = errors.New("title cannot exceed 200 characters")
	ErrInvalidStatus   = errors.New("status must be 'todo', 'doing' or 'done'")
	ErrInvalidPriority = errors.New("priority must be 'low', 'medium', 'high' or 'urgent'")
)

// Domain errors.
var (
	ErrTaskNotFound = errors.New("task not found")
)

// MaxTitleLength mirrors the server-side column size.
const MaxTitleLength = 200

// Status represents the state of a task.
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// ParseStatus parses a status value as sent by the server.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusTodo:
		return StatusTodo, nil
	case StatusDoing:
		return StatusDoing, nil
	case StatusDone:
		return StatusDone, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Next returns the status the server moves a task to on toggle:
// todo -> doing -> done -> todo. Unknown values restart at todo.
func (s Status) Next() Status {
	switch s {
	case StatusTodo:
		return StatusDoing
	case StatusDoing:
		return StatusDone
	default:
		return StatusTodo
	}
}

// Display returns the human-readable label.
func (s Status) Display() string {
	switch s {
	case StatusTodo:
		return "To do"
	case StatusDoing:
		return "In progress"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// Priority represents how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority parses a priority value. Empty defaults to medium.
func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case "", PriorityMedium:
		return PriorityMedium, nil
	case PriorityLow:
		return PriorityLow, nil
	case PriorityHigh:
		return PriorityHigh, nil
	case PriorityUrgent:
		return PriorityUrgent, nil
	default:
		return "", ErrInvalidPriority
	}
}

// Display returns the human-readable label.
func (p Priority) Display() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityUrgent:
		return "Urgent"
	default:
		return string(p)
	}
}

// Task is a task as known to the client.
type Task struct {
	ID          int64
	Title       string
	Description string
	Status      Status
	// StatusDisplay is the label last reported by the server. It wins over
	// Status.Display() so the board shows what the web UI shows.
	StatusDisplay string
	Priority      Priority
	Due           *time.Time
	CreatedAt     time.Time
}

// New creates a new Task with validation.
func New(title, description, priority string, due *time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if len([]rune(title)) > MaxTitleLength {
		return nil, ErrTitleTooLong
	}

	p, err := ParsePriority(priority)
	if err != nil {
		return nil, err
	}

	return &Task{
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      StatusTodo,
		Priority:    p,
		Due:         due,
		CreatedAt:   time.Now(),
	}, nil
}

// Badge returns the status label to render on the task card.
func (t *Task) Badge() string {
	if t.StatusDisplay != "" {
		return t.StatusDisplay
	}
	return t.Status.Display()
}

// IsDone returns true if the task is completed.
func (t *Task) IsDone() bool {
	return t.Status == StatusDone
}

// IsOverdue reports whether the due date has passed on an unfinished task.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Due == nil || t.IsDone() {
		return false
	}
	return now.After(*t.Due)
}
