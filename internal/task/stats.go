package task

import (
	"strings"
	"time"
)

// Stats counts tasks per status, as shown above the task list.
type Stats struct {
	Total   int `json:"total" yaml:"total"`
	Todo    int `json:"todo" yaml:"todo"`
	Doing   int `json:"doing" yaml:"doing"`
	Done    int `json:"done" yaml:"done"`
	Overdue int `json:"overdue" yaml:"overdue"`
}

// Summarize computes Stats for tasks at now.
func Summarize(tasks []*Task, now time.Time) Stats {
	var s Stats
	for _, t := range tasks {
		s.Total++
		switch t.Status {
		case StatusTodo:
			s.Todo++
		case StatusDoing:
			s.Doing++
		case StatusDone:
			s.Done++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	return s
}

// Completion returns the share of done tasks in [0, 1].
func (s Stats) Completion() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Done) / float64(s.Total)
}

// statusLabels maps the labels the server may render on a status badge.
var statusLabels = map[string]Status{
	"to do":       StatusTodo,
	"todo":        StatusTodo,
	"à faire":     StatusTodo,
	"in progress": StatusDoing,
	"doing":       StatusDoing,
	"en cours":    StatusDoing,
	"done":        StatusDone,
	"terminé":     StatusDone,
}

// StatusFromDisplay maps a rendered status label back to a Status.
func StatusFromDisplay(label string) (Status, bool) {
	s, ok := statusLabels[strings.ToLower(strings.TrimSpace(label))]
	return s, ok
}

// Matches reports whether t passes f. Search is a case-insensitive
// substring match on title and description.
func (f Filter) Matches(t *Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q)
	}
	return true
}
