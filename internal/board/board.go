// Package board holds the client-side copy of the task list: the cards the
// user sees and the badges updated in place after a status toggle.
package board

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/javiermolinar/taskdesk/internal/task"
)

// Board is safe for concurrent use.
type Board struct {
	mu    sync.RWMutex
	tasks []*task.Task
	byID  map[int64]*task.Task
}

// New creates an empty board.
func New() *Board {
	return &Board{byID: make(map[int64]*task.Task)}
}

// Apply replaces the board content, keeping the server order.
func (b *Board) Apply(tasks []*task.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tasks = make([]*task.Task, 0, len(tasks))
	b.byID = make(map[int64]*task.Task, len(tasks))
	for _, t := range tasks {
		if t == nil {
			continue
		}
		c := *t
		b.tasks = append(b.tasks, &c)
		b.byID[c.ID] = &c
	}
}

// Tasks returns a copy of the cards in display order.
func (b *Board) Tasks() []*task.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneAll(b.tasks)
}

// Filtered returns the cards matching f.
func (b *Board) Filtered(f task.Filter) []*task.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []*task.Task
	for _, t := range b.tasks {
		if f.Matches(t) {
			c := *t
			out = append(out, &c)
		}
	}
	return out
}

// Get returns a copy of the card with id.
func (b *Board) Get(id int64) (*task.Task, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.byID[id]
	if !ok {
		return nil, false
	}
	c := *t
	return &c, true
}

// Len returns the number of cards.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tasks)
}

// SetStatus updates the status and badge of a card. It reports false when
// the card is not on the board.
func (b *Board) SetStatus(id int64, status task.Status, display string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.byID[id]
	if !ok {
		return false
	}
	t.Status = status
	t.StatusDisplay = display
	return true
}

// Stats summarizes the board at now.
func (b *Board) Stats(now time.Time) task.Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return task.Summarize(b.tasks, now)
}

// ByDue returns the unfinished cards that have a due date, soonest first.
func (b *Board) ByDue() []*task.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []*task.Task
	for _, t := range b.tasks {
		if t.Due != nil && !t.IsDone() {
			c := *t
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Due.Before(*out[j].Due) })
	return out
}

// DueLabel describes the due date of t relative to now, e.g. "in 3 days"
// or "overdue by 2 hours". Tasks without a due date get "".
func DueLabel(t *task.Task, now time.Time) string {
	if t.Due == nil {
		return ""
	}
	if t.IsOverdue(now) {
		return fmt.Sprintf("overdue by %s", strings.TrimSpace(humanize.RelTime(*t.Due, now, "", "")))
	}
	return humanize.RelTime(*t.Due, now, "ago", "from now")
}

func cloneAll(tasks []*task.Task) []*task.Task {
	out := make([]*task.Task, len(tasks))
	for i, t := range tasks {
		c := *t
		out[i] = &c
	}
	return out
}
