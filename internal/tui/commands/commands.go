// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/taskdesk/internal/insights"
	"github.com/javiermolinar/taskdesk/internal/notify"
	"github.com/javiermolinar/taskdesk/internal/task"
)

// Clipboard feedback.
const (
	CopiedMessage     = "Text copied to clipboard"
	CopyFailedMessage = "Could not copy"
	CopyNotifyTimeout = 2 * time.Second
)

// Actions is the server surface the TUI drives.
type Actions interface {
	ToggleStatus(ctx context.Context, id int64) (*task.ToggleResult, error)
	Insights(ctx context.Context) (*insights.Report, error)
	Refresh(ctx context.Context, f task.Filter) ([]*task.Task, error)
	CreateTask(ctx context.Context, d task.Draft) error
}

// ThemeToggler switches the color theme.
type ThemeToggler interface {
	Toggle(ctx context.Context) (string, error)
}

// TasksLoadedMsg is sent when the task list was fetched.
type TasksLoadedMsg struct {
	Tasks  []*task.Task
	Filter task.Filter
}

// ToggledMsg is sent when a task status was changed.
type ToggledMsg struct {
	Result *task.ToggleResult
}

// InsightsMsg is sent when insights are ready.
type InsightsMsg struct {
	Report *insights.Report
}

// CreatedMsg is sent when a task was created.
type CreatedMsg struct {
	Draft task.Draft
}

// ThemeChangedMsg is sent after the theme was toggled.
type ThemeChangedMsg struct {
	Name string
}

// CopiedMsg is sent after a clipboard write.
type CopiedMsg struct {
	Err error
}

// ErrMsg is sent when a command failed. Notifications for the failure have
// already been shown.
type ErrMsg struct {
	Op  string
	Err error
}

// Refresh loads the task list.
func Refresh(a Actions, f task.Filter, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()

		tasks, err := a.Refresh(ctx, f)
		if err != nil {
			return ErrMsg{Op: "refresh", Err: err}
		}
		return TasksLoadedMsg{Tasks: tasks, Filter: f}
	}
}

// Toggle advances the status of a task.
func Toggle(a Actions, id int64, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()

		res, err := a.ToggleStatus(ctx, id)
		if err != nil {
			return ErrMsg{Op: "toggle", Err: err}
		}
		return ToggledMsg{Result: res}
	}
}

// Insights fetches the insights report.
func Insights(a interface {
	Insights(ctx context.Context) (*insights.Report, error)
}, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()

		r, err := a.Insights(ctx)
		if err != nil {
			return ErrMsg{Op: "insights", Err: err}
		}
		return InsightsMsg{Report: r}
	}
}

// Create submits a new task.
func Create(a Actions, d task.Draft, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(timeout)
		defer cancel()

		if err := a.CreateTask(ctx, d); err != nil {
			return ErrMsg{Op: "create", Err: err}
		}
		return CreatedMsg{Draft: d}
	}
}

// ToggleTheme switches between the light and dark theme.
func ToggleTheme(t ThemeToggler) tea.Cmd {
	return func() tea.Msg {
		name, err := t.Toggle(context.Background())
		if err != nil {
			// the theme is applied even when it could not be saved
			return ErrMsg{Op: "theme", Err: err}
		}
		return ThemeChangedMsg{Name: name}
	}
}

// WriteClipboard is the clipboard backend.
var WriteClipboard = clipboard.WriteAll

// Copy writes text to the system clipboard and reports the outcome.
func Copy(text string, n notify.Notifier) tea.Cmd {
	return func() tea.Msg {
		err := WriteClipboard(text)
		if n != nil {
			if err != nil {
				_, _ = n.Notify(CopyFailedMessage, notify.SeverityError, CopyNotifyTimeout)
			} else {
				_, _ = n.Notify(CopiedMessage, notify.SeveritySuccess, CopyNotifyTimeout)
			}
		}
		return CopiedMsg{Err: err}
	}
}

// Listen waits for the next message pushed from outside the program.
func Listen(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func withTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), d)
}
