package taskapi

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/javiermolinar/taskdesk/internal/httpx"
	"github.com/javiermolinar/taskdesk/internal/insights"
	"github.com/javiermolinar/taskdesk/internal/notify"
	"github.com/javiermolinar/taskdesk/internal/task"
)

// Contextual failure messages shown by call sites.
const (
	ToggleFailedMessage   = "Could not change the status"
	InsightsFailedMessage = "Could not generate insights. Check that Ollama is running."
	CreateFailedMessage   = "Could not create the task"
	FormInvalidMessage    = "Please fix the errors in the form"
	ListFailedMessage     = "Could not load the tasks"
	TaskCreatedMessage    = "Task created successfully!"
)

// API is the server surface used by Actions.
type API interface {
	task.Repository
	Insights(ctx context.Context) (*insights.Report, error)
}

var _ API = (*Client)(nil)

// Board receives the result of server calls.
type Board interface {
	Apply(tasks []*task.Task)
	SetStatus(id int64, status task.Status, display string) bool
}

// Actions performs server calls on behalf of the user and reports their
// outcome through notifications. Transport and HTTP failures are already
// reported by the interceptor, so only application failures get a
// contextual message here.
type Actions struct {
	api      API
	notifier notify.Notifier
	board    Board
	log      zerolog.Logger
}

// NewActions creates Actions. board may be nil.
func NewActions(api API, notifier notify.Notifier, board Board) *Actions {
	return &Actions{
		api:      api,
		notifier: notifier,
		board:    board,
		log:      log.With().Str("component", "actions").Logger(),
	}
}

// ToggleStatus advances a task and updates its badge on the board.
func (a *Actions) ToggleStatus(ctx context.Context, id int64) (*task.ToggleResult, error) {
	res, err := a.api.ToggleStatus(ctx, id)
	if err != nil {
		a.failed(err, ToggleFailedMessage)
		return nil, err
	}

	a.show(`Status changed to "`+res.StatusDisplay+`"`, notify.SeveritySuccess, notify.DefaultDuration)
	if a.board != nil && !a.board.SetStatus(id, res.NewStatus, res.StatusDisplay) {
		a.log.Debug().Int64("task_id", id).Msg("toggled task is not on the board")
	}
	return res, nil
}

// Insights fetches the server analysis.
func (a *Actions) Insights(ctx context.Context) (*insights.Report, error) {
	r, err := a.api.Insights(ctx)
	if err != nil {
		a.failed(err, InsightsFailedMessage)
		return nil, err
	}
	return r, nil
}

// Refresh reloads the board from the server.
func (a *Actions) Refresh(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	tasks, err := a.api.ListTasks(ctx, f)
	if err != nil {
		a.failed(err, ListFailedMessage)
		return nil, err
	}
	if a.board != nil {
		a.board.Apply(tasks)
	}
	return tasks, nil
}

// CreateTask submits a new task.
func (a *Actions) CreateTask(ctx context.Context, d task.Draft) error {
	if err := a.api.CreateTask(ctx, d); err != nil {
		var fe *FormError
		if errors.As(err, &fe) {
			a.show(FormInvalidMessage, notify.SeverityError, notify.DefaultDuration)
			return err
		}
		a.failed(err, CreateFailedMessage)
		return err
	}
	a.show(TaskCreatedMessage, notify.SeveritySuccess, notify.DefaultDuration)
	return nil
}

func (a *Actions) failed(err error, message string) {
	a.log.Error().Err(err).Msg(message)
	if reportedByInterceptor(err) {
		return
	}
	a.show(message, notify.SeverityError, notify.DefaultDuration)
}

func (a *Actions) show(message string, severity notify.Severity, d time.Duration) {
	if a.notifier == nil {
		return
	}
	if _, err := a.notifier.Notify(message, severity, d); err != nil {
		a.log.Debug().Err(err).Msg("could not show notification")
	}
}

func reportedByInterceptor(err error) bool {
	var se *httpx.StatusError
	var te *httpx.TransportError
	return errors.As(err, &se) || errors.As(err, &te)
}
