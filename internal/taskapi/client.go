// Package taskapi talks to the task manager server: the AJAX endpoints
// (status toggle, insights) and the HTML pages (task list, new task form).
package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/javiermolinar/taskdesk/internal/dateutil"
	"github.com/javiermolinar/taskdesk/internal/httpx"
	"github.com/javiermolinar/taskdesk/internal/insights"
	"github.com/javiermolinar/taskdesk/internal/task"
)

// Server paths.
const (
	PathList     = "/"
	PathNewTask  = "/task/new/"
	PathInsights = "/api/insights/"
)

// TogglePath returns the status toggle endpoint for id.
func TogglePath(id int64) string {
	return fmt.Sprintf("/task/%d/toggle-status/", id)
}

// Client implements task.Repository over HTTP.
type Client struct {
	session *httpx.Session
}

var _ task.Repository = (*Client)(nil)

// New creates a Client on top of session.
func New(session *httpx.Session) *Client {
	return &Client{session: session}
}

type toggleResponse struct {
	Success       bool   `json:"success"`
	NewStatus     string `json:"new_status"`
	StatusDisplay string `json:"status_display"`
	Error         string `json:"error"`
}

// ToggleStatus advances the task to its next status on the server.
func (c *Client) ToggleStatus(ctx context.Context, id int64) (*task.ToggleResult, error) {
	req, err := c.session.NewRequest(ctx, http.MethodPost, TogglePath(id), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var body toggleResponse
	if err := c.doJSON(req, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		msg := body.Error
		if msg == "" {
			msg = "could not change the status"
		}
		return nil, &AppError{Op: "toggle status", Message: msg}
	}

	// the server has already toggled; a status this client does not know
	// is kept as sent and shown by its display label
	status, err := task.ParseStatus(body.NewStatus)
	if err != nil {
		status = task.Status(body.NewStatus)
	}
	display := body.StatusDisplay
	if display == "" {
		display = status.Display()
	}
	return &task.ToggleResult{ID: id, NewStatus: status, StatusDisplay: display}, nil
}

type insightsResponse struct {
	Success  bool             `json:"success"`
	Insights *insights.Report `json:"insights"`
	Message  string           `json:"message"`
	Error    string           `json:"error"`
}

// Insights asks the server for an AI analysis of the task list.
func (c *Client) Insights(ctx context.Context) (*insights.Report, error) {
	req, err := c.session.NewRequest(ctx, http.MethodGet, PathInsights, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	var body insightsResponse
	if err := c.doJSON(req, &body); err != nil {
		return nil, err
	}
	if !body.Success || body.Insights == nil {
		msg := body.Message
		if msg == "" {
			msg = body.Error
		}
		return nil, &AppError{Op: "insights", Message: msg}
	}
	return body.Insights, nil
}

// ListTasks fetches the task list page and parses its cards. The filter is
// passed as query parameters, as the list page's filter form does.
func (c *Client) ListTasks(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q.Set("search", s)
	}
	path := PathList
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	page, err := c.session.Page(ctx, path)
	if err != nil {
		return nil, err
	}
	tasks, err := ParseTaskList(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing task list: %w", err)
	}
	return tasks, nil
}

// CreateTask submits the new task form. The form page is fetched first so
// the server sets the anti-forgery cookie.
func (c *Client) CreateTask(ctx context.Context, d task.Draft) error {
	formPage, err := c.session.Page(ctx, PathNewTask)
	if err != nil {
		return err
	}
	token := c.session.Tokens.Token()
	if token == "" {
		token, _ = InputValue(bytes.NewReader(formPage), "csrfmiddlewaretoken")
	}

	form := url.Values{}
	form.Set("csrfmiddlewaretoken", token)
	form.Set("title", d.Title)
	form.Set("description", d.Description)
	status := d.Status
	if status == "" {
		status = task.StatusTodo
	}
	form.Set("status", string(status))
	priority := d.Priority
	if priority == "" {
		priority = task.PriorityMedium
	}
	form.Set("priority", string(priority))
	if d.Due != "" {
		due, err := dateutil.ParseServerTime(d.Due, nil)
		if err != nil {
			return fmt.Errorf("due date: %w", err)
		}
		form.Set("due_date", due.Format(dateutil.FormInputLayout))
	}

	req, err := c.session.NewRequest(ctx, http.MethodPost, PathNewTask, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", c.session.URL(PathNewTask))

	resp, err := c.session.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	// A valid form redirects to the list; an invalid one is rendered again.
	if resp.Request != nil && resp.Request.URL.Path == PathNewTask {
		page, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading form response: %w", err)
		}
		if fields := ParseFormErrors(bytes.NewReader(page)); len(fields) > 0 {
			return &FormError{Fields: fields}
		}
	}
	return nil
}

func (c *Client) doJSON(req *http.Request, v any) error {
	resp, err := c.session.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &AppError{Op: opName(req), Message: "invalid response: " + err.Error()}
	}
	return nil
}

func opName(req *http.Request) string {
	p := req.URL.Path
	if strings.HasSuffix(p, "/toggle-status/") {
		return "toggle status"
	}
	if p == PathInsights {
		return "insights"
	}
	return req.Method + " " + p
}

// ParseID parses a task id given on the command line.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}
