// Package taskapitest provides an in-process fake of the task manager
// server for tests.
package taskapitest

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/javiermolinar/taskdesk/internal/insights"
	"github.com/javiermolinar/taskdesk/internal/task"
)

// CSRFToken is the token the fake server hands out and expects back.
const CSRFToken = "abc123"

// Server is a fake task manager server.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	tasks  []*task.Task
	nextID int64

	// InsightsStatus, when non-zero, makes /api/insights/ fail with it.
	InsightsStatus int
	// InsightsReport is returned by /api/insights/ when set.
	InsightsReport *insights.Report
	// InsightsError makes /api/insights/ answer {success:false, error}.
	InsightsError string
	// ToggleError makes toggle answer {success:false, error}.
	ToggleError string
	// ToggleStatus and ToggleDisplay, when set, replace the next status
	// reported by toggle.
	ToggleStatus  string
	ToggleDisplay string
	// NoCookie disables the csrftoken cookie so clients must use the meta tag.
	NoCookie bool

	// Requests counts calls per "METHOD path".
	Requests map[string]int
}

// New starts a server seeded with tasks. Call Close when done.
func New(tasks ...*task.Task) *Server {
	s := &Server{Requests: make(map[string]int), nextID: 1}
	for _, t := range tasks {
		c := *t
		if c.ID >= s.nextID {
			s.nextID = c.ID + 1
		}
		s.tasks = append(s.tasks, &c)
	}

	r := chi.NewRouter()
	r.Use(s.count)
	r.Get("/", s.list)
	r.Get("/task/new/", s.newForm)
	r.With(s.requireToken).Post("/task/new/", s.create)
	r.With(s.requireToken).Post("/task/{id}/toggle-status/", s.toggle)
	r.Get("/task/{id}/toggle-status/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": false, "error": "Method not allowed"})
	})
	r.Get("/api/insights/", s.insights)

	s.Server = httptest.NewServer(r)
	return s
}

// Task returns a copy of the task with id.
func (s *Server) Task(id int64) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return *t, true
		}
	}
	return task.Task{}, false
}

// Len returns the number of tasks on the server.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Count returns how many times "METHOD path" was requested.
func (s *Server) Count(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Requests[method+" "+path]
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.Requests[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// requireToken rejects POSTs without the anti-forgery token in the header
// or the form, like Django's CSRF middleware.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-CSRFToken")
		if token == "" {
			token = r.PostFormValue("csrfmiddlewaretoken")
		}
		if token != CSRFToken {
			http.Error(w, "CSRF verification failed", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) setCookie(w http.ResponseWriter) {
	if s.NoCookie {
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: CSRFToken, Path: "/"})
}

var listPage = template.Must(template.New("list").Parse(`<!DOCTYPE html>
<html><head><meta name="csrf-token" content="{{.Token}}"><title>Tasks</title></head>
<body>
{{range .Tasks}}<div class="card task-card priority-{{.Priority}}" data-status="{{.Status}}"{{if .Due}} data-due-date="{{.Due.Format "2006-01-02T15:04:05"}}"{{end}}>
  <div class="card-body">
    <h5 class="card-title">{{.Title}}</h5>
    {{if .Description}}<p class="card-text">{{.Description}}</p>{{end}}
    <span class="badge bg-secondary">{{.Badge}}</span>
    <button class="btn btn-sm" data-task-id="{{.ID}}">Toggle</button>
  </div>
</div>
{{end}}</body></html>`))

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := task.Filter{
		Status:   task.Status(q.Get("status")),
		Priority: task.Priority(q.Get("priority")),
		Search:   q.Get("search"),
	}

	s.mu.Lock()
	var tasks []*task.Task
	for _, t := range s.tasks {
		if f.Matches(t) {
			c := *t
			tasks = append(tasks, &c)
		}
	}
	s.mu.Unlock()

	s.setCookie(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = listPage.Execute(w, map[string]any{"Token": CSRFToken, "Tasks": tasks})
}

var formPage = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html><body>
<form method="post" novalidate data-autosave id="task-form">
  <input type="hidden" name="csrfmiddlewaretoken" value="{{.Token}}">
  {{range $field, $msgs := .Errors}}<ul class="errorlist" id="id_{{$field}}_error">{{range $msgs}}<li>{{.}}</li>{{end}}</ul>{{end}}
  <input type="text" name="title" value="{{.Title}}">
</form>
</body></html>`))

func (s *Server) newForm(w http.ResponseWriter, r *http.Request) {
	s.setCookie(w)
	_ = formPage.Execute(w, map[string]any{"Token": CSRFToken})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.PostFormValue("title"))
	errs := map[string][]string{}
	if title == "" {
		errs["title"] = append(errs["title"], "This field is required.")
	} else if len([]rune(title)) < 3 {
		errs["title"] = append(errs["title"], "The title must contain at least 3 characters.")
	}

	status, err := task.ParseStatus(r.PostFormValue("status"))
	if err != nil {
		errs["status"] = append(errs["status"], "Select a valid choice.")
	}
	priority, err := task.ParsePriority(r.PostFormValue("priority"))
	if err != nil {
		errs["priority"] = append(errs["priority"], "Select a valid choice.")
	}
	var due *time.Time
	if v := r.PostFormValue("due_date"); v != "" {
		d, err := time.Parse("2006-01-02T15:04", v)
		if err != nil {
			errs["due_date"] = append(errs["due_date"], "Enter a valid date/time.")
		} else {
			due = &d
		}
	}

	if len(errs) > 0 {
		_ = formPage.Execute(w, map[string]any{"Token": CSRFToken, "Errors": errs, "Title": title})
		return
	}

	s.mu.Lock()
	t := &task.Task{
		ID:          s.nextID,
		Title:       title,
		Description: r.PostFormValue("description"),
		Status:      status,
		Priority:    priority,
		Due:         due,
		CreatedAt:   time.Now(),
	}
	s.nextID++
	s.tasks = slices.Insert(s.tasks, 0, t)
	s.mu.Unlock()

	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) toggle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if s.ToggleError != "" {
		writeJSON(w, map[string]any{"success": false, "error": s.ToggleError})
		return
	}

	s.mu.Lock()
	var found *task.Task
	for _, t := range s.tasks {
		if t.ID == id {
			found = t
			break
		}
	}
	if found == nil {
		s.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	found.Status = found.Status.Next()
	found.StatusDisplay = found.Status.Display()
	if s.ToggleStatus != "" {
		found.Status = task.Status(s.ToggleStatus)
		found.StatusDisplay = s.ToggleDisplay
	}
	resp := map[string]any{
		"success":        true,
		"new_status":     found.Status,
		"status_display": found.StatusDisplay,
	}
	s.mu.Unlock()

	writeJSON(w, resp)
}

func (s *Server) insights(w http.ResponseWriter, r *http.Request) {
	if s.InsightsStatus != 0 {
		http.Error(w, http.StatusText(s.InsightsStatus), s.InsightsStatus)
		return
	}
	if s.InsightsError != "" {
		writeJSON(w, map[string]any{"success": false, "error": s.InsightsError})
		return
	}
	if s.Len() == 0 {
		writeJSON(w, map[string]any{"success": false, "message": "No tasks found"})
		return
	}

	report := s.InsightsReport
	if report == nil {
		s.mu.Lock()
		stats := task.Summarize(s.tasks, time.Now())
		s.mu.Unlock()
		report = &insights.Report{
			GeneratedAt: time.Now().Format(insights.GeneratedAtLayout),
			Analysis:    "## Summary\nKeep going.",
			Stats:       insights.StatsMap(stats),
			ModelUsed:   "llama3.1",
		}
	}
	writeJSON(w, map[string]any{"success": true, "insights": report})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
