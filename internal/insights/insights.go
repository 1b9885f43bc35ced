// Package insights builds and renders the AI analysis of the task list.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/javiermolinar/taskdesk/internal/dateutil"
	"github.com/javiermolinar/taskdesk/internal/llm"
	"github.com/javiermolinar/taskdesk/internal/task"
)

// ErrNoTasks is returned when there is nothing to analyze.
var ErrNoTasks = errors.New("no tasks found, add tasks to get insights")

// GeneratedAtLayout is how generation times are shown.
const GeneratedAtLayout = "02/01/2006 at 15:04"

// Report is an insights analysis, as returned by /api/insights/ or
// generated locally.
type Report struct {
	GeneratedAt string         `json:"generated_at" yaml:"generated_at"`
	Analysis    string         `json:"analysis" yaml:"analysis"`
	Stats       map[string]int `json:"stats" yaml:"stats"`
	ModelUsed   string         `json:"model_used" yaml:"model_used"`
}

// StatsMap converts task stats to the report representation.
func StatsMap(s task.Stats) map[string]int {
	return map[string]int{
		"total":   s.Total,
		"todo":    s.Todo,
		"doing":   s.Doing,
		"done":    s.Done,
		"overdue": s.Overdue,
	}
}

// Generator produces reports with a local model.
type Generator struct {
	client llm.Client
	now    func() time.Time
}

// NewGenerator creates a Generator using client.
func NewGenerator(client llm.Client) *Generator {
	return &Generator{client: client, now: time.Now}
}

// Generate analyzes tasks and returns a report.
func (g *Generator) Generate(ctx context.Context, tasks []*task.Task) (*Report, error) {
	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}

	now := g.now()
	stats := task.Summarize(tasks, now)
	prompt, err := BuildPrompt(tasks, stats, now)
	if err != nil {
		return nil, err
	}

	log.Info().Str("model", g.client.Model()).Int("tasks", len(tasks)).Msg("generating insights")
	analysis, err := g.client.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return nil, fmt.Errorf("generating insights: %w", err)
	}

	return &Report{
		GeneratedAt: now.Format(GeneratedAtLayout),
		Analysis:    strings.TrimSpace(analysis),
		Stats:       StatsMap(stats),
		ModelUsed:   g.client.Model(),
	}, nil
}

type promptTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	CreatedOn   string `json:"created_on,omitempty"`
	Due         string `json:"due,omitempty"`
	Overdue     bool   `json:"overdue"`
}

const promptTemplate = `Analyze these %d tasks and provide useful insights.

Statistics:
- Total: %d tasks
- To do: %d
- In progress: %d
- Done: %d
- Overdue: %d

Task details:
%s

Provide a structured analysis with:
1. A general summary of the situation
2. Recommended priorities
3. Organization advice
4. Points that need particular attention

Answer concisely and in an actionable way, using markdown.`

// BuildPrompt renders the analysis prompt for tasks.
func BuildPrompt(tasks []*task.Task, stats task.Stats, now time.Time) (string, error) {
	items := make([]promptTask, 0, len(tasks))
	for _, t := range tasks {
		desc := t.Description
		if desc == "" {
			desc = "No description"
		}
		pt := promptTask{
			Title:       t.Title,
			Description: desc,
			Status:      t.Badge(),
			Priority:    t.Priority.Display(),
			Due:         dateutil.FormatDue(t.Due),
			Overdue:     t.IsOverdue(now),
		}
		if !t.CreatedAt.IsZero() {
			pt.CreatedOn = t.CreatedAt.Format("02/01/2006")
		}
		items = append(items, pt)
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding tasks: %w", err)
	}

	return fmt.Sprintf(promptTemplate,
		stats.Total, stats.Total, stats.Todo, stats.Doing, stats.Done, stats.Overdue,
		string(data),
	), nil
}
