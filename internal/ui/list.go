package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/javiermolinar/taskdesk/internal/board"
	"github.com/javiermolinar/taskdesk/internal/dateutil"
	"github.com/javiermolinar/taskdesk/internal/task"
)

// Output formats of list-like commands.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// taskView is the serialized form of a task.
type taskView struct {
	ID          int64  `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Status      string `json:"status" yaml:"status"`
	Display     string `json:"status_display" yaml:"status_display"`
	Priority    string `json:"priority" yaml:"priority"`
	Due         string `json:"due_date,omitempty" yaml:"due_date,omitempty"`
}

func (a *App) listCmd() *cobra.Command {
	var (
		status   string
		priority string
		search   string
		output   string
		upcoming bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `List the tasks shown on the server's task list.

Filters are applied by the server, the same way the web list filters.`,
		Example: `  taskdesk list
  taskdesk list --status=todo --priority=urgent
  taskdesk list --search=report --output=json
  taskdesk list --upcoming`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := parseFilter(status, priority, search)
			if err != nil {
				return err
			}

			rt, err := a.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			tasks, err := rt.actions.Refresh(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("listing tasks: %w", err)
			}
			if upcoming {
				tasks = rt.board.ByDue()
			}
			return writeTasks(a.out, tasks, output, time.Now())
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only tasks with this status (todo, doing, done)")
	cmd.Flags().StringVar(&priority, "priority", "", "Only tasks with this priority (low, medium, high, urgent)")
	cmd.Flags().StringVar(&search, "search", "", "Only tasks whose title or description contains this text")
	cmd.Flags().BoolVar(&upcoming, "upcoming", false, "Only unfinished tasks with a due date, soonest first")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format (table, json, yaml)")

	return cmd
}

func parseFilter(status, priority, search string) (task.Filter, error) {
	f := task.Filter{Search: search}
	if status != "" {
		s, err := task.ParseStatus(status)
		if err != nil {
			return f, err
		}
		f.Status = s
	}
	if priority != "" {
		p, err := task.ParsePriority(priority)
		if err != nil {
			return f, err
		}
		f.Priority = p
	}
	return f, nil
}

func writeTasks(w io.Writer, tasks []*task.Task, output string, now time.Time) error {
	switch output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views(tasks))
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views(tasks)); err != nil {
			return err
		}
		return enc.Close()
	case outputTable, "":
		if len(tasks) == 0 {
			_, err := fmt.Fprintln(w, "No tasks found.")
			return err
		}
		_, err := fmt.Fprintln(w, renderTasks(tasks, now))
		return err
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", output)
	}
}

func views(tasks []*task.Task) []taskView {
	out := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskView{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Status:      string(t.Status),
			Display:     t.Badge(),
			Priority:    string(t.Priority),
			Due:         dateutil.FormatDue(t.Due),
		})
	}
	return out
}

func renderTasks(tasks []*task.Task, now time.Time) string {
	tw := table.NewWriter()
	style := table.StyleRounded
	style.Format.Footer = text.FormatDefault
	tw.SetStyle(style)
	tw.AppendHeader(table.Row{"ID", "Title", "Status", "Priority", "Due"})

	for _, t := range tasks {
		due := ""
		if t.Due != nil {
			due = board.DueLabel(t, now)
			if t.IsOverdue(now) {
				due = priorityColors[task.PriorityUrgent].Sprint(due)
			}
		}
		tw.AppendRow(table.Row{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			formatStatus(t),
			formatPriority(t.Priority),
			due,
		})
	}

	stats := task.Summarize(tasks, now)
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d tasks", stats.Total), fmt.Sprintf("%.0f%% done", stats.Completion()*100), "", overdueLabel(stats)})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, WidthMax: max(termWidth()-60, 20)},
	})
	return tw.Render()
}

func overdueLabel(s task.Stats) string {
	if s.Overdue == 0 {
		return ""
	}
	return fmt.Sprintf("%d overdue", s.Overdue)
}
