package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/taskdesk/internal/config"
	"github.com/javiermolinar/taskdesk/internal/insights"
	"github.com/javiermolinar/taskdesk/internal/llm"
	"github.com/javiermolinar/taskdesk/internal/notify"
	"github.com/javiermolinar/taskdesk/internal/task"
	"github.com/javiermolinar/taskdesk/internal/taskapi"
	"github.com/javiermolinar/taskdesk/internal/tui"
)

func (a *App) insightsCmd() *cobra.Command {
	var (
		local  bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Ask the AI for an analysis of your tasks",
		Long: `Print an AI analysis of the current tasks.

By default the server generates it. With --local the analysis is generated
here with the LLM configured under [llm] (Ollama or LM Studio).`,
		Example: `  taskdesk insights
  taskdesk insights --local
  taskdesk insights --output=json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := insights.ParseFormat(output)
			if err != nil {
				return err
			}

			rt, err := a.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			var source tui.InsightsSource = rt.actions
			if local {
				source = a.localInsights(rt)
			}

			r, err := source.Insights(cmd.Context())
			if err != nil {
				return fmt.Errorf("getting insights: %w", err)
			}
			return insights.Write(a.out, r, format, termWidth())
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Generate the analysis with the local LLM")
	cmd.Flags().StringVarP(&output, "output", "o", string(insights.FormatText), "Output format (text, json, yaml)")

	return cmd
}

// localInsights generates reports with the configured LLM over the
// server's task list.
type localInsights struct {
	tasks    task.Repository
	llm      config.LLMConfig
	notifier notify.Notifier
}

func (a *App) localInsights(rt *runtime) *localInsights {
	return &localInsights{tasks: rt.client, llm: a.config.LLM, notifier: rt.center}
}

// Insights implements the insights source of the board and the CLI.
func (l *localInsights) Insights(ctx context.Context) (*insights.Report, error) {
	tasks, err := l.tasks.ListTasks(ctx, task.Filter{})
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	r, err := l.generate(ctx, tasks)
	if err != nil {
		msg, sev := taskapi.InsightsFailedMessage, notify.SeverityError
		if errors.Is(err, insights.ErrNoTasks) {
			msg, sev = "No tasks found. Add tasks to get insights.", notify.SeverityWarning
		}
		if l.notifier != nil {
			_, _ = l.notifier.Notify(msg, sev, notify.DefaultDuration)
		}
		return nil, err
	}
	return r, nil
}

func (l *localInsights) generate(ctx context.Context, tasks []*task.Task) (*insights.Report, error) {
	if len(tasks) == 0 {
		return nil, insights.ErrNoTasks
	}
	client, err := llm.Resolve(ctx, l.llm.Provider, l.llm.Model, l.llm.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", l.llm.Provider, err)
	}
	return insights.NewGenerator(client).Generate(ctx, tasks)
}
