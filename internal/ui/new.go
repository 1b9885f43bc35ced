package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/taskdesk/internal/autosave"
	"github.com/javiermolinar/taskdesk/internal/form"
	"github.com/javiermolinar/taskdesk/internal/task"
	"github.com/javiermolinar/taskdesk/internal/tui"
)

func (a *App) newCmd() *cobra.Command {
	var values form.TaskForm

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a task",
		Long: `Create a task on the server.

Without --title an interactive form opens. Its content is saved locally
while you type and restored the next time the form opens, until the task
is created.`,
		Example: `  taskdesk new
  taskdesk new --title "Write report" --priority high --due "2025-06-01 17:00"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := a.open(ctx, true)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			v := form.NewValidator(nil)
			drafts := autosave.New(rt.kv, tui.FormID, a.config.AutosaveDelay())
			defer drafts.Close()

			if !cmd.Flags().Changed("title") {
				if !isTerminal(os.Stdin) {
					return errors.New("--title is required when stdin is not a terminal")
				}
				ok, err := a.fillForm(ctx, drafts, v, &values)
				if err != nil || !ok {
					return err
				}
			}

			d, err := v.Validate(values)
			if err != nil {
				// keep what was typed for the next attempt
				if serr := drafts.Save(ctx, values.Map()); serr != nil {
					return errors.Join(err, serr)
				}
				return err
			}

			if err := rt.session.Prime(ctx); err != nil {
				return err
			}
			if err := rt.actions.CreateTask(ctx, d); err != nil {
				_ = drafts.Save(ctx, values.Map())
				return fmt.Errorf("creating task: %w", err)
			}
			if err := drafts.Clear(ctx, form.Fields...); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s\n", formatStats("created"), formatHeader(d.Title))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&values.Title, "title", "", "Task title")
	flags.StringVar(&values.Description, "description", "", "Task description")
	flags.StringVar(&values.Status, "status", "", "Status (todo, doing, done)")
	flags.StringVar(&values.Priority, "priority", "", "Priority (low, medium, high, urgent)")
	flags.StringVar(&values.Due, "due", "", `Due date, "YYYY-MM-DD HH:MM" or "YYYY-MM-DD"`)

	return cmd
}

// fillForm runs the interactive form over values. It reports false when
// the user aborted.
func (a *App) fillForm(ctx context.Context, drafts *autosave.Autosave, v *form.Validator, values *form.TaskForm) (bool, error) {
	fields := values.Map()
	restored, err := drafts.Restore(ctx, fields)
	if err != nil {
		return false, err
	}
	*values = form.FromMap(fields)
	if len(restored) > 0 {
		fmt.Fprintln(a.errOut, formatMuted("Restored unsaved changes: "+strings.Join(restored, ", ")))
	}
	if values.Status == "" {
		values.Status = string(task.StatusTodo)
	}
	if values.Priority == "" {
		values.Priority = string(task.PriorityMedium)
	}

	// each field is checked against the whole form with the candidate value
	check := func(field string) func(string) error {
		return func(s string) error {
			m := values.Map()
			m[field] = s
			drafts.Changed(m)
			_, err := v.Validate(form.FromMap(m))
			var errs form.Errors
			if errors.As(err, &errs) {
				if msg := errs.First(field); msg != "" {
					return errors.New(msg)
				}
			}
			return nil
		}
	}

	f := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&values.Title).
				Validate(check(form.FieldTitle)),
			huh.NewText().
				Title("Description").
				Value(&values.Description).
				Validate(check(form.FieldDescription)),
			huh.NewSelect[string]().
				Title("Status").
				Options(statusOptions()...).
				Value(&values.Status),
			huh.NewSelect[string]().
				Title("Priority").
				Options(priorityOptions()...).
				Value(&values.Priority),
			huh.NewInput().
				Title("Due date").
				Placeholder("YYYY-MM-DD HH:MM").
				Value(&values.Due).
				Validate(check(form.FieldDue)),
		),
	)

	if err := f.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			drafts.Flush()
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func statusOptions() []huh.Option[string] {
	statuses := []task.Status{task.StatusTodo, task.StatusDoing, task.StatusDone}
	opts := make([]huh.Option[string], 0, len(statuses))
	for _, s := range statuses {
		opts = append(opts, huh.NewOption(s.Display(), string(s)))
	}
	return opts
}

func priorityOptions() []huh.Option[string] {
	priorities := []task.Priority{task.PriorityLow, task.PriorityMedium, task.PriorityHigh, task.PriorityUrgent}
	opts := make([]huh.Option[string], 0, len(priorities))
	for _, p := range priorities {
		opts = append(opts, huh.NewOption(p.Display(), string(p)))
	}
	return opts
}
