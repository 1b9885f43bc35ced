package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/taskdesk/internal/taskapi"
)

func (a *App) toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Advance a task to its next status",
		Long: `Advance a task to its next status: todo, then doing, then done,
then back to todo.`,
		Example: `  taskdesk toggle 42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := taskapi.ParseID(args[0])
			if err != nil {
				return err
			}

			rt, err := a.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			// sets the anti-forgery cookie
			if err := rt.session.Prime(cmd.Context()); err != nil {
				return err
			}
			res, err := rt.actions.ToggleStatus(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("toggling task %d: %w", id, err)
			}
			fmt.Fprintf(a.out, "#%d %s\n", res.ID, formatStats(res.StatusDisplay))
			return nil
		},
	}
}
