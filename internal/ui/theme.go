package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/taskdesk/internal/theme"
)

func (a *App) themeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the color theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := a.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			fmt.Fprintln(a.out, rt.theme.Current())
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between the light and dark themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.setTheme(cmd, "")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:       "set <light|dark>",
		Short:     "Use the given theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{theme.Light, theme.Dark},
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] != theme.Light && args[0] != theme.Dark {
				return fmt.Errorf("unknown theme %q (want %s or %s)", args[0], theme.Light, theme.Dark)
			}
			return a.setTheme(cmd, args[0])
		},
	})

	return cmd
}

// setTheme applies name, or toggles when name is empty.
func (a *App) setTheme(cmd *cobra.Command, name string) error {
	rt, err := a.open(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	if name == "" {
		name, err = rt.theme.Toggle(cmd.Context())
	} else {
		name, err = rt.theme.Set(cmd.Context(), name)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, name)
	return nil
}
