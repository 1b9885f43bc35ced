package ui

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/taskdesk/internal/config"
	"github.com/javiermolinar/taskdesk/internal/theme"
)

func (a *App) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Show the configuration file path and the effective configuration,
including TASKDESK_* environment overrides.`,
		Example: `  taskdesk config
  taskdesk config init
  taskdesk config edit`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.printConfig()
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := os.Stat(a.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.configPath)
			}
			if err := config.Default().SaveTo(a.configPath); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created %s\n", a.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "edit",
		Short: "Edit the configuration interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *a.config
			if err := editConfig(cmd, &cfg); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			if err := cfg.SaveTo(a.configPath); err != nil {
				return err
			}
			*a.config = cfg
			fmt.Fprintln(a.out, formatStats("Configuration saved"))
			return nil
		},
	})

	return cmd
}

func (a *App) printConfig() error {
	state := ""
	if _, err := os.Stat(a.configPath); errors.Is(err, os.ErrNotExist) {
		state = " (not created, run 'taskdesk config init')"
	}
	fmt.Fprintf(a.out, "%s %s%s\n\n", formatHeader("Config file:"), a.configPath, formatMuted(state))

	data, err := toml.Marshal(a.config)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_, err = a.out.Write(data)
	return err
}

func editConfig(cmd *cobra.Command, cfg *config.Config) error {
	timeout := strconv.Itoa(cfg.Server.TimeoutMs)
	duration := strconv.Itoa(cfg.Notifications.DurationMs)

	f := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Server URL").Value(&cfg.Server.BaseURL),
			huh.NewInput().Title("Request timeout (ms)").Value(&timeout).Validate(positiveInt),
			huh.NewInput().Title("Notification duration (ms)").Value(&duration).Validate(positiveInt),
			huh.NewConfirm().Title("Desktop notifications").Value(&cfg.Notifications.Desktop),
		).Title("Server"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("LLM provider").
				Options(huh.NewOptions("ollama", "lmstudio")...).
				Value(&cfg.LLM.Provider),
			huh.NewInput().Title("LLM model").Value(&cfg.LLM.Model),
			huh.NewInput().Title("LLM base URL").Value(&cfg.LLM.BaseURL),
		).Title("Local insights"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Theme").
				Options(huh.NewOptions(theme.Light, theme.Dark)...).
				Value(&cfg.UI.Theme),
			huh.NewInput().Title("Database path").Value(&cfg.Storage.DBPath),
		).Title("Interface"),
	)
	if err := f.RunWithContext(cmd.Context()); err != nil {
		return err
	}

	// validated above
	cfg.Server.TimeoutMs, _ = strconv.Atoi(timeout)
	cfg.Notifications.DurationMs, _ = strconv.Atoi(duration)
	return nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return errors.New("enter a positive number")
	}
	return nil
}
