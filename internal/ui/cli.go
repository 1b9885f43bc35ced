// Package ui implements the taskdesk command line.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/taskdesk/internal/config"
	"github.com/javiermolinar/taskdesk/internal/logging"
	"github.com/javiermolinar/taskdesk/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	config     *config.Config
	configPath string
	root       *cobra.Command

	out    io.Writer
	errOut io.Writer

	logLevel string
	debug    bool
	noColor  bool
	local    bool // generate insights with the local LLM

	closeLog func()
}

// Option configures an App.
type Option func(*App)

// WithOutput redirects standard and error output. Tests use it.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) {
		a.out = out
		a.errOut = errOut
	}
}

// NewApp creates the CLI application for cfg, loaded from configPath.
func NewApp(cfg *config.Config, configPath string, opts ...Option) *App {
	a := &App{
		config:     cfg,
		configPath: configPath,
		out:        os.Stdout,
		errOut:     os.Stderr,
		closeLog:   func() {},
	}
	for _, opt := range opts {
		opt(a)
	}

	a.root = &cobra.Command{
		Use:   "taskdesk",
		Short: "A terminal client for the task manager",
		Long: `taskdesk talks to the task manager server from the terminal.

Without a subcommand it opens the interactive board: toggle statuses,
create tasks, search, and ask the AI for insights.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.before,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBoard(cmd.Context())
		},
	}
	a.root.SetOut(a.out)
	a.root.SetErr(a.errOut)

	flags := a.root.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVar(&a.debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	a.root.Flags().BoolVar(&a.local, "local", false, "Generate insights with the local LLM instead of the server")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.toggleCmd())
	a.root.AddCommand(a.insightsCmd())
	a.root.AddCommand(a.newCmd())
	a.root.AddCommand(a.themeCmd())

	return a
}

func (a *App) before(_ *cobra.Command, _ []string) error {
	level := a.config.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	closer, err := logging.Setup(level, a.config.Log.File, a.debug)
	if err != nil {
		return err
	}
	a.closeLog = closer
	setupColor(a.out, a.noColor)
	return nil
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "taskdesk %s (commit: %s)\n", Version, Commit)
		},
	}
}

func (a *App) runBoard(ctx context.Context) error {
	rt, err := a.open(ctx, false)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	// the board still opens when the server is down; the failure is shown
	// as a notification
	_ = rt.session.Prime(ctx)

	deps := tui.Deps{
		Actions: rt.actions,
		Board:   rt.board,
		Center:  rt.center,
		Spinner: rt.spinner,
		Theme:   rt.theme,
		Drafts:  rt.kv,
		Config:  a.config,
	}
	if a.local {
		deps.Insights = a.localInsights(rt)
	}
	return tui.Run(ctx, deps, a.configPath)
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI application with ctx.
func (a *App) ExecuteContext(ctx context.Context) error {
	defer func() { a.closeLog() }()
	return a.root.ExecuteContext(ctx)
}

// SetArgs overrides the command line arguments.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}
