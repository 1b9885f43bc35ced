// Package tui provides the terminal user interface for taskdesk.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/javiermolinar/taskdesk/internal/autosave"
	"github.com/javiermolinar/taskdesk/internal/board"
	"github.com/javiermolinar/taskdesk/internal/config"
	"github.com/javiermolinar/taskdesk/internal/form"
	"github.com/javiermolinar/taskdesk/internal/httpx"
	"github.com/javiermolinar/taskdesk/internal/insights"
	"github.com/javiermolinar/taskdesk/internal/notify"
	"github.com/javiermolinar/taskdesk/internal/store"
	"github.com/javiermolinar/taskdesk/internal/task"
	"github.com/javiermolinar/taskdesk/internal/theme"
	"github.com/javiermolinar/taskdesk/internal/tui/commands"
)

// FormID identifies the new task form in autosave keys.
const FormID = "task-form"

// Minimum query length before a search is sent.
const minSearchLength = 2

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeModal
)

// ModalType identifies the type of modal.
type ModalType int

const (
	ModalNone ModalType = iota
	ModalTaskForm
	ModalInsights
)

// InsightsSource produces an insights report.
type InsightsSource interface {
	Insights(ctx context.Context) (*insights.Report, error)
}

// Deps are the collaborators of the TUI. Center, Board, Theme and Actions
// are required.
type Deps struct {
	Actions  commands.Actions
	Insights InsightsSource // defaults to Actions
	Board    *board.Board
	Center   *notify.Center
	Spinner  *httpx.Spinner
	Theme    *theme.Controller
	Drafts   store.KV
	Config   *config.Config
	Now      func() time.Time
}

// Model is the main TUI model.
type Model struct {
	deps   Deps
	cfg    *config.Config
	styles *Styles
	bridge *Bridge

	mode  Mode
	modal ModalType

	// Board
	table  table.Model
	rows   []*task.Task
	filter task.Filter

	// Components
	spin     spinner.Model
	progress progress.Model
	search   textinput.Model

	searchDebounce *autosave.Debouncer[string]

	// Form state
	form      *taskForm
	drafts    *autosave.Autosave
	validator *form.Validator

	// Insights state
	report     *insights.Report
	reportView viewport.Model

	pending    int
	loading    bool
	completion float64

	width  int
	height int

	err error
}

// New creates a new TUI model.
func New(deps Deps) Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Insights == nil {
		deps.Insights = deps.Actions
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}

	styles := NewStyles(deps.Theme.Palette())
	bridge := NewBridge()

	tbl := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	tbl.SetStyles(styles.Table())

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.Status

	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.Prompt = "/ "
	search.CharLimit = 100

	m := Model{
		deps:       deps,
		cfg:        cfg,
		styles:     styles,
		bridge:     bridge,
		table:      tbl,
		spin:       sp,
		progress:   progress.New(progress.WithSolidFill(string(styles.Palette().Accent)), progress.WithoutPercentage()),
		search:     search,
		validator:  form.NewValidator(deps.Now),
		reportView: viewport.New(60, 16),
		loading:    true,
	}
	m.searchDebounce = newSearchDebouncer(cfg.SearchDelay(), bridge)
	if deps.Drafts != nil {
		m.drafts = autosave.New(deps.Drafts, FormID, cfg.AutosaveDelay())
		m.drafts.OnSaved = func(err error) { bridge.Send(DraftSavedMsg{Err: err}) }
	}
	return m
}

func newSearchDebouncer(delay time.Duration, b *Bridge) *autosave.Debouncer[string] {
	return autosave.NewDebouncer(delay, func(q string) {
		if len([]rune(q)) >= minSearchLength {
			b.Send(SearchMsg{Query: q})
		}
	})
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	m.deps.Center.Init()
	return tea.Batch(
		m.bridge.Listen(),
		commands.Refresh(m.deps.Actions, m.filter, m.cfg.Timeout()),
	)
}

// Run starts the TUI and blocks until it exits. When configPath is set the
// file is watched and changes are applied live.
func Run(ctx context.Context, deps Deps, configPath string) error {
	m := New(deps)

	unsubscribe := deps.Center.Subscribe(m.bridge.Notifications)
	defer unsubscribe()
	if deps.Spinner != nil {
		deps.Spinner.SetOnChange(m.bridge.Pending)
		defer deps.Spinner.SetOnChange(nil)
	}
	if configPath != "" {
		w, err := NewConfigWatcher(configPath, m.bridge)
		if err != nil {
			log.Warn().Err(err).Str("path", configPath).Msg("config hot reload disabled")
		} else {
			defer func() { _ = w.Close() }()
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.shutdown()
	} else {
		m.shutdown()
	}
	return err
}

// shutdown stops pending searches and writes the pending form draft.
func (m Model) shutdown() {
	m.searchDebounce.Stop()
	if m.drafts != nil {
		m.drafts.Flush()
	}
}
