package tui

import (
	"context"
	"errors"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/javiermolinar/taskdesk/internal/board"
	"github.com/javiermolinar/taskdesk/internal/form"
	"github.com/javiermolinar/taskdesk/internal/insights"
	"github.com/javiermolinar/taskdesk/internal/notify"
	"github.com/javiermolinar/taskdesk/internal/task"
	"github.com/javiermolinar/taskdesk/internal/taskapi"
	"github.com/javiermolinar/taskdesk/internal/tui/commands"
)

// Messages shown by the TUI itself.
const (
	ConfigReloadedMessage   = "Configuration reloaded"
	ConfigReloadFailMessage = "Could not reload the configuration"
	NoInsightsMessage       = "No insights to copy yet, press I to generate them"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	// bridged messages re-arm the listener
	case NotificationMsg:
		return m, m.bridge.Listen()

	case PendingMsg:
		wasIdle := m.pending == 0
		m.pending = msg.Count
		// the bridge may drop updates, so trust the live count
		if m.deps.Spinner != nil {
			m.pending = m.deps.Spinner.Count()
		}
		if wasIdle && m.pending > 0 {
			return m, tea.Batch(m.bridge.Listen(), m.spin.Tick)
		}
		return m, m.bridge.Listen()

	case SearchMsg:
		m.filter.Search = msg.Query
		return m, tea.Batch(m.bridge.Listen(), m.refresh())

	case DraftSavedMsg:
		if m.form != nil && msg.Err == nil {
			m.form.draftSaved = true
		}
		return m, m.bridge.Listen()

	case ConfigReloadedMsg:
		m.applyConfig(msg)
		return m, m.bridge.Listen()

	case commands.TasksLoadedMsg:
		m.loading = false
		m.err = nil
		m.rebuildTable()
		return m, nil

	case commands.ToggledMsg:
		m.rebuildTable()
		return m, nil

	case commands.InsightsMsg:
		m.loading = false
		m.report = msg.Report
		m.openInsights()
		return m, nil

	case commands.CreatedMsg:
		if m.drafts != nil {
			if err := m.drafts.Clear(context.Background(), form.Fields...); err != nil {
				log.Warn().Err(err).Msg("clearing draft")
			}
		}
		m.closeModal()
		return m, m.refresh()

	case commands.ThemeChangedMsg:
		m.restyle()
		return m, nil

	case commands.CopiedMsg:
		return m, nil

	case commands.ErrMsg:
		return m.handleErr(msg)
	}

	if m.modal == ModalInsights {
		var cmd tea.Cmd
		m.reportView, cmd = m.reportView.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleErr(msg commands.ErrMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	switch msg.Op {
	case "create":
		if m.form == nil {
			break
		}
		m.form.submitting = false
		var fe *taskapi.FormError
		if errors.As(msg.Err, &fe) {
			m.form.errs = form.Errors(fe.Fields)
		}
		return m, nil
	case "theme":
		// applied but not saved
		m.restyle()
	}
	m.err = msg.Err
	return m, nil
}

func (m *Model) applyConfig(msg ConfigReloadedMsg) {
	if msg.Err != nil {
		log.Warn().Err(msg.Err).Msg("config reload")
		m.notify(ConfigReloadFailMessage, notify.SeverityWarning)
		return
	}
	m.cfg = msg.Config
	m.deps.Config = msg.Config
	if lvl, err := zerolog.ParseLevel(msg.Config.Log.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	m.searchDebounce.Stop()
	m.searchDebounce = newSearchDebouncer(m.cfg.SearchDelay(), m.bridge)
	log.Info().Msg("config reloaded")
	m.notify(ConfigReloadedMessage, notify.SeverityInfo)
}

func (m *Model) notify(message string, sev notify.Severity) {
	if _, err := m.deps.Center.Notify(message, sev, m.cfg.NotifyDuration()); err != nil {
		log.Debug().Err(err).Msg("notify")
	}
}

func (m Model) refresh() tea.Cmd {
	return commands.Refresh(m.deps.Actions, m.filter, m.cfg.Timeout())
}

// rebuildTable copies the board into the table, keeping the cursor on the
// same task when it is still listed.
func (m *Model) rebuildTable() {
	var selectedID int64
	if t := m.selected(); t != nil {
		selectedID = t.ID
	}

	now := m.deps.Now()
	m.rows = m.deps.Board.Filtered(m.filter)
	rows := make([]table.Row, 0, len(m.rows))
	cursor := 0
	for i, t := range m.rows {
		if t.ID == selectedID {
			cursor = i
		}
		due := ""
		if t.Due != nil {
			due = board.DueLabel(t, now)
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.Badge(),
			t.Priority.Display(),
			due,
		})
	}
	m.table.SetRows(rows)
	if len(rows) > 0 {
		m.table.SetCursor(cursor)
	}
	m.completion = m.deps.Board.Stats(now).Completion()
}

func (m Model) selected() *task.Task {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return nil
	}
	return m.rows[i]
}

func (m *Model) restyle() {
	m.styles = NewStyles(m.deps.Theme.Palette())
	m.table.SetStyles(m.styles.Table())
	m.spin.Style = m.styles.Status
	m.progress.FullColor = string(m.styles.Palette().Accent)
	if m.modal == ModalInsights {
		m.renderReport()
	}
}

func (m *Model) openInsights() {
	m.mode = ModeModal
	m.modal = ModalInsights
	m.renderReport()
	m.reportView.GotoTop()
}

func (m *Model) renderReport() {
	if m.report == nil {
		return
	}
	w, h := m.modalSize()
	m.reportView.Width = w
	m.reportView.Height = h
	out, err := insights.RenderMarkdown(m.report, w, m.styles.Palette().GlamourStyle())
	if err != nil {
		log.Warn().Err(err).Msg("rendering insights")
		out = insights.Markdown(m.report)
	}
	m.reportView.SetContent(out)
}

func (m *Model) openForm() {
	f := newTaskForm()
	if m.drafts != nil {
		values := f.values()
		// selects always carry a value, so only text fields are restored
		restored, err := m.drafts.Restore(context.Background(), values)
		if err != nil {
			log.Warn().Err(err).Msg("restoring draft")
		}
		f.setValues(values)
		f.restored = restored
	}
	m.form = f
	m.mode = ModeModal
	m.modal = ModalTaskForm
}

func (m *Model) closeModal() {
	if m.modal == ModalTaskForm && m.drafts != nil {
		m.drafts.Flush()
	}
	m.mode = ModeNormal
	m.modal = ModalNone
	m.form = nil
}

func (m *Model) layout() {
	tableH := m.height - headerHeight - footerHeight
	if tableH < 3 {
		tableH = 3
	}
	inner := m.width - 2
	m.table.SetColumns(columns(inner))
	m.table.SetWidth(inner)
	m.table.SetHeight(tableH)
	m.progress.Width = min(max(inner/3, 10), 40)
	m.search.Width = max(inner-6, 10)
	if m.modal == ModalInsights {
		m.renderReport()
	}
}

func (m Model) modalSize() (int, int) {
	w := min(max(m.width-10, 30), 90)
	h := max(m.height-8, 6)
	return w, h
}

func columns(width int) []table.Column {
	fixed := 6 + 14 + 10 + 20
	title := max(width-fixed-10, 12)
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Title", Width: title},
		{Title: "Status", Width: 14},
		{Title: "Priority", Width: 10},
		{Title: "Due", Width: 20},
	}
}
