package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/javiermolinar/taskdesk/internal/form"
	"github.com/javiermolinar/taskdesk/internal/insights"
	"github.com/javiermolinar/taskdesk/internal/notify"
	"github.com/javiermolinar/taskdesk/internal/task"
	"github.com/javiermolinar/taskdesk/internal/taskapi"
	"github.com/javiermolinar/taskdesk/internal/tui/commands"
)

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	log.Trace().Str("key", msg.String()).Int("mode", int(m.mode)).Msg("key")

	// Global keys (work in all modes)
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeSearch:
		return m.handleSearchKeys(msg)
	case ModeModal:
		return m.handleModalKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

// handleNormalKeys handles keys on the board.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "ctrl+n":
		m.openForm()
		return m, textinput.Blink

	// ctrl+i arrives as tab in most terminals
	case "ctrl+i", "tab", "I":
		return m.requestInsights()

	case "t":
		t := m.selected()
		if t == nil {
			return m, nil
		}
		return m, commands.Toggle(m.deps.Actions, t.ID, m.cfg.Timeout())

	case "ctrl+t":
		return m, commands.ToggleTheme(m.deps.Theme)

	case "y":
		return m.copyReport()

	case "/":
		m.mode = ModeSearch
		m.search.SetValue(m.filter.Search)
		m.search.CursorEnd()
		return m, m.search.Focus()

	case "f":
		m.filter.Status = nextStatusFilter(m.filter.Status)
		return m, m.refresh()

	case "r":
		m.loading = true
		return m, m.refresh()

	case "esc":
		m.deps.Center.DismissNewest()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleSearchKeys edits the search query. Queries are sent once typing
// pauses and only when long enough; enter sends right away.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchDebounce.Stop()
		m.search.SetValue("")
		m.search.Blur()
		m.mode = ModeNormal
		if m.filter.Search == "" {
			return m, nil
		}
		m.filter.Search = ""
		return m, m.refresh()

	case "enter":
		m.searchDebounce.Stop()
		m.search.Blur()
		m.mode = ModeNormal
		m.filter.Search = strings.TrimSpace(m.search.Value())
		return m, m.refresh()
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != before {
		m.searchDebounce.Trigger(strings.TrimSpace(v))
	}
	return m, cmd
}

func (m Model) handleModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case ModalTaskForm:
		return m.handleFormKeys(msg)
	case ModalInsights:
		return m.handleInsightsKeys(msg)
	}
	m.closeModal()
	return m, nil
}

func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeModal()
		return m, nil

	case "ctrl+s":
		return m.submitForm()
	}

	changed, cmd := m.form.update(msg)
	if changed && m.drafts != nil {
		m.drafts.Changed(m.form.values())
	}
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	if m.form.submitting {
		return m, nil
	}
	d, err := m.validator.Validate(form.FromMap(m.form.values()))
	if err != nil {
		var errs form.Errors
		if !errors.As(err, &errs) {
			log.Error().Err(err).Msg("validating form")
			return m, nil
		}
		m.form.errs = errs
		m.notify(taskapi.FormInvalidMessage, notify.SeverityError)
		return m, nil
	}
	m.form.errs = nil
	m.form.submitting = true
	return m, commands.Create(m.deps.Actions, d, m.cfg.Timeout())
}

func (m Model) handleInsightsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.closeModal()
		return m, nil
	case "y":
		return m.copyReport()
	case "r":
		return m.requestInsights()
	}
	var cmd tea.Cmd
	m.reportView, cmd = m.reportView.Update(msg)
	return m, cmd
}

func (m Model) requestInsights() (tea.Model, tea.Cmd) {
	m.loading = true
	return m, commands.Insights(m.deps.Insights, 0)
}

func (m Model) copyReport() (tea.Model, tea.Cmd) {
	if m.report == nil {
		m.notify(NoInsightsMessage, notify.SeverityWarning)
		return m, nil
	}
	return m, commands.Copy(insights.Markdown(m.report), m.deps.Center)
}

func nextStatusFilter(s task.Status) task.Status {
	switch s {
	case "":
		return task.StatusTodo
	case task.StatusTodo:
		return task.StatusDoing
	case task.StatusDoing:
		return task.StatusDone
	default:
		return ""
	}
}
