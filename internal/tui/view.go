package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/taskdesk/internal/board"
	"github.com/javiermolinar/taskdesk/internal/notify"
)

const (
	headerHeight = 3
	footerHeight = 5
)

const helpText = "t toggle • ctrl+n new • I insights • / search • f filter • ctrl+t theme • y copy • r refresh • q quit"

// View renders the board, then the open modal, then the toast stack.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "Loading..."
	}

	out := m.renderApp()
	if m.mode == ModeModal {
		out = placeCenter(out, m.width, m.height, m.renderModal())
	}
	if toasts := m.renderToasts(); toasts != "" {
		out = placeTopRight(out, m.width, m.height, toasts)
	}
	return out
}

func (m Model) renderApp() string {
	body := m.table.View()
	if len(m.rows) == 0 {
		empty := "No tasks found"
		if m.loading {
			empty = "Loading tasks..."
		}
		body = lipgloss.Place(m.width-2, m.table.Height(), lipgloss.Center, lipgloss.Center, m.styles.Muted.Render(empty))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
	return m.styles.App.Width(m.width).Height(m.height).Render(content)
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render("taskdesk")
	if m.pending > 0 {
		title += " " + m.spin.View()
	}

	stats := m.deps.Board.Stats(m.deps.Now())
	bar := m.progress.ViewAs(m.completion) + m.styles.Muted.Render(fmt.Sprintf(" %3.0f%% done", m.completion*100))
	gap := max(m.width-2-lipgloss.Width(title)-lipgloss.Width(bar), 1)
	top := title + strings.Repeat(" ", gap) + bar

	parts := []string{
		fmt.Sprintf("%d tasks", stats.Total),
		fmt.Sprintf("%d to do", stats.Todo),
		fmt.Sprintf("%d in progress", stats.Doing),
		fmt.Sprintf("%d done", stats.Done),
	}
	if stats.Overdue > 0 {
		parts = append(parts, fmt.Sprintf("%d overdue", stats.Overdue))
	}
	line := m.styles.Muted.Render(strings.Join(parts, " · "))
	if f := m.filterLabel(); f != "" {
		line += m.styles.Status.Render("  " + f)
	}
	return top + "\n" + line + "\n"
}

func (m Model) filterLabel() string {
	var parts []string
	if m.filter.Status != "" {
		parts = append(parts, "status: "+m.filter.Status.Display())
	}
	if m.filter.Priority != "" {
		parts = append(parts, "priority: "+m.filter.Priority.Display())
	}
	if m.filter.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", m.filter.Search))
	}
	return strings.Join(parts, ", ")
}

func (m Model) renderFooter() string {
	lines := []string{m.renderSelected()}

	box := m.styles.Search
	if m.mode == ModeSearch {
		box = m.styles.SearchFocused
	}
	lines = append(lines, box.Width(max(m.width-4, 10)).Render(m.search.View()))

	help := helpText
	if m.err != nil {
		help = "last error: " + m.err.Error()
	}
	lines = append(lines, m.styles.Help.Render(help))
	return strings.Join(lines, "\n")
}

func (m Model) renderSelected() string {
	t := m.selected()
	if t == nil {
		return ""
	}
	parts := []string{
		m.styles.StatusBadge(t.Status).Render(t.Badge()),
		m.styles.Priority(t.Priority).Render(t.Priority.Display()),
	}
	if t.Due != nil {
		label := "due " + board.DueLabel(t, m.deps.Now())
		parts = append(parts, m.styles.Muted.Render(label))
	}
	if t.Description != "" {
		parts = append(parts, m.styles.Muted.Render(firstLine(t.Description)))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderModal() string {
	switch m.modal {
	case ModalTaskForm:
		if m.form != nil {
			return m.form.view(m.styles)
		}
	case ModalInsights:
		return m.renderInsights()
	}
	return ""
}

func (m Model) renderInsights() string {
	var b strings.Builder
	b.WriteString(m.styles.ModalTitle.Render("AI insights"))
	if m.report != nil {
		meta := fmt.Sprintf("  generated %s", m.report.GeneratedAt)
		if m.report.ModelUsed != "" {
			meta += " · " + m.report.ModelUsed
		}
		b.WriteString(m.styles.ModalLabel.Render(meta))
	}
	b.WriteString("\n\n")

	bg := m.styles.Palette().BgHighlight
	lines := strings.Split(m.reportView.View(), "\n")
	for i, l := range lines {
		lines[i] = keepBackground(l, bg)
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.ModalHint.Render(fmt.Sprintf("%3.0f%% • ↑/↓ scroll • y copy • r regenerate • esc close", m.reportView.ScrollPercent()*100)))
	return m.styles.Modal.Render(b.String())
}

// renderToasts stacks the attached notifications, oldest on top.
func (m Model) renderToasts() string {
	active := m.deps.Center.Active()
	if len(active) == 0 {
		return ""
	}
	boxes := make([]string, 0, len(active))
	for _, n := range active {
		state, _ := m.deps.Center.State(n.ID)
		boxes = append(boxes, m.renderToast(n, state == notify.StateHiding))
	}
	return lipgloss.JoinVertical(lipgloss.Right, boxes...)
}

func (m Model) renderToast(n notify.Notification, hiding bool) string {
	icon := m.styles.ToastIcon(n.Severity).Render(n.Severity.Icon())
	return m.styles.Toast(n.Severity, hiding).Render(icon + " " + n.Message)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
