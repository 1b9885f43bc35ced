package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/taskdesk/internal/notify"
	"github.com/javiermolinar/taskdesk/internal/task"
	"github.com/javiermolinar/taskdesk/internal/theme"
)

const toastWidth = 40

// Styles holds the lipgloss styles of the TUI, derived from a palette.
type Styles struct {
	palette *theme.Palette

	App    lipgloss.Style
	Title  lipgloss.Style
	Muted  lipgloss.Style
	Help   lipgloss.Style
	Status lipgloss.Style

	// Search box
	Search        lipgloss.Style
	SearchFocused lipgloss.Style

	// Modal styles
	Modal             lipgloss.Style
	ModalTitle        lipgloss.Style
	ModalLabel        lipgloss.Style
	ModalInput        lipgloss.Style
	ModalInputFocused lipgloss.Style
	ModalError        lipgloss.Style
	ModalHint         lipgloss.Style
}

// NewStyles builds the styles for p.
func NewStyles(p *theme.Palette) *Styles {
	base := lipgloss.NewStyle().Foreground(p.Fg).Background(p.Bg)
	input := lipgloss.NewStyle().
		Foreground(p.Fg).
		Background(p.BgHighlight).
		Border(lipgloss.NormalBorder()).
		BorderForeground(p.FgMuted).
		BorderBackground(p.BgHighlight).
		Padding(0, 1)

	return &Styles{
		palette: p,

		App:    base.Padding(0, 1),
		Title:  base.Bold(true).Foreground(p.Accent),
		Muted:  base.Foreground(p.FgMuted),
		Help:   base.Foreground(p.FgMuted),
		Status: base.Foreground(p.Accent),

		Search: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.FgMuted).
			Padding(0, 1),
		SearchFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			Padding(0, 1),

		Modal: lipgloss.NewStyle().
			Foreground(p.Fg).
			Background(p.BgHighlight).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			BorderBackground(p.BgHighlight).
			Padding(1, 2),
		ModalTitle:        lipgloss.NewStyle().Bold(true).Foreground(p.Accent).Background(p.BgHighlight),
		ModalLabel:        lipgloss.NewStyle().Foreground(p.FgMuted).Background(p.BgHighlight),
		ModalInput:        input,
		ModalInputFocused: input.BorderForeground(p.Accent),
		ModalError:        lipgloss.NewStyle().Foreground(p.Severity(notify.SeverityError)).Background(p.BgHighlight),
		ModalHint:         lipgloss.NewStyle().Italic(true).Foreground(p.FgMuted).Background(p.BgHighlight),
	}
}

// Palette returns the palette the styles were built from.
func (s *Styles) Palette() *theme.Palette { return s.palette }

// Toast returns the box style of a notification. Hiding notifications are
// drawn muted while their removal animation runs.
func (s *Styles) Toast(sev notify.Severity, hiding bool) lipgloss.Style {
	accent := s.palette.Severity(sev)
	st := lipgloss.NewStyle().
		Width(toastWidth).
		Foreground(s.palette.Fg).
		Background(s.palette.ToastBg(sev)).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(accent).
		BorderBackground(s.palette.ToastBg(sev)).
		Padding(0, 1)
	if hiding {
		st = st.Foreground(s.palette.FgMuted).Faint(true)
	}
	return st
}

// ToastIcon returns the icon style of a notification.
func (s *Styles) ToastIcon(sev notify.Severity) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(s.palette.Severity(sev)).
		Background(s.palette.ToastBg(sev))
}

// StatusBadge returns the badge style of a task status.
func (s *Styles) StatusBadge(st task.Status) lipgloss.Style {
	bg, fg := s.palette.Status(st)
	return lipgloss.NewStyle().Foreground(fg).Background(bg).Padding(0, 1)
}

// Priority returns the text style of a priority level.
func (s *Styles) Priority(p task.Priority) lipgloss.Style {
	st := lipgloss.NewStyle().Foreground(s.palette.Priority(p))
	if p == task.PriorityUrgent {
		st = st.Bold(true)
	}
	return st
}

// Table returns the bubbles table styles.
func (s *Styles) Table() table.Styles {
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		Bold(true).
		Foreground(s.palette.Accent).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(s.palette.FgMuted).
		BorderBottom(true)
	ts.Cell = ts.Cell.Foreground(s.palette.Fg)
	ts.Selected = ts.Selected.
		Bold(true).
		Foreground(s.palette.TextOnAccent).
		Background(s.palette.Accent)
	return ts
}
