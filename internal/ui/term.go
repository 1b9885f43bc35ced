package ui

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/javiermolinar/taskdesk/internal/task"
)

// Color definitions for consistent styling across the UI.
var (
	colorHeader = color.New(color.Bold)
	colorMuted  = color.New(color.Faint)
	colorStats  = color.New(color.FgGreen)

	statusColors = map[task.Status]*color.Color{
		task.StatusTodo:  color.New(color.FgYellow),
		task.StatusDoing: color.New(color.FgCyan, color.Bold),
		task.StatusDone:  color.New(color.FgGreen),
	}

	priorityColors = map[task.Priority]*color.Color{
		task.PriorityLow:    color.New(color.FgWhite, color.Faint),
		task.PriorityMedium: color.New(color.FgWhite),
		task.PriorityHigh:   color.New(color.FgYellow),
		task.PriorityUrgent: color.New(color.FgRed, color.Bold),
	}
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// setupColor turns colors off when asked to or when w is not a terminal.
func setupColor(w io.Writer, disabled bool) {
	if disabled || !isTerminal(w) {
		color.NoColor = true
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func formatStatus(t *task.Task) string {
	c, ok := statusColors[t.Status]
	if !ok {
		return t.Badge()
	}
	return c.Sprint(t.Badge())
}

func formatPriority(p task.Priority) string {
	c, ok := priorityColors[p]
	if !ok {
		return p.Display()
	}
	return c.Sprint(p.Display())
}

// formatHeader formats a section header.
func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

// formatMuted formats secondary text.
func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}

// formatStats formats summary figures and confirmations.
func formatStats(s string) string {
	return colorStats.Sprint(s)
}
