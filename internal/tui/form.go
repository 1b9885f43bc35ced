package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/taskdesk/internal/form"
	"github.com/javiermolinar/taskdesk/internal/task"
)

const formWidth = 48

var (
	statusOptions   = []task.Status{task.StatusTodo, task.StatusDoing, task.StatusDone}
	priorityOptions = []task.Priority{task.PriorityLow, task.PriorityMedium, task.PriorityHigh, task.PriorityUrgent}
)

// form field focus order
const (
	focusTitle = iota
	focusDescription
	focusStatus
	focusPriority
	focusDue
	focusCount
)

// taskForm is the new task modal.
type taskForm struct {
	title    textinput.Model
	desc     textarea.Model
	due      textinput.Model
	status   int
	priority int
	focus    int

	errs       form.Errors
	restored   []string
	draftSaved bool
	submitting bool
}

func newTaskForm() *taskForm {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = task.MaxTitleLength
	title.Width = formWidth - 4

	desc := textarea.New()
	desc.Placeholder = "Detailed description (optional)"
	desc.ShowLineNumbers = false
	desc.SetWidth(formWidth - 4)
	desc.SetHeight(3)

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD HH:MM, tomorrow, next-friday"
	due.Width = formWidth - 4

	f := &taskForm{title: title, desc: desc, due: due, priority: 1}
	f.setFocus(focusTitle)
	return f
}

// values returns the field values keyed by form field name.
func (f *taskForm) values() map[string]string {
	return map[string]string{
		form.FieldTitle:       f.title.Value(),
		form.FieldDescription: f.desc.Value(),
		form.FieldStatus:      string(statusOptions[f.status]),
		form.FieldPriority:    string(priorityOptions[f.priority]),
		form.FieldDue:         f.due.Value(),
	}
}

// setValues fills the form from field values. Unknown select values are
// ignored.
func (f *taskForm) setValues(v map[string]string) {
	f.title.SetValue(v[form.FieldTitle])
	f.desc.SetValue(v[form.FieldDescription])
	f.due.SetValue(v[form.FieldDue])
	for i, s := range statusOptions {
		if string(s) == v[form.FieldStatus] {
			f.status = i
		}
	}
	for i, p := range priorityOptions {
		if string(p) == v[form.FieldPriority] {
			f.priority = i
		}
	}
}

func (f *taskForm) setFocus(i int) {
	f.focus = (i + focusCount) % focusCount
	f.title.Blur()
	f.desc.Blur()
	f.due.Blur()
	switch f.focus {
	case focusTitle:
		f.title.Focus()
	case focusDescription:
		f.desc.Focus()
	case focusDue:
		f.due.Focus()
	}
}

// update routes a key to the focused field. It reports whether a value
// changed.
func (f *taskForm) update(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		if f.focus != focusDescription || msg.String() == "tab" {
			f.setFocus(f.focus + 1)
			return false, nil
		}
	case "shift+tab", "up":
		if f.focus != focusDescription || msg.String() == "shift+tab" {
			f.setFocus(f.focus - 1)
			return false, nil
		}
	}

	before := f.values()
	var cmd tea.Cmd
	switch f.focus {
	case focusTitle:
		f.title, cmd = f.title.Update(msg)
	case focusDescription:
		f.desc, cmd = f.desc.Update(msg)
	case focusDue:
		f.due, cmd = f.due.Update(msg)
	case focusStatus:
		f.status = cycle(msg.String(), f.status, len(statusOptions))
	case focusPriority:
		f.priority = cycle(msg.String(), f.priority, len(priorityOptions))
	}

	after := f.values()
	for k, v := range after {
		if before[k] != v {
			f.draftSaved = false
			return true, cmd
		}
	}
	return false, cmd
}

func cycle(key string, i, n int) int {
	switch key {
	case "left", "h":
		return (i - 1 + n) % n
	case "right", "l", " ":
		return (i + 1) % n
	}
	return i
}

func (f *taskForm) view(s *Styles) string {
	var b strings.Builder
	b.WriteString(s.ModalTitle.Render("New task"))
	b.WriteString("\n\n")

	field := func(idx int, label, name, body string) {
		b.WriteString(s.ModalLabel.Render(label))
		b.WriteString("\n")
		st := s.ModalInput
		if f.focus == idx {
			st = s.ModalInputFocused
		}
		b.WriteString(st.Width(formWidth).Render(body))
		b.WriteString("\n")
		if msg := f.errs.First(name); msg != "" {
			b.WriteString(s.ModalError.Render(msg))
			b.WriteString("\n")
		}
	}

	field(focusTitle, "Title", form.FieldTitle, f.title.View())
	field(focusDescription, "Description", form.FieldDescription, f.desc.View())
	field(focusStatus, "Status", form.FieldStatus, selector(statusLabels(), f.status))
	field(focusPriority, "Priority", form.FieldPriority, selector(priorityLabels(), f.priority))
	field(focusDue, "Due date", form.FieldDue, f.due.View())

	if msg := f.errs.First(""); msg != "" {
		b.WriteString(s.ModalError.Render(msg))
		b.WriteString("\n")
	}

	var hints []string
	switch {
	case f.submitting:
		hints = append(hints, "Saving...")
	case len(f.restored) > 0:
		hints = append(hints, "Draft restored")
	case f.draftSaved:
		hints = append(hints, "Draft saved")
	}
	hints = append(hints, "ctrl+s save • esc close • tab next field")
	b.WriteString("\n")
	b.WriteString(s.ModalHint.Render(strings.Join(hints, " • ")))

	return s.Modal.Render(lipgloss.NewStyle().Width(formWidth).Render(b.String()))
}

func selector(labels []string, selected int) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		if i == selected {
			parts[i] = "[" + l + "]"
		} else {
			parts[i] = " " + l + " "
		}
	}
	return "‹ " + strings.Join(parts, " ") + " ›"
}

func statusLabels() []string {
	out := make([]string, len(statusOptions))
	for i, s := range statusOptions {
		out[i] = s.Display()
	}
	return out
}

func priorityLabels() []string {
	out := make([]string, len(priorityOptions))
	for i, p := range priorityOptions {
		out[i] = p.Display()
	}
	return out
}
