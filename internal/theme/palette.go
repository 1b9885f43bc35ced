package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/javiermolinar/taskdesk/internal/notify"
	"github.com/javiermolinar/taskdesk/internal/task"
)

// Palette holds the lipgloss colors derived from a Theme.
type Palette struct {
	Name string
	Dark bool

	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color

	TextOnAccent lipgloss.Color

	severity   map[notify.Severity]lipgloss.Color
	toastBg    map[notify.Severity]lipgloss.Color
	status     map[task.Status]lipgloss.Color
	statusText map[task.Status]lipgloss.Color
	priority   map[task.Priority]lipgloss.Color
}

// NewPalette derives a Palette from t.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t = MustLoad(Light)
	}
	dark := !isLight(t.Bg)

	p := &Palette{
		Name:         t.Name,
		Dark:         dark,
		Bg:           lipgloss.Color(t.Bg),
		BgHighlight:  lipgloss.Color(t.BgHighlight),
		BgSelection:  lipgloss.Color(t.BgSelection),
		Fg:           lipgloss.Color(t.Fg),
		FgMuted:      lipgloss.Color(t.FgMuted),
		Accent:       lipgloss.Color(t.Accent),
		TextOnAccent: lipgloss.Color(chooseText(t.Accent, t.Bg, t.Fg)),
		severity:     make(map[notify.Severity]lipgloss.Color),
		toastBg:      make(map[notify.Severity]lipgloss.Color),
		status:       make(map[task.Status]lipgloss.Color),
		statusText:   make(map[task.Status]lipgloss.Color),
		priority:     make(map[task.Priority]lipgloss.Color),
	}

	for sev, hex := range map[notify.Severity]string{
		notify.SeveritySuccess: t.Success,
		notify.SeverityError:   t.Error,
		notify.SeverityWarning: t.Warning,
		notify.SeverityInfo:    t.Info,
	} {
		p.severity[sev] = lipgloss.Color(hex)
		p.toastBg[sev] = lipgloss.Color(tint(hex, t.BgHighlight, dark))
	}
	for st, hex := range map[task.Status]string{
		task.StatusTodo:  t.Todo,
		task.StatusDoing: t.Doing,
		task.StatusDone:  t.Done,
	} {
		p.status[st] = lipgloss.Color(hex)
		p.statusText[st] = lipgloss.Color(chooseText(hex, t.Bg, t.Fg))
	}
	for pr, hex := range map[task.Priority]string{
		task.PriorityLow:    t.PriorityLow,
		task.PriorityMedium: t.PriorityMedium,
		task.PriorityHigh:   t.PriorityHigh,
		task.PriorityUrgent: t.PriorityUrgent,
	} {
		p.priority[pr] = lipgloss.Color(hex)
	}
	return p
}

// Severity returns the accent color of a notification severity.
func (p *Palette) Severity(s notify.Severity) lipgloss.Color {
	if c, ok := p.severity[s]; ok {
		return c
	}
	return p.severity[notify.SeverityInfo]
}

// ToastBg returns the background of a toast with severity s.
func (p *Palette) ToastBg(s notify.Severity) lipgloss.Color {
	if c, ok := p.toastBg[s]; ok {
		return c
	}
	return p.BgHighlight
}

// Status returns the badge background and foreground for s.
func (p *Palette) Status(s task.Status) (bg, fg lipgloss.Color) {
	bg, ok := p.status[s]
	if !ok {
		return p.FgMuted, p.Bg
	}
	return bg, p.statusText[s]
}

// Priority returns the color of a priority level.
func (p *Palette) Priority(pr task.Priority) lipgloss.Color {
	if c, ok := p.priority[pr]; ok {
		return c
	}
	return p.FgMuted
}

// GlamourStyle returns the glamour standard style matching the palette.
func (p *Palette) GlamourStyle() string {
	if p.Dark {
		return "dark"
	}
	return "light"
}

func parse(hex string) (colorful.Color, bool) {
	c, err := colorful.Hex(hex)
	return c, err == nil
}

func luminance(hex string) float64 {
	c, ok := parse(hex)
	if !ok {
		return 0
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func isLight(bg string) bool {
	return luminance(bg) > 0.55
}

// tint blends accent into bg so toasts keep the severity hue while staying
// readable with the theme foreground.
func tint(accent, bg string, dark bool) string {
	a, ok1 := parse(accent)
	b, ok2 := parse(bg)
	if !ok1 || !ok2 {
		return bg
	}
	ratio := 0.85
	if dark {
		ratio = 0.75
	}
	return a.BlendRgb(b, ratio).Clamped().Hex()
}

func contrast(a, b string) float64 {
	l1, l2 := luminance(a), luminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// chooseText returns whichever of the two text colors reads better on bg.
func chooseText(bg, textA, textB string) string {
	if contrast(bg, textA) >= contrast(bg, textB) {
		return textA
	}
	return textB
}
