package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var severityColors = map[Severity]*color.Color{
	SeveritySuccess: color.New(color.FgGreen, color.Bold),
	SeverityError:   color.New(color.FgRed, color.Bold),
	SeverityWarning: color.New(color.FgYellow, color.Bold),
	SeverityInfo:    color.New(color.FgCyan),
}

// Printer writes each shown notification as one line. It is the renderer
// used by non-interactive commands.
type Printer struct {
	mu    sync.Mutex
	w     io.Writer
	title cases.Caser
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, title: cases.Title(language.English)}
}

// Handle is a Subscriber.
func (p *Printer) Handle(ev Event) {
	if ev.Kind != EventShown {
		return
	}
	n := ev.Notification
	c, ok := severityColors[n.Severity]
	if !ok {
		c = severityColors[SeverityInfo]
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	label := c.Sprintf("%s %s", n.Severity.Icon(), p.title.String(string(n.Severity)))
	_, _ = fmt.Fprintf(p.w, "%s: %s\n", label, n.Message)
}
