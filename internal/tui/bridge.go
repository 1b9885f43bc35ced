package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/javiermolinar/taskdesk/internal/notify"
	"github.com/javiermolinar/taskdesk/internal/tui/commands"
)

const bridgeBuffer = 256

// NotificationMsg carries a notification lifecycle event into the program.
type NotificationMsg struct {
	Event notify.Event
}

// PendingMsg carries the interceptor's in-flight count into the program.
type PendingMsg struct {
	Count int
}

// SearchMsg is sent when the debounced search query settles.
type SearchMsg struct {
	Query string
}

// DraftSavedMsg is sent when the form draft was written.
type DraftSavedMsg struct {
	Err error
}

// Bridge forwards events raised on other goroutines (timers, the
// interceptor, file watchers) to the program. Send never blocks: when the
// program falls behind, events are dropped, since every message only
// triggers a redraw of state the model reads from its sources.
type Bridge struct {
	ch chan tea.Msg
}

// NewBridge creates a Bridge.
func NewBridge() *Bridge {
	return &Bridge{ch: make(chan tea.Msg, bridgeBuffer)}
}

// Send queues msg for the program.
func (b *Bridge) Send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	default:
		log.Warn().Str("component", "tui").Msgf("dropping %T, program is not reading", msg)
	}
}

// Notifications is a notify.Subscriber.
func (b *Bridge) Notifications(ev notify.Event) {
	b.Send(NotificationMsg{Event: ev})
}

// Pending is an httpx.Spinner change callback.
func (b *Bridge) Pending(count int) {
	b.Send(PendingMsg{Count: count})
}

// Listen returns the command waiting for the next bridged message.
func (b *Bridge) Listen() tea.Cmd {
	return commands.Listen(b.ch)
}
