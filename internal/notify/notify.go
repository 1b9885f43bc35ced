// Package notify implements the notification center: short-lived,
// auto-dismissing messages shown without blocking the rest of the UI.
//
// A Center owns a single container of active notifications. Each
// notification is timed independently and moves through a fixed lifecycle:
//
//	Visible -> (timer fires or Dismiss) -> Hiding -> Detached
//
// Renderers (the TUI toast stack, the CLI printer, the desktop mirror)
// follow the lifecycle by subscribing to Events.
package notify

import (
	"errors"
	"strings"
	"time"
)

// DefaultDuration is how long a notification stays visible when no
// duration is given.
const DefaultDuration = 5 * time.Second

// DefaultHideAnimation is the length of the removal animation between
// Hiding and Detached.
const DefaultHideAnimation = 150 * time.Millisecond

// Errors returned by Notify.
var (
	ErrEmptyMessage = errors.New("notification message cannot be empty")
	ErrClosed       = errors.New("notification center is closed")
)

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Valid reports whether s is one of the four recognized severities.
func (s Severity) Valid() bool {
	switch s {
	case SeveritySuccess, SeverityError, SeverityWarning, SeverityInfo:
		return true
	default:
		return false
	}
}

// ParseSeverity maps a string to a Severity. Unrecognized values are
// coerced to SeverityInfo.
func ParseSeverity(s string) Severity {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if !sev.Valid() {
		return SeverityInfo
	}
	return sev
}

// Icon returns the glyph shown next to the message.
func (s Severity) Icon() string {
	switch s {
	case SeveritySuccess:
		return "✔"
	case SeverityError:
		return "✖"
	case SeverityWarning:
		return "!"
	default:
		return "i"
	}
}

// Notification is an immutable notification as created by the Center.
type Notification struct {
	ID          string
	Severity    Severity
	Message     string
	AutoDismiss time.Duration
	CreatedAt   time.Time
}

// State is the lifecycle position of a notification.
type State int

const (
	StateVisible State = iota
	StateHiding
	StateDetached
)

func (s State) String() string {
	switch s {
	case StateVisible:
		return "visible"
	case StateHiding:
		return "hiding"
	case StateDetached:
		return "detached"
	default:
		return "unknown"
	}
}

// EventKind identifies a lifecycle transition.
type EventKind int

const (
	EventShown EventKind = iota
	EventHiding
	EventDetached
)

// Reason records what ended a notification.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonTimeout
	ReasonDismissed
	ReasonClosed
)

// Event is delivered to subscribers on every lifecycle transition.
type Event struct {
	Kind         EventKind
	Notification Notification
	Reason       Reason
}

// Subscriber receives lifecycle events. Subscribers are called from timer
// goroutines and must not call back into the Center synchronously.
type Subscriber func(Event)

// Notifier is the capability to surface a message to the user.
type Notifier interface {
	Notify(message string, severity Severity, d time.Duration) (Notification, error)
}
