package notify

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_WritesShownNotifications(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	p := NewPrinter(&buf)

	n := Notification{ID: "1", Severity: SeveritySuccess, Message: `Status changed to "Done"`}
	p.Handle(Event{Kind: EventShown, Notification: n})
	p.Handle(Event{Kind: EventHiding, Notification: n})
	p.Handle(Event{Kind: EventDetached, Notification: n})

	assert.Equal(t, "✔ Success: Status changed to \"Done\"\n", buf.String())
}

type fakeBus struct {
	calls   []string
	args    [][]interface{}
	nextID  uint32
	failing bool
}

func (b *fakeBus) Call(method string, _ dbus.Flags, args ...interface{}) *dbus.Call {
	b.calls = append(b.calls, method)
	b.args = append(b.args, args)
	if b.failing {
		return &dbus.Call{Err: errors.New("no daemon")}
	}
	if method == dbusNotify {
		b.nextID++
		return &dbus.Call{Body: []interface{}{b.nextID}}
	}
	return &dbus.Call{}
}

func TestDesktop_ShowAndClose(t *testing.T) {
	bus := &fakeBus{}
	d := newDesktop("taskdesk", bus)

	n := Notification{ID: "a", Severity: SeverityError, Message: "Could not connect to the server", AutoDismiss: 5 * time.Second}
	d.Handle(Event{Kind: EventShown, Notification: n})

	require.Equal(t, []string{dbusNotify}, bus.calls)
	args := bus.args[0]
	assert.Equal(t, "taskdesk", args[0])
	assert.Equal(t, "Could not connect to the server", args[4])
	hints := args[6].(map[string]dbus.Variant)
	assert.Equal(t, urgencyCritical, hints["urgency"].Value())
	assert.Equal(t, int32(5000), args[7])

	d.Handle(Event{Kind: EventDetached, Notification: n, Reason: ReasonDismissed})
	require.Equal(t, []string{dbusNotify, dbusCloseNote}, bus.calls)
	assert.Equal(t, uint32(1), bus.args[1][0])
}

func TestDesktop_ExpireTimeoutIsClamped(t *testing.T) {
	bus := &fakeBus{}
	d := newDesktop("taskdesk", bus)

	n := Notification{ID: "a", Severity: SeverityInfo, Message: "Pinned", AutoDismiss: 30 * 24 * time.Hour}
	d.Handle(Event{Kind: EventShown, Notification: n})
	require.Len(t, bus.args, 1)
	assert.Equal(t, int32(math.MaxInt32), bus.args[0][7])

	assert.Equal(t, int32(1), expireTimeout(0))
	assert.Equal(t, int32(1), expireTimeout(-time.Second))
}

func TestDesktop_TimeoutDoesNotClose(t *testing.T) {
	bus := &fakeBus{}
	d := newDesktop("taskdesk", bus)

	n := Notification{ID: "a", Severity: SeverityInfo, Message: "hi"}
	d.Handle(Event{Kind: EventShown, Notification: n})
	d.Handle(Event{Kind: EventDetached, Notification: n, Reason: ReasonTimeout})

	assert.Equal(t, []string{dbusNotify}, bus.calls)
	assert.Equal(t, int32(1), bus.args[0][7], "zero duration must not mean never expire")
}

func TestDesktop_DaemonFailureIsNotFatal(t *testing.T) {
	bus := &fakeBus{failing: true}
	d := newDesktop("taskdesk", bus)

	n := Notification{ID: "a", Severity: SeverityInfo, Message: "hi"}
	d.Handle(Event{Kind: EventShown, Notification: n})
	d.Handle(Event{Kind: EventDetached, Notification: n, Reason: ReasonDismissed})

	assert.Equal(t, []string{dbusNotify}, bus.calls, "nothing to close when show failed")
}

func TestDesktop_FollowsCenter(t *testing.T) {
	bus := &fakeBus{}
	d := newDesktop("taskdesk", bus)
	clock := newFakeClock()
	c := New(WithClock(clock))
	defer c.Close()
	c.Subscribe(d.Handle)

	n, err := c.Warn("careful")
	require.NoError(t, err)
	c.Dismiss(n.ID)
	clock.Advance(time.Second)

	assert.Equal(t, []string{dbusNotify, dbusCloseNote}, bus.calls)
}
