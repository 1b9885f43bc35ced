package notify

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	dbusDest      = "org.freedesktop.Notifications"
	dbusPath      = dbus.ObjectPath("/org/freedesktop/Notifications")
	dbusNotify    = "org.freedesktop.Notifications.Notify"
	dbusCloseNote = "org.freedesktop.Notifications.CloseNotification"
)

// Urgency levels from the freedesktop notification spec.
const (
	urgencyLow      byte = 0
	urgencyNormal   byte = 1
	urgencyCritical byte = 2
)

// busObject is the subset of dbus.BusObject used by Desktop.
type busObject interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Desktop mirrors notifications to the desktop notification daemon over
// the D-Bus session bus.
type Desktop struct {
	appName string
	obj     busObject
	conn    *dbus.Conn
	log     zerolog.Logger

	mu  sync.Mutex
	ids map[string]uint32 // notification ID -> daemon ID
}

// NewDesktop connects to the session bus.
func NewDesktop(appName string) (*Desktop, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}
	d := newDesktop(appName, conn.Object(dbusDest, dbusPath))
	d.conn = conn
	return d, nil
}

func newDesktop(appName string, obj busObject) *Desktop {
	return &Desktop{
		appName: appName,
		obj:     obj,
		log:     log.With().Str("component", "notify.desktop").Logger(),
		ids:     make(map[string]uint32),
	}
}

// Handle is a Subscriber. Shown notifications are sent to the daemon with
// the same timeout; dismissed ones are closed there too.
func (d *Desktop) Handle(ev Event) {
	switch ev.Kind {
	case EventShown:
		d.show(ev.Notification)
	case EventDetached:
		d.mu.Lock()
		id, ok := d.ids[ev.Notification.ID]
		delete(d.ids, ev.Notification.ID)
		d.mu.Unlock()
		if ok && ev.Reason != ReasonTimeout {
			if call := d.obj.Call(dbusCloseNote, 0, id); call.Err != nil {
				d.log.Debug().Err(call.Err).Uint32("id", id).Msg("closing desktop notification")
			}
		}
	}
}

func (d *Desktop) show(n Notification) {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgencyFor(n.Severity)),
	}
	call := d.obj.Call(dbusNotify, 0,
		d.appName,
		uint32(0),
		"",
		d.appName,
		n.Message,
		[]string{},
		hints,
		expireTimeout(n.AutoDismiss),
	)

	var id uint32
	if err := call.Store(&id); err != nil {
		d.log.Warn().Err(err).Msg("sending desktop notification")
		return
	}
	d.mu.Lock()
	d.ids[n.ID] = id
	d.mu.Unlock()
}

// Close releases the bus connection.
func (d *Desktop) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

func urgencyFor(s Severity) byte {
	switch s {
	case SeverityError:
		return urgencyCritical
	case SeverityInfo:
		return urgencyLow
	default:
		return urgencyNormal
	}
}

// expireTimeout converts d to the daemon's millisecond timeout. 0 would
// mean "never expire".
func expireTimeout(d time.Duration) int32 {
	return int32(min(max(d.Milliseconds(), 1), math.MaxInt32))
}
