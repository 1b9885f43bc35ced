package notify

import (
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type entry struct {
	n     Notification
	state State
	timer Timer
}

// container holds active notifications in creation order (oldest first).
type container struct {
	order []*entry
	byID  map[string]*entry
}

func newContainer() *container {
	return &container{byID: make(map[string]*entry)}
}

func (c *container) add(e *entry) {
	c.order = append(c.order, e)
	c.byID[e.n.ID] = e
}

func (c *container) remove(id string) {
	delete(c.byID, id)
	for i, e := range c.order {
		if e.n.ID == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// Center creates and manages notifications. The zero value is not usable;
// construct with New. A Center is safe for concurrent use.
type Center struct {
	mu              sync.Mutex
	clock           Clock
	defaultDuration time.Duration
	hideAnimation   time.Duration
	log             zerolog.Logger

	container   *container // created lazily by Init
	subscribers map[int]Subscriber
	nextSubID   int
	closed      bool
}

// Option configures a Center.
type Option func(*Center)

// WithClock replaces the wall clock used for timers.
func WithClock(clock Clock) Option {
	return func(c *Center) { c.clock = clock }
}

// WithDefaultDuration sets the duration used by Info, Success, Warn and Error.
func WithDefaultDuration(d time.Duration) Option {
	return func(c *Center) { c.defaultDuration = d }
}

// WithHideAnimation sets the delay between Hiding and Detached.
func WithHideAnimation(d time.Duration) Option {
	return func(c *Center) { c.hideAnimation = d }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Center) { c.log = l }
}

// New creates a Center. The container is not created until the first
// notification or an explicit Init.
func New(opts ...Option) *Center {
	c := &Center{
		clock:           realClock{},
		defaultDuration: DefaultDuration,
		hideAnimation:   DefaultHideAnimation,
		log:             log.With().Str("component", "notify").Logger(),
		subscribers:     make(map[int]Subscriber),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init creates the notification container. Calling it more than once is a
// no-op; the first container is reused.
func (c *Center) Init() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initLocked()
}

func (c *Center) initLocked() {
	if c.container == nil && !c.closed {
		c.container = newContainer()
	}
}

// Subscribe registers fn for lifecycle events and returns a function that
// removes the subscription.
func (c *Center) Subscribe(fn Subscriber) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// Notify shows message with the given severity and schedules its removal
// after d. Unrecognized severities are shown as info. A negative d is
// treated as zero.
func (c *Center) Notify(message string, severity Severity, d time.Duration) (Notification, error) {
	if strings.TrimSpace(message) == "" {
		return Notification{}, ErrEmptyMessage
	}
	if !severity.Valid() {
		c.log.Debug().Str("severity", string(severity)).Msg("unknown severity, using info")
		severity = SeverityInfo
	}
	if d < 0 {
		d = 0
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Notification{}, ErrClosed
	}
	c.initLocked()

	n := Notification{
		ID:          ulid.Make().String(),
		Severity:    severity,
		Message:     message,
		AutoDismiss: d,
		CreatedAt:   c.clock.Now(),
	}
	e := &entry{n: n, state: StateVisible}
	c.container.add(e)
	subs := c.snapshotSubscribers()
	c.mu.Unlock()

	c.log.Debug().Str("id", n.ID).Str("severity", string(severity)).Dur("duration", d).Msg("notification shown")
	emit(subs, Event{Kind: EventShown, Notification: n})

	// Armed after Shown is delivered so subscribers never see Hiding first.
	c.mu.Lock()
	if e.state == StateVisible && !c.closed {
		e.timer = c.clock.AfterFunc(d, func() { c.hide(n.ID, ReasonTimeout) })
	}
	c.mu.Unlock()
	return n, nil
}

// Info shows an info notification for the default duration.
func (c *Center) Info(message string) (Notification, error) {
	return c.Notify(message, SeverityInfo, c.defaultDuration)
}

// Success shows a success notification for the default duration.
func (c *Center) Success(message string) (Notification, error) {
	return c.Notify(message, SeveritySuccess, c.defaultDuration)
}

// Warn shows a warning notification for the default duration.
func (c *Center) Warn(message string) (Notification, error) {
	return c.Notify(message, SeverityWarning, c.defaultDuration)
}

// Error shows an error notification for the default duration.
func (c *Center) Error(message string) (Notification, error) {
	return c.Notify(message, SeverityError, c.defaultDuration)
}

// Dismiss starts the removal of a visible notification. It reports whether
// the notification was visible; dismissing twice is a no-op.
func (c *Center) Dismiss(id string) bool {
	return c.hide(id, ReasonDismissed)
}

// DismissNewest dismisses the most recent visible notification.
func (c *Center) DismissNewest() bool {
	c.mu.Lock()
	var id string
	if c.container != nil {
		for i := len(c.container.order) - 1; i >= 0; i-- {
			if c.container.order[i].state == StateVisible {
				id = c.container.order[i].n.ID
				break
			}
		}
	}
	c.mu.Unlock()

	if id == "" {
		return false
	}
	return c.Dismiss(id)
}

func (c *Center) hide(id string, reason Reason) bool {
	c.mu.Lock()
	if c.container == nil {
		c.mu.Unlock()
		return false
	}
	e, ok := c.container.byID[id]
	if !ok || e.state != StateVisible {
		c.mu.Unlock()
		return false
	}
	e.state = StateHiding
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = c.clock.AfterFunc(c.hideAnimation, func() { c.detach(id, reason) })
	n := e.n
	subs := c.snapshotSubscribers()
	c.mu.Unlock()

	emit(subs, Event{Kind: EventHiding, Notification: n, Reason: reason})
	return true
}

func (c *Center) detach(id string, reason Reason) {
	c.mu.Lock()
	if c.container == nil {
		c.mu.Unlock()
		return
	}
	e, ok := c.container.byID[id]
	if !ok || e.state != StateHiding {
		c.mu.Unlock()
		return
	}
	e.state = StateDetached
	e.timer = nil
	c.container.remove(id)
	n := e.n
	subs := c.snapshotSubscribers()
	c.mu.Unlock()

	c.log.Debug().Str("id", id).Msg("notification detached")
	emit(subs, Event{Kind: EventDetached, Notification: n, Reason: reason})
}

// Active returns the notifications still attached to the container,
// oldest first. Hiding notifications are included until detached.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.container == nil {
		return nil
	}
	out := make([]Notification, 0, len(c.container.order))
	for _, e := range c.container.order {
		out = append(out, e.n)
	}
	return out
}

// Len returns the number of attached notifications.
func (c *Center) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.container == nil {
		return 0
	}
	return len(c.container.order)
}

// State returns the lifecycle state of an attached notification.
// Detached notifications are no longer known.
func (c *Center) State(id string) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.container == nil {
		return StateDetached, false
	}
	e, ok := c.container.byID[id]
	if !ok {
		return StateDetached, false
	}
	return e.state, true
}

// Close cancels every pending timer and detaches all notifications.
// Notify returns ErrClosed afterwards.
func (c *Center) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	var detached []Notification
	if c.container != nil {
		for _, e := range c.container.order {
			if e.timer != nil {
				e.timer.Stop()
			}
			e.state = StateDetached
			detached = append(detached, e.n)
		}
		c.container = nil
	}
	subs := c.snapshotSubscribers()
	c.mu.Unlock()

	for _, n := range detached {
		emit(subs, Event{Kind: EventDetached, Notification: n, Reason: ReasonClosed})
	}
}

func (c *Center) snapshotSubscribers() []Subscriber {
	subs := make([]Subscriber, 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func emit(subs []Subscriber, ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}
