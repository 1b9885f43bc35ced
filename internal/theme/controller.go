package theme

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/javiermolinar/taskdesk/internal/notify"
	"github.com/javiermolinar/taskdesk/internal/store"
)

// StorageKey is where the chosen theme is persisted.
const StorageKey = "theme"

// ToggleNotifyDuration is how long the theme change message stays up.
const ToggleNotifyDuration = 2 * time.Second

// Controller owns the current theme. It is created with NewController and
// initialized with Load; there is no package-level theme state.
type Controller struct {
	mu       sync.RWMutex
	kv       store.KV
	notifier notify.Notifier
	fallback string
	current  string
	palette  *Palette
	onChange []func(*Palette)
}

// NewController creates a controller. fallback is used when nothing is
// stored yet. notifier may be nil.
func NewController(kv store.KV, notifier notify.Notifier, fallback string) *Controller {
	name := Normalize(fallback)
	return &Controller{
		kv:       kv,
		notifier: notifier,
		fallback: name,
		current:  name,
		palette:  NewPalette(MustLoad(name)),
	}
}

// Load reads the stored theme and applies it.
func (c *Controller) Load(ctx context.Context) (string, error) {
	name := c.fallback
	if c.kv != nil {
		v, ok, err := c.kv.Get(ctx, StorageKey)
		if err != nil {
			return c.Current(), fmt.Errorf("reading theme: %w", err)
		}
		if ok {
			name = Normalize(v)
		}
	}
	c.apply(name)
	return name, nil
}

// Current returns the active theme name.
func (c *Controller) Current() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Palette returns the active palette.
func (c *Controller) Palette() *Palette {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.palette
}

// OnChange registers fn to be called with the new palette after a switch.
func (c *Controller) OnChange(fn func(*Palette)) {
	c.mu.Lock()
	c.onChange = append(c.onChange, fn)
	c.mu.Unlock()
}

// Toggle switches between light and dark, persists the choice and shows
// an info notification.
func (c *Controller) Toggle(ctx context.Context) (string, error) {
	return c.Set(ctx, Opposite(c.Current()))
}

// Set applies and persists the named theme.
func (c *Controller) Set(ctx context.Context, name string) (string, error) {
	name = Normalize(name)
	c.apply(name)

	var err error
	if c.kv != nil {
		if err = c.kv.Set(ctx, StorageKey, name); err != nil {
			err = fmt.Errorf("saving theme: %w", err)
			log.Warn().Err(err).Msg("theme applied but not persisted")
		}
	}

	if c.notifier != nil {
		if _, nerr := c.notifier.Notify(Message(name), notify.SeverityInfo, ToggleNotifyDuration); nerr != nil {
			log.Debug().Err(nerr).Msg("could not show theme notification")
		}
	}
	return name, err
}

// Message returns the notification shown after switching to name.
func Message(name string) string {
	if Normalize(name) == Dark {
		return "Dark theme enabled"
	}
	return "Light theme enabled"
}

func (c *Controller) apply(name string) {
	palette := NewPalette(MustLoad(name))

	c.mu.Lock()
	c.current = name
	c.palette = palette
	listeners := append([]func(*Palette){}, c.onChange...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(palette)
	}
}
