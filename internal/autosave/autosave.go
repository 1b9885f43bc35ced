// Package autosave keeps unsent form drafts in the local store so they
// survive a closed form or a crash.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/javiermolinar/taskdesk/internal/store"
)

// DefaultDelay is the quiet period before a draft is written.
const DefaultDelay = time.Second

// Fields maps form field names to their current values.
type Fields map[string]string

// Key returns the store key of one field of a form.
func Key(formID, field string) string {
	return "autosave-" + formID + "-" + field
}

// Autosave saves the fields of one form.
type Autosave struct {
	kv       store.KV
	formID   string
	debounce *Debouncer[Fields]
	log      zerolog.Logger

	// OnSaved, when set, is called after every debounced save.
	OnSaved func(error)
}

// New creates an Autosave for formID. A zero delay uses DefaultDelay.
func New(kv store.KV, formID string, delay time.Duration) *Autosave {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if formID == "" {
		formID = fmt.Sprintf("form-%d", time.Now().UnixMilli())
	}
	a := &Autosave{
		kv:     kv,
		formID: formID,
		log:    log.With().Str("component", "autosave").Str("form", formID).Logger(),
	}
	a.debounce = NewDebouncer(delay, func(f Fields) {
		err := a.Save(context.Background(), f)
		if err != nil {
			a.log.Warn().Err(err).Msg("saving draft")
		}
		if a.OnSaved != nil {
			a.OnSaved(err)
		}
	})
	return a
}

// FormID returns the form identifier used in keys.
func (a *Autosave) FormID() string { return a.formID }

// Restore fills the empty entries of fields with saved values and returns
// the names of the fields it filled. Fields that already have a value are
// left alone.
func (a *Autosave) Restore(ctx context.Context, fields Fields) ([]string, error) {
	var restored []string
	for name, current := range fields {
		if current != "" {
			continue
		}
		v, ok, err := a.kv.Get(ctx, Key(a.formID, name))
		if err != nil {
			return restored, fmt.Errorf("restoring %s: %w", name, err)
		}
		if ok && v != "" {
			fields[name] = v
			restored = append(restored, name)
		}
	}
	return restored, nil
}

// Changed records an edit. The non-empty fields are written once no edit
// happened for the delay.
func (a *Autosave) Changed(fields Fields) {
	a.debounce.Trigger(maps.Clone(fields))
}

// Save writes the non-empty fields now.
func (a *Autosave) Save(ctx context.Context, fields Fields) error {
	var errs []error
	for name, v := range fields {
		if v == "" {
			continue
		}
		if err := a.kv.Set(ctx, Key(a.formID, name), v); err != nil {
			errs = append(errs, fmt.Errorf("saving %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Flush writes a pending draft immediately.
func (a *Autosave) Flush() bool {
	return a.debounce.Flush()
}

// Clear drops any pending save and removes the saved values of the named
// fields. Call it when the form is submitted.
func (a *Autosave) Clear(ctx context.Context, names ...string) error {
	a.debounce.Stop()
	var errs []error
	for _, name := range names {
		if err := a.kv.Delete(ctx, Key(a.formID, name)); err != nil {
			errs = append(errs, fmt.Errorf("clearing %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Close cancels a pending save without writing it.
func (a *Autosave) Close() {
	a.debounce.Stop()
}
