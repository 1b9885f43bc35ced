package httpx

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Pending marks one in-flight call. Hide is safe to call more than once;
// only the first call has an effect.
type Pending interface {
	ID() string
	Hide()
}

// Indicator shows a loading marker for the duration of a call.
type Indicator interface {
	Show() Pending
}

// Spinner is an Indicator that counts in-flight calls. Each Show returns
// its own Pending, so concurrent calls never share a marker.
type Spinner struct {
	mu       sync.Mutex
	inFlight map[string]time.Time
	onChange func(count int)
}

// NewSpinner creates a Spinner. onChange, if set, is called with the new
// in-flight count after every show and hide.
func NewSpinner(onChange func(count int)) *Spinner {
	return &Spinner{inFlight: make(map[string]time.Time), onChange: onChange}
}

// Show implements Indicator.
func (s *Spinner) Show() Pending {
	p := &pending{id: uuid.NewString(), spinner: s}
	s.mu.Lock()
	s.inFlight[p.id] = time.Now()
	n := len(s.inFlight)
	s.mu.Unlock()
	s.changed(n)
	return p
}

// Count returns the number of visible markers.
func (s *Spinner) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inFlight)
}

// Visible reports whether any call is in flight.
func (s *Spinner) Visible() bool {
	return s.Count() > 0
}

// SetOnChange replaces the change callback.
func (s *Spinner) SetOnChange(fn func(count int)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Spinner) release(id string) {
	s.mu.Lock()
	delete(s.inFlight, id)
	n := len(s.inFlight)
	s.mu.Unlock()
	s.changed(n)
}

func (s *Spinner) changed(n int) {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(n)
	}
}

type pending struct {
	id      string
	spinner *Spinner
	once    sync.Once
}

func (p *pending) ID() string { return p.id }

func (p *pending) Hide() {
	p.once.Do(func() { p.spinner.release(p.id) })
}

// noIndicator is used when no indicator is configured.
type noIndicator struct{}

func (noIndicator) Show() Pending { return noPending{} }

type noPending struct{}

func (noPending) ID() string { return "" }
func (noPending) Hide()      {}
