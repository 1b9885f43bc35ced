// Package httpx wraps the HTTP "send request" capability with the
// cross-cutting behavior every call to the task server needs: the
// anti-forgery header on mutating requests, a loading indicator for the
// duration of the call, and a uniform failure for non-2xx responses.
package httpx

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/javiermolinar/taskdesk/internal/notify"
)

// ConnectionErrorMessage is shown for transport and HTTP-level failures.
const ConnectionErrorMessage = "Could not connect to the server"

// Doer sends an HTTP request. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(req *http.Request) (*http.Response, error)

// Do implements Doer.
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// CallState is the position of a single call in its lifecycle.
type CallState int

const (
	CallIdle CallState = iota
	CallDispatched
	CallSucceeded
	CallFailed
)

// Interceptor is the augmented Doer returned by Install.
type Interceptor struct {
	base      Doer
	tokens    TokenSource
	indicator Indicator
	notifier  notify.Notifier
	log       zerolog.Logger
	observe   func(CallState, *http.Request)
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithTokens sets where the anti-forgery token comes from.
func WithTokens(ts TokenSource) Option {
	return func(i *Interceptor) { i.tokens = ts }
}

// WithIndicator sets the loading indicator.
func WithIndicator(ind Indicator) Option {
	return func(i *Interceptor) { i.indicator = ind }
}

// WithNotifier sets where connection failures are surfaced.
func WithNotifier(n notify.Notifier) Option {
	return func(i *Interceptor) { i.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(i *Interceptor) { i.log = l }
}

// WithObserver registers a hook called on every state transition of a call.
func WithObserver(fn func(CallState, *http.Request)) Option {
	return func(i *Interceptor) { i.observe = fn }
}

// Install wraps base with interception. Installing on a Doer that is
// already intercepted returns it unchanged, so calls are never wrapped
// twice.
func Install(base Doer, opts ...Option) Doer {
	if existing, ok := base.(*Interceptor); ok {
		return existing
	}
	i := &Interceptor{
		base:      base,
		tokens:    TokenFunc(func() string { return "" }),
		indicator: noIndicator{},
		log:       log.With().Str("component", "httpx").Logger(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IsMutating reports whether method changes server state. Only GET is
// treated as a safe read; an empty method means GET.
func IsMutating(method string) bool {
	return method != "" && !strings.EqualFold(method, http.MethodGet)
}

// Do sends req. On a mutating method the anti-forgery header is set. The
// indicator is shown before dispatch and hidden exactly once when the call
// settles. Non-2xx responses are returned as *StatusError with the body
// closed; transport failures as *TransportError. Both surface a connection
// error notification. Successful responses pass through unchanged.
func (i *Interceptor) Do(req *http.Request) (*http.Response, error) {
	i.transition(CallIdle, req)

	if IsMutating(req.Method) {
		req.Header.Set(CSRFHeader, i.tokens.Token())
	}
	if req.Header.Get("X-Requested-With") == "" {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}

	pending := i.indicator.Show()
	defer pending.Hide()
	if id := pending.ID(); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	logger := i.log.With().
		Str("request_id", pending.ID()).
		Str("method", method).
		Str("url", req.URL.String()).
		Logger()

	i.transition(CallDispatched, req)
	start := time.Now()
	resp, err := i.base.Do(req)
	if err != nil {
		pending.Hide()
		return nil, i.fail(req, logger, &TransportError{Method: method, URL: req.URL.String(), Err: err})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		pending.Hide()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
		return nil, i.fail(req, logger, &StatusError{
			Code:   resp.StatusCode,
			Status: statusText(resp),
			Method: method,
			URL:    req.URL.String(),
		})
	}

	pending.Hide()
	logger.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("request completed")
	i.transition(CallSucceeded, req)
	return resp, nil
}

func (i *Interceptor) fail(req *http.Request, logger zerolog.Logger, err error) error {
	logger.Error().Err(err).Msg("request failed")
	if i.notifier != nil {
		if _, nerr := i.notifier.Notify(ConnectionErrorMessage, notify.SeverityError, notify.DefaultDuration); nerr != nil {
			logger.Debug().Err(nerr).Msg("could not show connection error")
		}
	}
	i.transition(CallFailed, req)
	return err
}

func (i *Interceptor) transition(s CallState, req *http.Request) {
	if i.observe != nil {
		i.observe(s, req)
	}
}

// statusText returns the reason phrase of resp, e.g. "Not Found".
func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
