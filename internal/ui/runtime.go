package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/javiermolinar/taskdesk/internal/board"
	"github.com/javiermolinar/taskdesk/internal/httpx"
	"github.com/javiermolinar/taskdesk/internal/logging"
	"github.com/javiermolinar/taskdesk/internal/notify"
	"github.com/javiermolinar/taskdesk/internal/store"
	"github.com/javiermolinar/taskdesk/internal/taskapi"
	"github.com/javiermolinar/taskdesk/internal/theme"
)

// runtime wires the collaborators shared by every command.
type runtime struct {
	center  *notify.Center
	spinner *httpx.Spinner
	session *httpx.Session
	client  *taskapi.Client
	board   *board.Board
	actions *taskapi.Actions
	kv      *store.SQLite
	theme   *theme.Controller

	closers []func() error
}

// open builds the runtime. Notifications are printed to the error output
// unless a full screen UI renders them.
func (a *App) open(ctx context.Context, printNotifications bool) (*runtime, error) {
	cfg := a.config
	rt := &runtime{}

	rt.center = notify.New(
		notify.WithDefaultDuration(cfg.NotifyDuration()),
		notify.WithHideAnimation(cfg.HideAnimation()),
		notify.WithLogger(logging.Component("notify")),
	)
	rt.closers = append(rt.closers, func() error { rt.center.Close(); return nil })

	if printNotifications {
		rt.center.Subscribe(notify.NewPrinter(a.errOut).Handle)
	}
	if cfg.Notifications.Desktop {
		d, err := notify.NewDesktop("taskdesk")
		if err != nil {
			log.Warn().Err(err).Msg("desktop notifications unavailable")
		} else {
			rt.center.Subscribe(d.Handle)
			rt.closers = append(rt.closers, d.Close)
		}
	}

	rt.spinner = httpx.NewSpinner(nil)
	session, err := httpx.NewSession(
		httpx.SessionConfig{
			BaseURL:    cfg.Server.BaseURL,
			Timeout:    cfg.Timeout(),
			CSRFCookie: cfg.Server.CSRFCookie,
			CSRFMeta:   cfg.Server.CSRFMeta,
		},
		httpx.WithIndicator(rt.spinner),
		httpx.WithNotifier(rt.center),
		httpx.WithLogger(logging.Component("http")),
	)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("creating session: %w", err)
	}
	rt.session = session

	kv, err := store.New(cfg.Storage.DBPath)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("opening local store: %w", err)
	}
	rt.kv = kv
	rt.closers = append(rt.closers, kv.Close)

	rt.theme = theme.NewController(kv, rt.center, cfg.UI.Theme)
	if _, err := rt.theme.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("loading theme")
	}

	rt.board = board.New()
	rt.client = taskapi.New(session)
	rt.actions = taskapi.NewActions(rt.client, rt.center, rt.board)
	return rt, nil
}

// Close releases everything in reverse order.
func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
