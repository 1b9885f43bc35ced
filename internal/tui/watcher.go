package tui

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/javiermolinar/taskdesk/internal/config"
)

// ConfigReloadedMsg is sent when the config file changed on disk.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// ConfigWatcher reloads the config file when it changes. The parent
// directory is watched so editors that replace the file are seen too.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	done     chan struct{}
}

// NewConfigWatcher starts watching path and forwards reloads to b.
func NewConfigWatcher(path string, b *Bridge) (*ConfigWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	cw := &ConfigWatcher{
		watcher:  w,
		path:     filepath.Clean(path),
		debounce: 100 * time.Millisecond,
		done:     make(chan struct{}),
	}
	go cw.run(b)
	return cw, nil
}

func (cw *ConfigWatcher) run(b *Bridge) {
	defer close(cw.done)
	var timer *time.Timer
	for {
		select {
		case ev, ok := <-cw.watcher.Events:
			if !ok {
				if timer != nil {
					timer.Stop()
				}
				return
			}
			if filepath.Clean(ev.Name) != cw.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			// editors write in several steps; wait for them to settle
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(cw.debounce, func() {
				cfg, err := config.LoadFrom(cw.path)
				if err == nil {
					err = cfg.Validate()
				}
				b.Send(ConfigReloadedMsg{Config: cfg, Err: err})
			})

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Str("component", "tui").Msg("config watcher")
		}
	}
}

// Close stops watching.
func (cw *ConfigWatcher) Close() error {
	err := cw.watcher.Close()
	<-cw.done
	return err
}
