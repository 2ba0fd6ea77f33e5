// Package configwatch reloads the pitch config file when it changes on disk.
package configwatch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/houvven/pitch/internal/cliconfig"
	"github.com/houvven/pitch/pkg/log"
)

// DefaultDebounceDelay is how long the watcher waits after the last change
// before reloading.
const DefaultDebounceDelay = 100 * time.Millisecond

// ApplyFunc receives a freshly parsed config file.
type ApplyFunc func(fc cliconfig.FileConfig) error

// Config holds configuration options for the watcher.
type Config struct {
	// Path is the config file to watch. Its directory is watched so that
	// editors which replace the file are still seen.
	Path string

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// Watcher monitors one config file via fsnotify.
type Watcher struct {
	path          string
	debounceDelay time.Duration
	apply         ApplyFunc
	logger        log.Logger
}

// New creates a watcher that calls apply after each settled change.
func New(cfg Config, apply ApplyFunc, logger log.Logger) *Watcher {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultDebounceDelay
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Watcher{
		path:          filepath.Clean(cfg.Path),
		debounceDelay: cfg.DebounceDelay,
		apply:         apply,
		logger:        logger,
	}
}

// Run watches until ctx is done. It returns an error only if the watch
// could not be set up.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching config file", log.String("path", w.path))

	var (
		timer    *time.Timer
		debounce <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounceDelay)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounceDelay)
			}
			debounce = timer.C

		case <-debounce:
			debounce = nil
			w.reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) reload() {
	fc, err := cliconfig.LoadFileConfig(w.path)
	if err != nil {
		w.logger.Warn("config reload skipped", log.String("path", w.path), log.Err(err))
		return
	}
	if err := w.apply(fc); err != nil {
		w.logger.Warn("config reload rejected", log.String("path", w.path), log.Err(err))
		return
	}
	w.logger.Debug("config reloaded", log.String("path", w.path))
}
