// Package watcher invalidates an engine's template cache when files under its
// root change, with debouncing.
package watcher

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader drops cached templates. *view.Engine implements it.
type Reloader interface {
	Reload()
}

// Watcher monitors a template root and reloads the engine after edits settle.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	suffix    string
	debounce  time.Duration
	target    Reloader
	logger    *slog.Logger
	onChange  chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

// Config holds watcher configuration options.
type Config struct {
	Root        string
	Suffix      string // only files with this suffix count; empty means every file
	DebounceDur time.Duration
	Logger      *slog.Logger
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(root string) Config {
	return Config{
		Root:        root,
		Suffix:      ".tmpl",
		DebounceDur: 200 * time.Millisecond,
	}
}

// New creates a watcher that calls target.Reload on changes below cfg.Root.
func New(cfg Config, target Reloader) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		fsWatcher: fsw,
		root:      cfg.Root,
		suffix:    cfg.Suffix,
		debounce:  cfg.DebounceDur,
		target:    target,
		logger:    logger,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start watches the root and every directory below it.
// Returns a channel that receives a signal after each reload.
func (w *Watcher) Start() (<-chan struct{}, error) {
	err := filepath.WalkDir(w.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsWatcher.Add(p); err != nil {
			return fmt.Errorf("watching directory %s: %w", p, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.wg.Add(1)
	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher, waits for its goroutine and releases resources.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		w.wg.Wait()
		err = w.fsWatcher.Close()
	})
	return err
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	defer w.wg.Done()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	pending := false

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.track(event)
			if !w.isRelevantEvent(event) {
				continue
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			w.target.Reload()
			w.logger.Debug("template cache invalidated", "root", w.root)
			// Non-blocking send - drop if channel full
			select {
			case w.onChange <- struct{}{}:
			default:
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("template watcher error", "root", w.root, "error", err)

		case <-w.done:
			return
		}
	}
}

// track starts watching directories created after Start.
func (w *Watcher) track(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsWatcher.Add(event.Name); err != nil {
		w.logger.Warn("template watcher: add directory", "dir", event.Name, "error", err)
	}
}

// isRelevantEvent checks if the event should trigger a reload.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return w.suffix == "" || strings.HasSuffix(event.Name, w.suffix)
}
