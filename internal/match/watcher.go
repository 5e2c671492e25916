package match

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/roach88/xpand/internal/logging"
)

// DefaultDebounce groups bursts of file events into one reload.
const DefaultDebounce = 300 * time.Millisecond

// Watcher calls a reload function after match files under a directory
// change. Rapid changes are debounced into one call.
type Watcher struct {
	fsw    *fsnotify.Watcher
	delay  time.Duration
	reload func() error
	log    zerolog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches dir and every directory below it on the OS
// filesystem.
func NewWatcher(dir string, delay time.Duration, reload func() error) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{
		fsw:    fsw,
		delay:  delay,
		reload: reload,
		log:    logging.Component("watcher"),
	}
	if err := w.addRecursive(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.fsw.Add(path); err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}
		}
		return nil
	})
}

// Run processes file events until ctx is cancelled, then closes the
// underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("File watcher error")
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(ev.Name); err != nil {
				w.log.Warn().Err(err).Str("path", ev.Name).Msg("Cannot watch new directory")
			}
			w.schedule()
			return
		}
	}
	if !isMatchFile(ev.Name) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	w.log.Trace().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("Match file changed")
	w.schedule()
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.fire)
}

func (w *Watcher) fire() {
	if err := w.reload(); err != nil {
		w.log.Warn().Err(err).Msg("Reload failed, keeping previous matches")
		return
	}
	w.log.Info().Msg("Matches reloaded")
}

func (w *Watcher) stop() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	w.fsw.Close()
}
