// Package watch reports changes to one file on disk. The parent directory
// is watched so that editors that save by rename are seen too. Bursts of
// events are folded into a single notification after a quiet period.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/wesen/stategraph/pkg/log"
)

// DefaultQuiet is how long the file must stay untouched before a change is
// reported.
const DefaultQuiet = 150 * time.Millisecond

// Event says the watched file changed.
type Event struct {
	Path string
	Time time.Time
}

type Watcher struct {
	fs     *fsnotify.Watcher
	path   string
	quiet  time.Duration
	events chan Event
	logger log.Logger
}

// New watches path. quiet <= 0 selects DefaultQuiet.
func New(path string, quiet time.Duration, logger log.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Watcher{
		fs:     fsw,
		path:   abs,
		quiet:  quiet,
		events: make(chan Event, 1),
		logger: log.Or(logger),
	}, nil
}

// Events delivers debounced changes. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event { return w.events }

// Run processes file system events until ctx is done or the watcher is
// closed.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)
	defer w.fs.Close()

	timer := time.NewTimer(w.quiet)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("watch: %s", ev)
			timer.Reset(w.quiet)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch %s: %v", w.path, err)

		case t := <-timer.C:
			select {
			case w.events <- Event{Path: w.path, Time: t}:
			default:
				// a change is already pending
			}
		}
	}
}

// Close stops watching. Run returns soon after.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
