// Package watch reports changes to source files in batches.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sanchopanca/for-else/report"
)

// DefaultDebounce is the time a file must stay unchanged before it is reported.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches a set of directories for changes to source files.  Rapid
// successive writes to a file, as editors produce on save, are reported once.
type Watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	ext      string
	debounce time.Duration
	pending  map[string]time.Time
	onChange func(paths []string)
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool

	// OnError is called with the errors of the underlying watcher.  It
	// defaults to reporting them as standard errors.
	OnError func(err error)
}

// New creates a watcher over the given directories for files with the given
// extension.  The callback is called from the watcher's goroutine with each
// batch of changed files in sorted order.
func New(dirs []string, ext string, debounce time.Duration, onChange func(paths []string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		fsw:      fsw,
		ext:      ext,
		debounce: debounce,
		pending:  make(map[string]time.Time),
		onChange: onChange,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		OnError:  func(err error) {
			report.ReportStdError("watch", err)
		},
	}, nil
}

// Start begins watching in a new goroutine.  The watcher stops when the context
// is cancelled or when it is closed.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}

	w.running = true
	go w.run(ctx)
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}

	return w.fsw.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}

			w.OnError(err)
		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

// handleEvent records a change to a source file.  New directories are added
// to the watch list.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if finfo, err := os.Stat(event.Name); err == nil && finfo.IsDir() {
			if err := w.fsw.Add(event.Name); err != nil {
				w.OnError(err)
			}

			return
		}
	}

	if filepath.Ext(event.Name) != w.ext {
		return
	}

	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.mu.Lock()
		w.pending[event.Name] = time.Now()
		w.mu.Unlock()
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.mu.Lock()
		delete(w.pending, event.Name)
		w.mu.Unlock()
	}
}

// flush hands every file that has settled to the callback.
func (w *Watcher) flush(now time.Time) {
	var ready []string

	w.mu.Lock()
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	if len(ready) > 0 {
		sort.Strings(ready)
		w.onChange(ready)
	}
}
