// Package watcher re-runs work when input files change on disk.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period before a callback fires.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a fixed set of files with debouncing and pause/resume
// support. The containing directories are watched, so editors that replace
// a file by rename are still seen.
type Watcher struct {
	watcher       *fsnotify.Watcher
	files         map[string]bool      // Absolute paths to monitor
	debounceTime  time.Duration        // Quiet period before firing callback
	log           zerolog.Logger       // Event loop diagnostics
	callback      func(files []string) // Callback to invoke with changed files
	ctx           context.Context      // Context for lifecycle management
	cancel        context.CancelFunc   // Cancel function for internal context
	paused        bool                 // Whether watching is paused
	pausedMu      sync.RWMutex         // Protects paused flag
	accumulated   map[string]bool      // Accumulated file changes
	accumulatedMu sync.Mutex           // Protects accumulated map
	debounceTimer *time.Timer          // Current debounce timer
	timerMu       sync.Mutex           // Protects debounce timer
	fireCh        chan struct{}        // Wakes the event loop to fire
	stopOnce      sync.Once            // Ensures Stop() is idempotent
	doneCh        chan struct{}        // Signals watch goroutine has finished
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounceTime = d
		}
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(log zerolog.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// New creates a watcher for files. Every file must exist.
func New(files []string, opts ...Option) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher:      fsw,
		files:        make(map[string]bool),
		debounceTime: DefaultDebounce,
		log:          zerolog.Nop(),
		accumulated:  make(map[string]bool),
		fireCh:       make(chan struct{}, 1),
		doneCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to stat %s: %w", f, err)
		}
		if info.IsDir() {
			fsw.Close()
			return nil, fmt.Errorf("%s is a directory", f)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Start begins watching, calling callback with the changed files once the
// debounce period passes without further events. Callbacks never overlap.
func (w *Watcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return fmt.Errorf("callback cannot be nil")
	}

	w.callback = callback
	w.ctx, w.cancel = context.WithCancel(ctx)

	go w.watch()
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			// Never started, close doneCh manually
			close(w.doneCh)
		}
		err = w.watcher.Close()
	})
	return err
}

// Done is closed once the event loop has exited.
func (w *Watcher) Done() <-chan struct{} { return w.doneCh }

// Pause stops firing callbacks but continues accumulating events.
func (w *Watcher) Pause() {
	w.pausedMu.Lock()
	defer w.pausedMu.Unlock()
	w.paused = true
}

// Resume resumes firing callbacks. Events accumulated during the pause are
// delivered right away by the event loop.
func (w *Watcher) Resume() {
	w.pausedMu.Lock()
	wasPaused := w.paused
	w.paused = false
	w.pausedMu.Unlock()

	if wasPaused {
		w.signal()
	}
}

// signal asks the event loop to fire. Non-blocking: one pending signal is enough.
func (w *Watcher) signal() {
	select {
	case w.fireCh <- struct{}{}:
	default:
	}
}

// watch is the main event loop.
func (w *Watcher) watch() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.ctx.Done():
			w.stopDebounceTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.shouldProcessEvent(event) {
				continue
			}
			w.log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("input changed")

			w.accumulatedMu.Lock()
			w.accumulated[filepath.Clean(event.Name)] = true
			w.accumulatedMu.Unlock()

			w.resetDebounceTimer()

		case <-w.fireCh:
			w.pausedMu.RLock()
			paused := w.paused
			w.pausedMu.RUnlock()
			if !paused {
				w.fire()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("file watcher error")
		}
	}
}

// fire drains the accumulated set into one callback. Only the event loop
// calls it.
func (w *Watcher) fire() {
	w.accumulatedMu.Lock()
	if len(w.accumulated) == 0 {
		w.accumulatedMu.Unlock()
		return
	}
	files := make([]string, 0, len(w.accumulated))
	for file := range w.accumulated {
		files = append(files, file)
	}
	w.accumulated = make(map[string]bool)
	w.accumulatedMu.Unlock()

	sort.Strings(files)
	w.callback(files)
}

// resetDebounceTimer restarts the quiet period.
func (w *Watcher) resetDebounceTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceTime, w.signal)
}

func (w *Watcher) stopDebounceTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
}

// shouldProcessEvent keeps write, create and rename events on watched files.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return w.files[filepath.Clean(event.Name)]
}
