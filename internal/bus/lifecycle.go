package bus

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/logger"
)

// Lifecycle turns process and filesystem events into change signals:
// resume and focus signals from the OS, and writes to the storage file made
// by another process.
type Lifecycle struct {
	bus       *Bus
	watchPath string
	debounce  time.Duration

	mu      sync.Mutex
	running bool
	watcher *fsnotify.Watcher
	sigs    chan os.Signal
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewLifecycle watches watchPath for foreign writes. An empty watchPath
// disables the file watch.
func NewLifecycle(b *Bus, watchPath string) *Lifecycle {
	return &Lifecycle{
		bus:       b,
		watchPath: watchPath,
		debounce:  constants.WatchDebounce,
	}
}

// Start installs the hooks and returns once they are active.
func (l *Lifecycle) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return fmt.Errorf("lifecycle already running")
	}

	var events <-chan fsnotify.Event
	var errs <-chan error
	if l.watchPath != "" {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create fsnotify watcher: %w", err)
		}
		// SQLite replaces and journals beside the file, so watch the directory.
		if err := w.Add(filepath.Dir(l.watchPath)); err != nil {
			w.Close()
			return fmt.Errorf("failed to watch %s: %w", filepath.Dir(l.watchPath), err)
		}
		l.watcher = w
		events, errs = w.Events, w.Errors
	}

	l.sigs = make(chan os.Signal, 1)
	if len(lifecycleSignals) > 0 {
		signal.Notify(l.sigs, lifecycleSignals...)
	}

	ctx, l.cancel = context.WithCancel(ctx)
	l.running = true
	l.wg.Add(1)
	go l.loop(ctx, events, errs)
	return nil
}

// Stop removes the hooks and waits for the event loop to exit.
func (l *Lifecycle) Stop() error {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return nil
	}
	l.running = false
	signal.Stop(l.sigs)
	l.cancel()
	l.mu.Unlock()

	l.wg.Wait()

	if l.watcher != nil {
		if err := l.watcher.Close(); err != nil {
			return fmt.Errorf("failed to close watcher: %w", err)
		}
		l.watcher = nil
	}
	return nil
}

func (l *Lifecycle) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	defer l.wg.Done()

	timer := time.NewTimer(l.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-l.sigs:
			l.bus.Trigger(sig.String())
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if l.relevant(ev) {
				timer.Reset(l.debounce)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("Storage watcher error", "error", err)
		case <-timer.C:
			l.bus.Trigger("storage changed")
		}
	}
}

// relevant matches the storage file and its -wal/-journal siblings.
func (l *Lifecycle) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return strings.HasPrefix(filepath.Base(ev.Name), filepath.Base(l.watchPath))
}
