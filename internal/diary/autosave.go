package diary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/julianstephens/diarykeep/internal/logger"
)

// AutoSaver holds content that has not been persisted yet and retries it
// on every tick or lifecycle signal until the write succeeds. With a spool
// file, pending content also survives the process.
type AutoSaver struct {
	store    *Store
	interval time.Duration

	mu    sync.Mutex
	dirty map[string]string
	spool string
}

func NewAutoSaver(store *Store, interval time.Duration) *AutoSaver {
	return &AutoSaver{
		store:    store,
		interval: interval,
		dirty:    make(map[string]string),
	}
}

// UseSpool keeps pending content in the JSON file at path and adopts
// whatever an earlier process left there. Content already buffered wins over
// spooled content for the same day.
func (a *AutoSaver) UseSpool(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.spool = path
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read autosave spool: %w", err)
	}
	var spooled map[string]string
	if err := json.Unmarshal(data, &spooled); err != nil {
		return fmt.Errorf("autosave spool is malformed: %w", err)
	}
	for k, v := range spooled {
		if _, ok := a.dirty[k]; !ok {
			a.dirty[k] = v
		}
	}
	return nil
}

// saveSpool must be called with a.mu held. An empty buffer removes the file.
func (a *AutoSaver) saveSpool() {
	if a.spool == "" {
		return
	}
	if len(a.dirty) == 0 {
		if err := os.Remove(a.spool); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to remove autosave spool", "path", a.spool, "error", err)
		}
		return
	}
	data, err := json.Marshal(a.dirty)
	if err == nil {
		err = writeFileAtomic(a.spool, data)
	}
	if err != nil {
		logger.Warn("Failed to write autosave spool", "path", a.spool, "error", err)
	}
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Save writes text for key. On failure the text is kept and the error returned.
func (a *AutoSaver) Save(ctx context.Context, key, text string) error {
	a.mu.Lock()
	a.dirty[key] = text
	a.mu.Unlock()
	return a.flushKey(ctx, key)
}

// Set buffers text without writing it.
func (a *AutoSaver) Set(key, text string) {
	a.mu.Lock()
	a.dirty[key] = text
	a.saveSpool()
	a.mu.Unlock()
}

// Pending returns the number of days waiting to be written.
func (a *AutoSaver) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.dirty)
}

func (a *AutoSaver) flushKey(ctx context.Context, key string) error {
	a.mu.Lock()
	text, ok := a.dirty[key]
	a.mu.Unlock()
	if !ok {
		return nil
	}

	if err := a.store.WriteContent(ctx, key, text); err != nil {
		a.mu.Lock()
		a.saveSpool()
		a.mu.Unlock()
		return err
	}

	a.mu.Lock()
	// A newer Set may have landed while writing.
	if cur, ok := a.dirty[key]; ok && cur == text {
		delete(a.dirty, key)
		a.saveSpool()
	}
	a.mu.Unlock()
	return nil
}

// Flush writes every buffered day and returns the first error.
func (a *AutoSaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	keys := make([]string, 0, len(a.dirty))
	for k := range a.dirty {
		keys = append(keys, k)
	}
	a.mu.Unlock()

	var first error
	for _, k := range keys {
		if err := a.flushKey(ctx, k); err != nil {
			logger.Warn("Autosave failed, will retry", "day", k, "error", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Run flushes on every tick and on every value from signals until ctx is
// done, then flushes one last time.
func (a *AutoSaver) Run(ctx context.Context, signals <-chan struct{}) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	if a.Pending() > 0 {
		_ = a.Flush(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			_ = a.Flush(context.Background())
			return
		case <-ticker.C:
			_ = a.Flush(ctx)
		case _, ok := <-signals:
			if !ok {
				signals = nil
				continue
			}
			_ = a.Flush(ctx)
		}
	}
}
