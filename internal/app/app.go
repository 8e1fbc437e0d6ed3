// Package app wires storage, the diary and its side stores into one
// container shared by every command.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/julianstephens/diarykeep/internal/archive"
	"github.com/julianstephens/diarykeep/internal/bus"
	"github.com/julianstephens/diarykeep/internal/config"
	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/datekey"
	"github.com/julianstephens/diarykeep/internal/diary"
	"github.com/julianstephens/diarykeep/internal/habits"
	"github.com/julianstephens/diarykeep/internal/keyring"
	"github.com/julianstephens/diarykeep/internal/logger"
	"github.com/julianstephens/diarykeep/internal/mirror"
	"github.com/julianstephens/diarykeep/internal/models"
	"github.com/julianstephens/diarykeep/internal/native"
	"github.com/julianstephens/diarykeep/internal/prefs"
	"github.com/julianstephens/diarykeep/internal/storage"
	"github.com/julianstephens/diarykeep/internal/storage/postgres"
	"github.com/julianstephens/diarykeep/internal/storage/sqlite"
	"github.com/julianstephens/diarykeep/internal/widget"
)

// NewProvider picks the backend for the configured storage string: a
// postgres:// URL selects PostgreSQL, anything else is a SQLite file path.
// The provider is returned unopened.
func NewProvider(storageStr string) (storage.Provider, error) {
	if postgres.IsConnString(storageStr) {
		if _, err := postgres.ValidateConnString(storageStr); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w: store the password with 'diarykeep keyring set' or PGPASSWORD", err)
			}
			return nil, err
		}
		return postgres.New(keyring.WithPassword(storageStr)), nil
	}
	return sqlite.NewStore(config.ExpandHome(storageStr)), nil
}

// App holds everything a command may need. Fields are ready after Open.
type App struct {
	Config    config.Config
	ConfigDir string

	Provider storage.Provider
	Bus      *bus.Bus
	Diary    *diary.Store
	Habits   *habits.Store
	Prefs    *prefs.Store
	Lock     *prefs.Lock
	Archives *archive.Manager
	State    *State

	// Host is nil when no native host is running.
	Host *native.Host

	now func() time.Time

	// changes fires once anything is published after Open.
	changes     <-chan struct{}
	stopChanges func()
}

// Open loads provider and builds the stores on top of it. The provider must
// already be initialised.
func Open(ctx context.Context, cfg config.Config, configDir string, provider storage.Provider) (*App, error) {
	if err := provider.Load(); err != nil {
		return nil, err
	}

	a := &App{
		Config:    cfg,
		ConfigDir: configDir,
		Provider:  provider,
		Bus:       bus.New(),
		State:     &State{},
		now:       time.Now,
	}
	a.detectHost()

	opts := diary.Options{
		Provider: provider,
		Bus:      a.Bus,
		Now:      a.Now,
	}
	if a.Host != nil {
		opts.Mirror = mirror.New(a.Host.DataDir)
	}
	d, err := diary.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open diary: %w", err)
	}

	a.Diary = d
	a.Habits = habits.New(provider, d)
	a.Prefs = prefs.New(provider, a.Bus)
	a.Lock = a.Prefs.Lock()
	a.Archives = archive.NewManager(configDir, d, provider)
	a.changes, a.stopChanges = a.Bus.Subscribe()
	return a, nil
}

func (a *App) detectHost() {
	dir, err := native.HostDir(a.Config.Native.HostDir)
	if err != nil {
		logger.Debug("No native host directory", "error", err)
		return
	}
	h, err := native.Detect(dir)
	if err != nil {
		logger.Debug("Native host not detected", "dir", dir, "error", err)
		return
	}
	logger.Info("Native host detected", "pid", h.PID, "data_dir", h.DataDir)
	a.Host = h
}

// Now returns the current time in the configured timezone.
func (a *App) Now() time.Time {
	return a.now().In(a.Config.Location())
}

// Today returns today's date key.
func (a *App) Today() string {
	return datekey.Format(a.Now())
}

// WidgetBridge returns the file bridge when a host is running, otherwise a
// bridge that does nothing.
func (a *App) WidgetBridge() widget.Bridge {
	if a.Host == nil {
		return widget.NoopBridge{}
	}
	return widget.NewFileBridge(a.Host.WidgetDataPath(), func() string {
		return a.Prefs.Settings().ThemeHex()
	}, a.Host)
}

// WidgetSource reads the state the widget projection is built from.
func (a *App) WidgetSource() widget.Source {
	return func() (models.Snapshot, []models.Habit) {
		return a.Diary.GetAll(), a.Habits.List()
	}
}

// Syncer returns a widget syncer driven by the app bus.
func (a *App) Syncer() *widget.Syncer {
	return widget.NewSyncer(a.Bus, a.WidgetSource(), a.WidgetBridge(), a.Config.Widget.Debounce)
}

// AutoSaver returns a saver whose pending content is spooled under the
// config dir, so a failed write is retried by the next watch process.
func (a *App) AutoSaver() *diary.AutoSaver {
	saver := diary.NewAutoSaver(a.Diary, a.Config.Autosave.Interval)
	if err := saver.UseSpool(filepath.Join(a.ConfigDir, constants.AutosaveSpoolFile)); err != nil {
		logger.Warn("Autosave spool unavailable", "error", err)
	}
	return saver
}

// Watch runs the long-lived loop: lifecycle hooks, widget sync and autosave
// retries, until ctx ends.
func (a *App) Watch(ctx context.Context, saver *diary.AutoSaver) error {
	lc := bus.NewLifecycle(a.Bus, a.Provider.WatchPath())
	if err := lc.Start(ctx); err != nil {
		return err
	}
	defer lc.Stop()

	syncer := a.Syncer()
	signals, unsubscribe := a.Bus.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		syncer.Run(ctx)
	}()

	if saver != nil {
		saver.Run(ctx, signals)
	} else {
		<-ctx.Done()
	}
	<-done
	return nil
}

// SyncIfChanged pushes a fresh projection to the host's widgets when
// something was published since Open or the previous call.
func (a *App) SyncIfChanged(ctx context.Context) error {
	if a.changes == nil {
		return nil
	}
	select {
	case _, ok := <-a.changes:
		if !ok {
			return nil
		}
	default:
		return nil
	}
	if a.Host == nil {
		return nil
	}
	return a.Syncer().Sync(ctx)
}

// Close syncs the widgets if a command changed anything, flushes pending
// mirror writes and closes storage.
func (a *App) Close() error {
	if err := a.SyncIfChanged(context.Background()); err != nil {
		logger.Warn("Widget sync failed", "error", err)
	}
	if a.stopChanges != nil {
		a.stopChanges()
	}

	var errs []error
	if a.Diary != nil {
		errs = append(errs, a.Diary.Close())
	}
	if a.Bus != nil {
		a.Bus.Close()
	}
	errs = append(errs, a.Provider.Close())
	return errors.Join(errs...)
}
