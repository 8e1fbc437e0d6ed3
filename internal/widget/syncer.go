package widget

import (
	"context"
	"time"

	"github.com/julianstephens/diarykeep/internal/bus"
	"github.com/julianstephens/diarykeep/internal/logger"
	"github.com/julianstephens/diarykeep/internal/models"
)

// Source supplies the current state to project.
type Source func() (models.Snapshot, []models.Habit)

// Syncer re-projects and syncs after every change signal. Bursts of signals
// within the debounce window produce one sync.
type Syncer struct {
	bus      *bus.Bus
	source   Source
	bridge   Bridge
	debounce time.Duration
	now      func() time.Time
}

func NewSyncer(b *bus.Bus, source Source, bridge Bridge, debounce time.Duration) *Syncer {
	return &Syncer{bus: b, source: source, bridge: bridge, debounce: debounce, now: time.Now}
}

// Sync projects the current state and hands it to the bridge.
func (s *Syncer) Sync(ctx context.Context) error {
	snap, habits := s.source()
	return s.bridge.SyncAll(ctx, Project(snap, habits, s.now()))
}

// Run syncs once, then after every signal until ctx ends or the bus closes.
func (s *Syncer) Run(ctx context.Context) {
	signals, unsubscribe := s.bus.Subscribe()
	defer unsubscribe()

	s.syncLogged(ctx)

	timer := time.NewTimer(s.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-signals:
			if !ok {
				return
			}
			timer.Reset(s.debounce)
		case <-timer.C:
			s.syncLogged(ctx)
		}
	}
}

func (s *Syncer) syncLogged(ctx context.Context) {
	if err := s.Sync(ctx); err != nil {
		logger.Warn("Widget sync failed", "error", err)
	}
}
