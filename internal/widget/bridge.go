package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/logger"
)

// Bridge delivers a projection to the widgets in a single call.
type Bridge interface {
	SyncAll(ctx context.Context, p Projection) error
}

// Refresher asks the widget host to redraw.
type Refresher interface {
	RefreshWidgets(ctx context.Context) error
}

// Payload is the file format read by the host.
type Payload struct {
	Projection
	ThemeColor  string `json:"themeColor"`
	LastUpdated string `json:"lastUpdated"`
}

// FileBridge writes the payload to a JSON file the host reads, then pings
// the host to refresh.
type FileBridge struct {
	path      string
	theme     func() string
	refresher Refresher
	now       func() time.Time
}

// NewFileBridge writes to path. theme supplies the current theme color and
// may be nil; refresher may be nil.
func NewFileBridge(path string, theme func() string, refresher Refresher) *FileBridge {
	return &FileBridge{path: path, theme: theme, refresher: refresher, now: time.Now}
}

func (b *FileBridge) Path() string {
	return b.path
}

func (b *FileBridge) SyncAll(ctx context.Context, p Projection) error {
	payload := Payload{
		Projection:  p,
		ThemeColor:  constants.DefaultWidgetColor,
		LastUpdated: b.now().UTC().Format(time.RFC3339Nano),
	}
	if b.theme != nil {
		if c := b.theme(); c != "" {
			payload.ThemeColor = c
		}
	}
	if payload.CalendarDays == nil {
		payload.CalendarDays = map[string]CalendarDay{}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(b.path, data); err != nil {
		return fmt.Errorf("failed to write widget data: %w", err)
	}

	if b.refresher != nil {
		if err := b.refresher.RefreshWidgets(ctx); err != nil {
			logger.Debug("Widget refresh ping failed", "error", err)
		}
	}
	return nil
}

// ReadPayload reads a payload written by FileBridge.
func ReadPayload(path string) (Payload, error) {
	var p Payload
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("decoding widget data: %w", err)
	}
	return p, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
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

// NoopBridge is used when no widget host is present.
type NoopBridge struct{}

func (NoopBridge) SyncAll(context.Context, Projection) error { return nil }
