package prefs

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/diarykeep/internal/bus"
	"github.com/julianstephens/diarykeep/internal/constants"
	apperrors "github.com/julianstephens/diarykeep/internal/errors"
	"github.com/julianstephens/diarykeep/internal/models"
	"github.com/julianstephens/diarykeep/internal/storage/sqlite"
)

func setupTestStore(t *testing.T) (*Store, *sqlite.Store) {
	t.Helper()
	p := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := p.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return New(p, bus.New()), p
}

func TestSettings(t *testing.T) {
	s, p := setupTestStore(t)

	if got := s.Settings(); got != models.DefaultSettings() {
		t.Errorf("expected defaults, got %+v", got)
	}

	st := models.DefaultSettings()
	st.ThemeColor = "blue"
	st.CustomFontURL = "https://example.com/font.woff"
	if err := s.SetSettings(st); err != nil {
		t.Fatalf("SetSettings() failed: %v", err)
	}
	got := s.Settings()
	if got.ThemeColor != "blue" {
		t.Errorf("expected blue, got %q", got.ThemeColor)
	}
	if got.CustomFontURL != "" {
		t.Errorf("expected custom font to be cleared, got %q", got.CustomFontURL)
	}

	st.FontSize = "huge"
	if err := s.SetSettings(st); err == nil {
		t.Error("expected validation error")
	}

	if err := p.PutPartition(constants.PartitionSettings, "{broken"); err != nil {
		t.Fatalf("PutPartition() failed: %v", err)
	}
	if got := s.Settings(); got != models.DefaultSettings() {
		t.Errorf("expected defaults for corrupt record, got %+v", got)
	}
}

func TestSettingsPublish(t *testing.T) {
	p := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := p.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	defer p.Close()
	b := bus.New()
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	if err := New(p, b).SetSettings(models.DefaultSettings()); err != nil {
		t.Fatalf("SetSettings() failed: %v", err)
	}
	select {
	case <-ch:
	default:
		t.Error("expected a change signal")
	}
}

func TestNotifications(t *testing.T) {
	s, _ := setupTestStore(t)

	n := s.Notifications()
	if n.Enabled || n.Time != "20:00" || n.Message != constants.DefaultNotificationMessage {
		t.Errorf("unexpected defaults %+v", n)
	}

	n.Enabled = true
	n.Time = "07:30"
	if err := s.SetNotifications(n); err != nil {
		t.Fatalf("SetNotifications() failed: %v", err)
	}
	if got := s.Notifications(); got != n {
		t.Errorf("expected %+v, got %+v", n, got)
	}

	n.Time = "7pm"
	if err := s.SetNotifications(n); err == nil {
		t.Error("expected error for bad time")
	}
}

func TestBookmarks(t *testing.T) {
	s, _ := setupTestStore(t)

	for _, key := range []string{"2024-01-02", "2024-03-01", "2023-12-31"} {
		on, err := s.ToggleBookmark(key)
		if err != nil {
			t.Fatalf("ToggleBookmark(%s) failed: %v", key, err)
		}
		if !on {
			t.Errorf("expected %s to be bookmarked", key)
		}
	}

	want := []string{"2024-03-01", "2024-01-02", "2023-12-31"}
	if got := s.Bookmarks(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, got)
	}

	on, err := s.ToggleBookmark("2024-01-02")
	if err != nil {
		t.Fatalf("ToggleBookmark() failed: %v", err)
	}
	if on || s.IsBookmarked("2024-01-02") {
		t.Error("expected bookmark to be removed")
	}

	if _, err := s.ToggleBookmark("01-02-2024"); err == nil {
		t.Error("expected error for invalid key")
	}
}

func TestLock(t *testing.T) {
	s, p := setupTestStore(t)
	l := s.Lock()

	if l.IsLocked() {
		t.Error("expected unlocked when no lock is set")
	}

	tests := []struct {
		name string
		pin  string
	}{
		{"too short", "123"},
		{"too long", "1234567"},
		{"letters", "12ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := l.SetPIN(tt.pin); !errors.Is(err, apperrors.ErrInvalidPIN) {
				t.Errorf("expected ErrInvalidPIN, got %v", err)
			}
		})
	}

	if err := l.SetPIN("1234"); err != nil {
		t.Fatalf("SetPIN() failed: %v", err)
	}
	raw, _, _ := p.GetPartition(constants.PartitionLock)
	if strings.Contains(raw, "1234") {
		t.Errorf("PIN stored in clear text: %s", raw)
	}

	fresh := s.Lock()
	if !fresh.IsLocked() {
		t.Error("expected a new session to start locked")
	}
	if fresh.Unlock("0000") {
		t.Error("wrong PIN unlocked")
	}
	if !fresh.Unlock("1234") || fresh.IsLocked() {
		t.Error("expected correct PIN to unlock")
	}

	if err := fresh.Remove(); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if s.Lock().IsLocked() || s.Lock().Settings().PINHash != "" {
		t.Error("expected lock to be removed")
	}
}

func TestLegacyPassword(t *testing.T) {
	s, p := setupTestStore(t)
	if err := p.PutPartition(constants.PartitionLock, `{"isEnabled":true,"password":"4321","useBiometric":false}`); err != nil {
		t.Fatalf("PutPartition() failed: %v", err)
	}

	l := s.Lock()
	if !l.Unlock("4321") {
		t.Fatal("expected legacy password to unlock")
	}
	raw, _, _ := p.GetPartition(constants.PartitionLock)
	if strings.Contains(raw, "4321") || !strings.Contains(raw, "pinHash") {
		t.Errorf("expected legacy password to be replaced by a hash: %s", raw)
	}
}

func TestUnlockWithBiometric(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	l := s.Lock()
	if err := l.SetPIN("1234"); err != nil {
		t.Fatalf("SetPIN() failed: %v", err)
	}

	allow := func(context.Context) (bool, error) { return true, nil }
	deny := func(context.Context) (bool, error) { return false, nil }
	fail := func(context.Context) (bool, error) { return false, errors.New("no sensor") }

	if l.UnlockWithBiometric(ctx, allow) {
		t.Error("expected refusal while biometrics are disabled")
	}
	if err := l.SetBiometric(true); err != nil {
		t.Fatalf("SetBiometric() failed: %v", err)
	}
	if l.UnlockWithBiometric(ctx, deny) || l.UnlockWithBiometric(ctx, fail) {
		t.Error("expected refusal")
	}
	if !l.IsLocked() {
		t.Error("expected still locked")
	}
	if !l.UnlockWithBiometric(ctx, allow) || l.IsLocked() {
		t.Error("expected biometric unlock")
	}
}
