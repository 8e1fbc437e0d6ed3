package habits

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/diary"
	apperrors "github.com/julianstephens/diarykeep/internal/errors"
	"github.com/julianstephens/diarykeep/internal/models"
	"github.com/julianstephens/diarykeep/internal/storage/sqlite"
)

var ref = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) (*Store, *diary.Store) {
	t.Helper()
	p := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := p.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { p.Close() })

	d, err := diary.Open(context.Background(), diary.Options{Provider: p})
	if err != nil {
		t.Fatalf("diary.Open() failed: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	s := New(p, d)
	s.now = func() time.Time { return ref }
	return s, d
}

func TestAdd(t *testing.T) {
	s, _ := setupTestStore(t)

	h, err := s.Add("  Read  ", "")
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if h.Name != "Read" {
		t.Errorf("expected trimmed name, got %q", h.Name)
	}
	if h.Icon != "🎯" {
		t.Errorf("expected default icon, got %q", h.Icon)
	}
	if h.Color != models.DefaultHabitColors[0] {
		t.Errorf("expected first color, got %q", h.Color)
	}
	if h.CreatedAt != ref.UnixMilli() {
		t.Errorf("expected CreatedAt %d, got %d", ref.UnixMilli(), h.CreatedAt)
	}
	if len(h.ID) <= len("habit_") || h.ID[:6] != "habit_" {
		t.Errorf("unexpected id %q", h.ID)
	}

	h2, err := s.Add("Run", "🏃")
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if h2.Color != models.DefaultHabitColors[1] || h2.Order != 1 {
		t.Errorf("expected second color and order 1, got %q %d", h2.Color, h2.Order)
	}

	list := s.List()
	if len(list) != 2 || list[0].ID != h.ID || list[1].ID != h2.ID {
		t.Errorf("unexpected list %+v", list)
	}

	if _, err := s.Add("   ", ""); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestColorsCycle(t *testing.T) {
	s, _ := setupTestStore(t)
	var last models.Habit
	for i := 0; i <= len(models.DefaultHabitColors); i++ {
		h, err := s.Add("h", "")
		if err != nil {
			t.Fatalf("Add() failed: %v", err)
		}
		last = h
	}
	if last.Color != models.DefaultHabitColors[0] {
		t.Errorf("expected colors to wrap around, got %q", last.Color)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	s, _ := setupTestStore(t)
	h, _ := s.Add("Read", "")

	name := "Read more"
	updated, err := s.Update(h.ID, models.HabitPatch{Name: &name})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Name != name || updated.Icon != h.Icon {
		t.Errorf("unexpected update result %+v", updated)
	}
	if got, _ := s.Get(h.ID); got.Name != name {
		t.Errorf("update not persisted, got %q", got.Name)
	}

	if _, err := s.Update("habit_missing", models.HabitPatch{Name: &name}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := s.Delete(h.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("expected no habits, got %d", s.Count())
	}
	if err := s.Delete(h.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestToggle(t *testing.T) {
	s, d := setupTestStore(t)
	ctx := context.Background()
	h, _ := s.Add("Read", "")

	done, err := s.Toggle(ctx, h.ID, "2024-03-15")
	if err != nil {
		t.Fatalf("Toggle() failed: %v", err)
	}
	if !done || !s.Done(h.ID, "2024-03-15") {
		t.Error("expected habit to be done")
	}
	if !d.GetDay("2024-03-15").Habits[h.ID] {
		t.Error("expected the day record to carry the habit")
	}

	done, err = s.Toggle(ctx, h.ID, "2024-03-15")
	if err != nil {
		t.Fatalf("Toggle() failed: %v", err)
	}
	if done || s.Done(h.ID, "2024-03-15") {
		t.Error("expected habit to be undone")
	}

	if _, err := s.Toggle(ctx, "habit_missing", "2024-03-15"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStatsAndProgress(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	a, _ := s.Add("Read", "")
	if _, err := s.Add("Run", ""); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	for _, key := range []string{"2024-03-15", "2024-03-14", "2024-03-13", "2024-03-01"} {
		if _, err := s.Toggle(ctx, a.ID, key); err != nil {
			t.Fatalf("Toggle() failed: %v", err)
		}
	}

	st := s.Stats(a.ID, ref)
	if st.TotalCompleted != 4 || st.Last7Days != 3 || st.Last30Days != 4 || st.Streak != 3 {
		t.Errorf("unexpected stats %+v", st)
	}

	p := s.TodayProgress(ref)
	if p.Completed != 1 || p.Total != 2 || p.Percentage != 50 {
		t.Errorf("unexpected progress %+v", p)
	}
}

func TestMalformedList(t *testing.T) {
	p := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := p.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	defer p.Close()
	if err := p.PutPartition(constants.PartitionHabits, "{not json"); err != nil {
		t.Fatalf("PutPartition() failed: %v", err)
	}
	d, err := diary.Open(context.Background(), diary.Options{Provider: p})
	if err != nil {
		t.Fatalf("diary.Open() failed: %v", err)
	}
	defer d.Close()

	if list := New(p, d).List(); len(list) != 0 {
		t.Errorf("expected empty list, got %+v", list)
	}
}
