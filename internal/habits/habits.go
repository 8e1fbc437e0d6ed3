// Package habits manages the habit list partition. Per-day completion lives
// in the diary records and is toggled through the diary store.
package habits

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/diary"
	apperrors "github.com/julianstephens/diarykeep/internal/errors"
	"github.com/julianstephens/diarykeep/internal/logger"
	"github.com/julianstephens/diarykeep/internal/models"
	"github.com/julianstephens/diarykeep/internal/stats"
	"github.com/julianstephens/diarykeep/internal/storage"
)

const defaultIcon = "🎯"

type Store struct {
	provider storage.Provider
	diary    *diary.Store
	now      func() time.Time

	mu sync.Mutex
}

func New(p storage.Provider, d *diary.Store) *Store {
	return &Store{provider: p, diary: d, now: time.Now}
}

// List returns the habits by Order, then creation time. A corrupt
// partition reads as no habits.
func (s *Store) List() []models.Habit {
	raw, ok, err := s.provider.GetPartition(constants.PartitionHabits)
	if err != nil {
		logger.Warn("Failed to read habits", "error", err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	var list []models.Habit
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		logger.Warn("Habit list is malformed, ignoring", "error", err)
		return nil
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Order != list[j].Order {
			return list[i].Order < list[j].Order
		}
		return list[i].CreatedAt < list[j].CreatedAt
	})
	return list
}

func (s *Store) save(list []models.Habit) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	if err := s.provider.PutPartition(constants.PartitionHabits, string(data)); err != nil {
		return fmt.Errorf("failed to save habits: %w", err)
	}
	s.diary.Bus().Publish()
	return nil
}

// Get returns the habit with id.
func (s *Store) Get(id string) (models.Habit, error) {
	for _, h := range s.List() {
		if h.ID == id {
			return h, nil
		}
	}
	return models.Habit{}, fmt.Errorf("habit %s: %w", id, apperrors.ErrNotFound)
}

// Add creates a habit. The color cycles through the defaults by list length.
func (s *Store) Add(name, icon string) (models.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Habit{}, fmt.Errorf("habit name cannot be empty")
	}
	if icon == "" {
		icon = defaultIcon
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.List()
	h := models.Habit{
		ID:        "habit_" + uuid.New().String(),
		Name:      name,
		Icon:      icon,
		Color:     models.DefaultHabitColors[len(list)%len(models.DefaultHabitColors)],
		CreatedAt: s.now().UnixMilli(),
		Order:     len(list),
	}
	if err := s.save(append(list, h)); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) Update(id string, patch models.HabitPatch) (models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.List()
	for i, h := range list {
		if h.ID != id {
			continue
		}
		updated := patch.Apply(h)
		if updated.Name == "" {
			return models.Habit{}, fmt.Errorf("habit name cannot be empty")
		}
		list[i] = updated
		if err := s.save(list); err != nil {
			return models.Habit{}, err
		}
		return updated, nil
	}
	return models.Habit{}, fmt.Errorf("habit %s: %w", id, apperrors.ErrNotFound)
}

// Delete removes the habit from the list. Completions already recorded in
// day records stay and are ignored from then on.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.List()
	kept := list[:0]
	for _, h := range list {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	if len(kept) == len(list) {
		return fmt.Errorf("habit %s: %w", id, apperrors.ErrNotFound)
	}
	return s.save(kept)
}

// Toggle flips the habit for the day and returns the new state.
func (s *Store) Toggle(ctx context.Context, id, dateKey string) (bool, error) {
	if _, err := s.Get(id); err != nil {
		return false, err
	}
	return s.diary.ToggleHabit(ctx, dateKey, id)
}

// Done reports whether the habit is marked on the day.
func (s *Store) Done(id, dateKey string) bool {
	return s.diary.GetDay(dateKey).Habits[id]
}

func (s *Store) Stats(id string, ref time.Time) stats.HabitCounts {
	return stats.HabitStats(s.diary.GetAll(), id, ref)
}

func (s *Store) TodayProgress(ref time.Time) stats.Progress {
	return stats.TodayProgress(s.diary.GetAll(), s.List(), ref)
}

// Count returns the number of habits.
func (s *Store) Count() int {
	return len(s.List())
}
