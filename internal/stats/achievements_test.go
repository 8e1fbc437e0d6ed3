package stats

import (
	"testing"

	"github.com/julianstephens/diarykeep/internal/models"
)

func find(list []Achievement, id string) Achievement {
	for _, a := range list {
		if a.ID == id {
			return a
		}
	}
	return Achievement{}
}

func TestAchievementsEmpty(t *testing.T) {
	list := Achievements(models.Snapshot{}, 0, ref)
	if len(list) != 23 {
		t.Fatalf("len(Achievements()) = %d, want 23", len(list))
	}
	for _, a := range list {
		if a.Unlocked || a.Progress != 0 {
			t.Errorf("%s unlocked on empty diary", a.ID)
		}
	}

	s := SummarizeAchievements(list)
	if s.Unlocked != 0 || s.Total != 23 || s.Next == nil || s.Next.ID != "first_entry" {
		t.Errorf("SummarizeAchievements() = %+v", s)
	}
}

func TestAchievementsProgress(t *testing.T) {
	snap := daysAgo(0, 1, 2, 3)
	rec := snap["2024-03-15"]
	rec.Photos = []models.PhotoRef{{Filename: "a"}, {Filename: "b"}}
	rec.Habits = map[string]bool{"h1": true, "h2": true, "h3": false}
	snap["2024-03-15"] = rec

	list := Achievements(snap, 1, ref)

	tests := []struct {
		id       string
		progress int
		unlocked bool
	}{
		{"first_entry", 1, true},
		{"first_photo", 1, true},
		{"first_habit", 1, true},
		{"streak_3", 3, true},
		{"streak_7", 4, false},
		{"entries_10", 4, false},
		{"photos_10", 2, false},
		{"habits_10", 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			a := find(list, tt.id)
			if a.Progress != tt.progress || a.Unlocked != tt.unlocked {
				t.Errorf("%s = progress %d unlocked %v, want %d %v", tt.id, a.Progress, a.Unlocked, tt.progress, tt.unlocked)
			}
		})
	}

	s := SummarizeAchievements(list)
	if s.Unlocked != 4 || s.Next == nil || s.Next.ID != "streak_7" {
		t.Errorf("SummarizeAchievements() = %+v", s)
	}
	if n := len(ByCategory(list)[CategoryStreak]); n != 6 {
		t.Errorf("streak achievements = %d, want 6", n)
	}
}
