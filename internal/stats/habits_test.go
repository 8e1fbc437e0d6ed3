package stats

import (
	"testing"

	"github.com/julianstephens/diarykeep/internal/datekey"
	"github.com/julianstephens/diarykeep/internal/models"
)

func habitDays(id string, offsets ...int) models.Snapshot {
	snap := models.Snapshot{}
	for _, n := range offsets {
		snap[datekey.Format(datekey.AddDays(ref, -n))] = models.DayRecord{Habits: map[string]bool{id: true}}
	}
	return snap
}

func TestHabitStreak(t *testing.T) {
	tests := []struct {
		name string
		snap models.Snapshot
		want int
	}{
		{"none", models.Snapshot{}, 0},
		{"today and yesterday", habitDays("h", 0, 1), 2},
		{"today not done yet", habitDays("h", 1, 2, 3), 3},
		{"gap yesterday", habitDays("h", 0, 2, 3), 1},
		{"other habit", habitDays("x", 0, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HabitStreak(tt.snap, "h", ref); got != tt.want {
				t.Errorf("HabitStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHabitStreakCap(t *testing.T) {
	offsets := make([]int, 400)
	for i := range offsets {
		offsets[i] = i
	}
	if got := HabitStreak(habitDays("h", offsets...), "h", ref); got != 365 {
		t.Errorf("HabitStreak() = %d, want 365", got)
	}
}

func TestHabitStats(t *testing.T) {
	snap := habitDays("h", 0, 3, 6, 7, 29, 30, 100)
	snap["2024-04-01"] = models.DayRecord{Habits: map[string]bool{"h": true}}

	got := HabitStats(snap, "h", ref)
	if got.TotalCompleted != 8 {
		t.Errorf("TotalCompleted = %d, want 8", got.TotalCompleted)
	}
	if got.Last7Days != 3 {
		t.Errorf("Last7Days = %d, want 3", got.Last7Days)
	}
	if got.Last30Days != 5 {
		t.Errorf("Last30Days = %d, want 5", got.Last30Days)
	}
	if got.Streak != 1 {
		t.Errorf("Streak = %d, want 1", got.Streak)
	}
}

func TestTodayProgress(t *testing.T) {
	habits := []models.Habit{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	snap := models.Snapshot{
		datekey.Format(ref): {Habits: map[string]bool{"a": true, "b": true, "deleted": true}},
	}

	got := TodayProgress(snap, habits, ref)
	if got.Completed != 2 || got.Total != 3 || got.Percentage != 67 {
		t.Errorf("TodayProgress() = %+v, want 2/3 67%%", got)
	}
	if p := TodayProgress(snap, nil, ref); p.Percentage != 0 || p.Total != 0 {
		t.Errorf("TodayProgress() with no habits = %+v", p)
	}
}
