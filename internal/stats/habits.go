package stats

import (
	"math"
	"time"

	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/datekey"
	"github.com/julianstephens/diarykeep/internal/models"
)

type HabitCounts struct {
	TotalCompleted int `json:"totalCompleted"`
	Last7Days      int `json:"last7Days"`
	Last30Days     int `json:"last30Days"`
	Streak         int `json:"streak"`
}

type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// HabitStreak counts consecutive days the habit was done, ending today. An
// unfinished today does not break the streak. Looks back at most a year.
func HabitStreak(snap models.Snapshot, habitID string, ref time.Time) int {
	streak := 0
	for i := 0; i < constants.HabitStreakLookbackMax; i++ {
		key := datekey.Format(datekey.AddDays(ref, -i))
		if snap[key].Habits[habitID] {
			streak++
		} else if i > 0 {
			break
		}
	}
	return streak
}

// HabitStats totals completions overall and within the last 7 and 30 days.
// Days after ref are counted in the total only.
func HabitStats(snap models.Snapshot, habitID string, ref time.Time) HabitCounts {
	var hs HabitCounts
	today := datekey.Format(ref)
	for key, rec := range snap {
		if !rec.Habits[habitID] {
			continue
		}
		hs.TotalCompleted++
		ago := daysBetween(key, today)
		if ago < 0 || !datekey.Valid(key) {
			continue
		}
		if ago < 7 {
			hs.Last7Days++
		}
		if ago < 30 {
			hs.Last30Days++
		}
	}
	hs.Streak = HabitStreak(snap, habitID, ref)
	return hs
}

// TodayProgress reports how many of habits are done on ref's day.
func TodayProgress(snap models.Snapshot, habits []models.Habit, ref time.Time) Progress {
	return DayProgress(snap[datekey.Format(ref)], habits)
}

// DayProgress reports how many of habits are done in rec. Ids of deleted
// habits are ignored.
func DayProgress(rec models.DayRecord, habits []models.Habit) Progress {
	p := Progress{Total: len(habits)}
	for _, h := range habits {
		if rec.Habits[h.ID] {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percentage = int(math.Round(float64(p.Completed) / float64(p.Total) * 100))
	}
	return p
}
