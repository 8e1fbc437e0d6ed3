// Package widget projects the diary into the single payload read by the home
// screen widgets and hands it to the native host.
package widget

import (
	"math"
	"strings"
	"time"

	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/datekey"
	"github.com/julianstephens/diarykeep/internal/models"
	"github.com/julianstephens/diarykeep/internal/stats"
)

type CalendarDay struct {
	HabitProgress int  `json:"habitProgress"` // 0-100
	HasEntry      bool `json:"hasEntry"`
}

// Projection holds every widget field. It is always written whole.
type Projection struct {
	StatsEntries    int                    `json:"statsEntries"`
	StatsStreak     int                    `json:"statsStreak"`
	StatsWords      int                    `json:"statsWords"`
	HabitsCompleted int                    `json:"habitsCompleted"`
	HabitsTotal     int                    `json:"habitsTotal"`
	HabitsDate      string                 `json:"habitsDate"`
	TodaySnippet    string                 `json:"todaySnippet"`
	TodayDate       string                 `json:"todayDate"`
	CalendarDays    map[string]CalendarDay `json:"calendarDays"`
}

// Project computes the projection for ref's day in one pass over snap.
func Project(snap models.Snapshot, habits []models.Habit, ref time.Time) Projection {
	today := datekey.Format(ref)
	p := Projection{
		HabitsTotal:  len(habits),
		HabitsDate:   today,
		TodayDate:    today,
		CalendarDays: make(map[string]CalendarDay, len(snap)),
	}

	for key, rec := range snap {
		hasEntry := stats.IsCountingDay(rec)
		if hasEntry {
			p.StatsEntries++
			p.StatsWords += stats.CountWords(rec.Content)
		}
		p.CalendarDays[key] = CalendarDay{
			HabitProgress: habitProgress(rec, habits),
			HasEntry:      hasEntry,
		}
	}

	p.StatsStreak = stats.CurrentStreak(snap, ref)
	p.HabitsCompleted = stats.DayProgress(snap[today], habits).Completed
	p.TodaySnippet = snippet(snap[today].Content)
	return p
}

func habitProgress(rec models.DayRecord, habits []models.Habit) int {
	if len(habits) == 0 || len(rec.Habits) == 0 {
		return 0
	}
	done := stats.DayProgress(rec, habits).Completed
	return int(math.Round(float64(done) / float64(len(habits)) * 100))
}

func snippet(content string) string {
	content = strings.TrimSpace(content)
	r := []rune(content)
	if len(r) <= constants.WidgetSnippetLen {
		return content
	}
	return string(r[:constants.WidgetSnippetLen]) + "…"
}
