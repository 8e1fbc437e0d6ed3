package stats

import (
	"time"

	"github.com/julianstephens/diarykeep/internal/models"
)

type Category string

const (
	CategoryStarter Category = "starter"
	CategoryStreak  Category = "streak"
	CategoryEntries Category = "entries"
	CategoryPhotos  Category = "photos"
	CategoryHabits  Category = "habits"
)

type Achievement struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Category    Category `json:"category"`
	Requirement int      `json:"requirement"`
	Progress    int      `json:"progress"`
	Unlocked    bool     `json:"unlocked"`
}

var achievementTable = []Achievement{
	{ID: "first_entry", Name: "First Steps", Description: "Write your first diary entry", Icon: "✏️", Category: CategoryStarter, Requirement: 1},
	{ID: "first_photo", Name: "Snapshot", Description: "Add your first photo to an entry", Icon: "📸", Category: CategoryStarter, Requirement: 1},
	{ID: "first_habit", Name: "Habit Builder", Description: "Create your first habit", Icon: "🎯", Category: CategoryStarter, Requirement: 1},

	{ID: "streak_3", Name: "Getting Started", Description: "Write for 3 days in a row", Icon: "🔥", Category: CategoryStreak, Requirement: 3},
	{ID: "streak_7", Name: "Week Warrior", Description: "Write for 7 days in a row", Icon: "⚡", Category: CategoryStreak, Requirement: 7},
	{ID: "streak_14", Name: "Two Week Champion", Description: "Write for 14 days in a row", Icon: "💪", Category: CategoryStreak, Requirement: 14},
	{ID: "streak_30", Name: "Monthly Master", Description: "Write for 30 days in a row", Icon: "🏆", Category: CategoryStreak, Requirement: 30},
	{ID: "streak_100", Name: "Century Streak", Description: "Write for 100 days in a row", Icon: "👑", Category: CategoryStreak, Requirement: 100},
	{ID: "streak_365", Name: "Year of Writing", Description: "Write for 365 days in a row", Icon: "🌟", Category: CategoryStreak, Requirement: 365},

	{ID: "entries_10", Name: "Diary Enthusiast", Description: "Write 10 diary entries", Icon: "📓", Category: CategoryEntries, Requirement: 10},
	{ID: "entries_50", Name: "Dedicated Writer", Description: "Write 50 diary entries", Icon: "📚", Category: CategoryEntries, Requirement: 50},
	{ID: "entries_100", Name: "Century Club", Description: "Write 100 diary entries", Icon: "💯", Category: CategoryEntries, Requirement: 100},
	{ID: "entries_365", Name: "Year in Review", Description: "Write 365 diary entries", Icon: "📅", Category: CategoryEntries, Requirement: 365},
	{ID: "entries_500", Name: "Prolific Journaler", Description: "Write 500 diary entries", Icon: "🎖️", Category: CategoryEntries, Requirement: 500},
	{ID: "entries_1000", Name: "Legendary Writer", Description: "Write 1000 diary entries", Icon: "🏅", Category: CategoryEntries, Requirement: 1000},

	{ID: "photos_10", Name: "Memory Keeper", Description: "Add 10 photos to your diary", Icon: "🖼️", Category: CategoryPhotos, Requirement: 10},
	{ID: "photos_50", Name: "Photo Album", Description: "Add 50 photos to your diary", Icon: "📷", Category: CategoryPhotos, Requirement: 50},
	{ID: "photos_100", Name: "Visual Storyteller", Description: "Add 100 photos to your diary", Icon: "🎞️", Category: CategoryPhotos, Requirement: 100},
	{ID: "photos_500", Name: "Gallery Master", Description: "Add 500 photos to your diary", Icon: "🎨", Category: CategoryPhotos, Requirement: 500},

	{ID: "habits_10", Name: "Habit Starter", Description: "Complete 10 habit check-ins", Icon: "✅", Category: CategoryHabits, Requirement: 10},
	{ID: "habits_50", Name: "Consistency King", Description: "Complete 50 habit check-ins", Icon: "🔄", Category: CategoryHabits, Requirement: 50},
	{ID: "habits_100", Name: "Habit Hero", Description: "Complete 100 habit check-ins", Icon: "⭐", Category: CategoryHabits, Requirement: 100},
	{ID: "habits_500", Name: "Discipline Master", Description: "Complete 500 habit check-ins", Icon: "💎", Category: CategoryHabits, Requirement: 500},
}

type AchievementSummary struct {
	Unlocked int          `json:"unlocked"`
	Total    int          `json:"total"`
	Next     *Achievement `json:"next,omitempty"`
}

// Achievements evaluates the fixed achievement table. habitCount is the
// number of habits that currently exist.
func Achievements(snap models.Snapshot, habitCount int, ref time.Time) []Achievement {
	var entries, photos, checkIns int
	for _, rec := range snap {
		if IsCountingDay(rec) {
			entries++
		}
		photos += len(rec.Photos)
		for _, done := range rec.Habits {
			if done {
				checkIns++
			}
		}
	}
	streak := CurrentStreak(snap, ref)

	out := make([]Achievement, len(achievementTable))
	for i, a := range achievementTable {
		var metric int
		switch a.Category {
		case CategoryStarter:
			switch a.ID {
			case "first_entry":
				metric = entries
			case "first_photo":
				metric = photos
			case "first_habit":
				metric = habitCount
			}
		case CategoryStreak:
			metric = streak
		case CategoryEntries:
			metric = entries
		case CategoryPhotos:
			metric = photos
		case CategoryHabits:
			metric = checkIns
		}
		a.Progress = min(metric, a.Requirement)
		a.Unlocked = metric >= a.Requirement
		out[i] = a
	}
	return out
}

// SummarizeAchievements counts unlocked achievements and picks the first locked one.
func SummarizeAchievements(list []Achievement) AchievementSummary {
	s := AchievementSummary{Total: len(list)}
	for i := range list {
		if list[i].Unlocked {
			s.Unlocked++
		} else if s.Next == nil {
			next := list[i]
			s.Next = &next
		}
	}
	return s
}

// ByCategory groups achievements by category, keeping table order.
func ByCategory(list []Achievement) map[Category][]Achievement {
	out := make(map[Category][]Achievement)
	for _, a := range list {
		out[a.Category] = append(out[a.Category], a)
	}
	return out
}
