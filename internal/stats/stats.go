// Package stats derives counts, streaks and achievements from a diary
// snapshot. Every function is pure: the caller passes the snapshot and the
// reference time, and nothing is cached.
package stats

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/datekey"
	"github.com/julianstephens/diarykeep/internal/models"
)

type TaskCount struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

type DailyStats struct {
	Date           string `json:"date"`
	WordCount      int    `json:"wordCount"`
	PhotoCount     int    `json:"photoCount"`
	TaskCount      int    `json:"taskCount"`
	CompletedTasks int    `json:"completedTasks"`
	HasEntry       bool   `json:"hasEntry"`
}

type WeekdayStats struct {
	Day     string `json:"day"`
	Entries int    `json:"entries"`
}

type MonthlyStats struct {
	Month   string `json:"month"` // YYYY-MM
	Entries int    `json:"entries"`
	Words   int    `json:"words"`
	Photos  int    `json:"photos"`
}

type Summary struct {
	TotalEntries         int `json:"totalEntries"`
	TotalWords           int `json:"totalWords"`
	TotalPhotos          int `json:"totalPhotos"`
	TotalTasks           int `json:"totalTasks"`
	CompletedTasks       int `json:"completedTasks"`
	CurrentStreak        int `json:"currentStreak"`
	LongestStreak        int `json:"longestStreak"`
	AverageWordsPerEntry int `json:"averageWordsPerEntry"`
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CountTasks counts lines starting with an unchecked or checked box.
func CountTasks(text string) TaskCount {
	var tc TaskCount
	if text == "" {
		return tc
	}
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, constants.TaskUnchecked+" "):
			tc.Total++
		case strings.HasPrefix(line, constants.TaskChecked+" "):
			tc.Total++
			tc.Completed++
		}
	}
	return tc
}

// IsCountingDay reports whether a day counts towards entries and streaks.
func IsCountingDay(rec models.DayRecord) bool {
	return rec.HasEntry()
}

// Summarize totals every counting day and computes both streaks.
func Summarize(snap models.Snapshot, ref time.Time) Summary {
	var s Summary
	for _, rec := range snap {
		if !IsCountingDay(rec) {
			continue
		}
		s.TotalEntries++
		s.TotalWords += CountWords(rec.Content)
		s.TotalPhotos += len(rec.Photos)
		tc := CountTasks(rec.Content)
		s.TotalTasks += tc.Total
		s.CompletedTasks += tc.Completed
	}
	s.CurrentStreak = CurrentStreak(snap, ref)
	s.LongestStreak = LongestStreak(snap)
	if s.TotalEntries > 0 {
		s.AverageWordsPerEntry = int(math.Round(float64(s.TotalWords) / float64(s.TotalEntries)))
	}
	return s
}

// Daily returns one entry per day for the 30 days ending on ref, oldest first.
func Daily(snap models.Snapshot, ref time.Time) []DailyStats {
	out := make([]DailyStats, 0, 30)
	for i := 29; i >= 0; i-- {
		key := datekey.Format(datekey.AddDays(ref, -i))
		rec := snap[key]
		tc := CountTasks(rec.Content)
		out = append(out, DailyStats{
			Date:           key,
			WordCount:      CountWords(rec.Content),
			PhotoCount:     len(rec.Photos),
			TaskCount:      tc.Total,
			CompletedTasks: tc.Completed,
			HasEntry:       IsCountingDay(rec),
		})
	}
	return out
}

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Weekdays counts counting days per day of the week, Sunday first.
func Weekdays(snap models.Snapshot) [7]WeekdayStats {
	var out [7]WeekdayStats
	for i, name := range weekdayNames {
		out[i].Day = name
	}
	for key, rec := range snap {
		if !IsCountingDay(rec) {
			continue
		}
		t, err := time.Parse(constants.DateFormat, key)
		if err != nil {
			continue
		}
		out[t.Weekday()].Entries++
	}
	return out
}

// Monthly groups days by YYYY-MM and returns the last six months that have
// any stored day, oldest first. Only counting days add to the totals.
func Monthly(snap models.Snapshot) []MonthlyStats {
	months := make(map[string]*MonthlyStats)
	for key, rec := range snap {
		if len(key) < 7 {
			continue
		}
		month := key[:7]
		m, ok := months[month]
		if !ok {
			m = &MonthlyStats{Month: month}
			months[month] = m
		}
		if IsCountingDay(rec) {
			m.Entries++
			m.Words += CountWords(rec.Content)
			m.Photos += len(rec.Photos)
		}
	}

	out := make([]MonthlyStats, 0, len(months))
	for _, m := range months {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	if len(out) > 6 {
		out = out[len(out)-6:]
	}
	return out
}
