package stats

import (
	"sort"
	"time"

	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/datekey"
	"github.com/julianstephens/diarykeep/internal/models"
)

// entryDates returns the sorted keys of counting days.
func entryDates(snap models.Snapshot) []string {
	var keys []string
	for key, rec := range snap {
		if IsCountingDay(rec) && datekey.Valid(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// CurrentStreak counts consecutive counting days ending today, or ending
// yesterday when today has no entry yet.
func CurrentStreak(snap models.Snapshot, ref time.Time) int {
	today := datekey.Format(ref)
	yesterday := datekey.Format(datekey.AddDays(ref, -1))

	has := func(key string) bool { return IsCountingDay(snap[key]) }

	var check string
	switch {
	case has(today):
		check = today
	case has(yesterday):
		check = yesterday
	default:
		return 0
	}

	streak := 0
	for has(check) {
		streak++
		check = datekey.Shift(check, -1)
	}
	return streak
}

// LongestStreak returns the longest run of consecutive counting days.
func LongestStreak(snap models.Snapshot) int {
	dates := entryDates(snap)
	if len(dates) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(dates); i++ {
		if daysBetween(dates[i-1], dates[i]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// daysBetween counts calendar days from a to b. Both are parsed as UTC
// midnights so DST never changes the result.
func daysBetween(a, b string) int {
	ta, err1 := time.Parse(constants.DateFormat, a)
	tb, err2 := time.Parse(constants.DateFormat, b)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}
