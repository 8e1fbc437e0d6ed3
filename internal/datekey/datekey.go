// Package datekey converts between calendar days and the string keys used by
// the diary (YYYY-MM-DD) and by the native mirror folders (DD-MM-YYYY).
//
// Keys are always interpreted in the location of the reference time passed
// in, so a user in UTC-8 writing at 23:30 lands on their own calendar day.
package datekey

import (
	"fmt"
	"time"

	"github.com/julianstephens/diarykeep/internal/constants"
)

// Format returns the day key for t in t's location.
func Format(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// Parse parses a day key as local midnight in loc.
func Parse(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(constants.DateFormat, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q: %w", key, err)
	}
	return t, nil
}

// Valid reports whether key is a well-formed YYYY-MM-DD day key.
func Valid(key string) bool {
	t, err := time.Parse(constants.DateFormat, key)
	return err == nil && t.Format(constants.DateFormat) == key
}

// Today returns the key for the calendar day containing now.
func Today(now time.Time) string {
	return Format(now)
}

// AddDays shifts t by n calendar days. Uses AddDate so DST transitions do not
// skip or repeat a day.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// Shift returns the key n days away from key. Invalid keys are returned unchanged.
func Shift(key string, n int) string {
	t, err := time.Parse(constants.DateFormat, key)
	if err != nil {
		return key
	}
	return t.AddDate(0, 0, n).Format(constants.DateFormat)
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ToFolder converts YYYY-MM-DD to the mirror folder name DD-MM-YYYY.
func ToFolder(key string) (string, error) {
	t, err := time.Parse(constants.DateFormat, key)
	if err != nil {
		return "", fmt.Errorf("invalid day key %q: %w", key, err)
	}
	return t.Format(constants.FolderFormat), nil
}

// FromFolder converts a mirror folder name DD-MM-YYYY back to YYYY-MM-DD.
func FromFolder(folder string) (string, error) {
	t, err := time.Parse(constants.FolderFormat, folder)
	if err != nil {
		return "", fmt.Errorf("invalid mirror folder %q: %w", folder, err)
	}
	return t.Format(constants.DateFormat), nil
}
