package datekey

import (
	"testing"
	"time"
)

func TestFolderRoundTrip(t *testing.T) {
	tests := []struct {
		key    string
		folder string
	}{
		{"2024-01-05", "05-01-2024"},
		{"2023-12-31", "31-12-2023"},
		{"2024-02-29", "29-02-2024"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			folder, err := ToFolder(tt.key)
			if err != nil {
				t.Fatalf("ToFolder(%q) error: %v", tt.key, err)
			}
			if folder != tt.folder {
				t.Errorf("ToFolder(%q) = %q, want %q", tt.key, folder, tt.folder)
			}
			key, err := FromFolder(folder)
			if err != nil {
				t.Fatalf("FromFolder(%q) error: %v", folder, err)
			}
			if key != tt.key {
				t.Errorf("FromFolder(%q) = %q, want %q", folder, key, tt.key)
			}
		})
	}
}

func TestFolderInvalid(t *testing.T) {
	if _, err := ToFolder("05-01-2024"); err == nil {
		t.Error("ToFolder accepted a folder name as a key")
	}
	if _, err := FromFolder("2024-01-05"); err == nil {
		t.Error("FromFolder accepted a key as a folder name")
	}
	if _, err := FromFolder("31-02-2024"); err == nil {
		t.Error("FromFolder accepted an impossible date")
	}
}

func TestValid(t *testing.T) {
	tests := map[string]bool{
		"2024-01-05": true,
		"2024-1-5":   false,
		"2024-13-01": false,
		"":           false,
		"not a date": false,
	}
	for key, want := range tests {
		if got := Valid(key); got != want {
			t.Errorf("Valid(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestTodayUsesReferenceLocation(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*60*60)
	// 07:30 UTC on Jan 2 is still Jan 1 at UTC-8.
	now := time.Date(2024, 1, 2, 7, 30, 0, 0, time.UTC).In(loc)

	if got := Today(now); got != "2024-01-01" {
		t.Errorf("Today() = %q, want 2024-01-01", got)
	}
}

func TestShiftAndAddDays(t *testing.T) {
	if got := Shift("2024-03-01", -1); got != "2024-02-29" {
		t.Errorf("Shift() = %q, want 2024-02-29", got)
	}
	if got := Shift("2024-12-31", 1); got != "2025-01-01" {
		t.Errorf("Shift() = %q, want 2025-01-01", got)
	}
	if got := Shift("garbage", 1); got != "garbage" {
		t.Errorf("Shift() on invalid key = %q", got)
	}

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// DST starts 2024-03-10 in New York.
	start := time.Date(2024, 3, 9, 0, 0, 0, 0, ny)
	if got := Format(AddDays(start, 2)); got != "2024-03-11" {
		t.Errorf("AddDays across DST = %q, want 2024-03-11", got)
	}
}

func TestParse(t *testing.T) {
	loc := time.FixedZone("X", 3600)
	got, err := Parse("2024-06-15", loc)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got.Location() != loc || got.Hour() != 0 || got.Day() != 15 {
		t.Errorf("Parse() = %v", got)
	}
	if _, err := Parse("15-06-2024", loc); err == nil {
		t.Error("Parse() accepted folder format")
	}
}
