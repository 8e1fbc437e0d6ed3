package models

import (
	"testing"
	"time"

	"github.com/julianstephens/diarykeep/internal/constants"
)

func TestDecodeSettings_MergesOverDefaults(t *testing.T) {
	s, err := DecodeSettings([]byte(`{"fontSize":"large","showCalendar":false,"unknownField":1}`))
	if err != nil {
		t.Fatalf("DecodeSettings: %v", err)
	}
	if s.FontSize != "large" {
		t.Errorf("FontSize = %q, want large", s.FontSize)
	}
	if s.ShowCalendar {
		t.Error("ShowCalendar should be overridden to false")
	}
	if s.FontFamily != constants.DefaultFontFamily || !s.ShowWritingPrompts {
		t.Errorf("missing fields should keep defaults: %+v", s)
	}
}

func TestDecodeSettings_Corrupt(t *testing.T) {
	s, err := DecodeSettings([]byte(`{not json`))
	if err == nil {
		t.Error("expected error for corrupt settings")
	}
	if s != DefaultSettings() {
		t.Errorf("corrupt settings should fall back to defaults, got %+v", s)
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(*Settings) {}, false},
		{"custom theme", func(s *Settings) { s.ThemeColor = "custom"; s.CustomThemeColor = "#123456" }, false},
		{"bad font", func(s *Settings) { s.FontFamily = "comic" }, true},
		{"bad size", func(s *Settings) { s.FontSize = "huge" }, true},
		{"bad theme", func(s *Settings) { s.ThemeColor = "teal" }, true},
		{"bad hex", func(s *Settings) { s.BackgroundColor = "black" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			if err := s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettings_ThemeHex(t *testing.T) {
	s := DefaultSettings()
	if got := s.ThemeHex(); got != "#ef4444" {
		t.Errorf("ThemeHex() = %q", got)
	}
	s.ThemeColor = "custom"
	s.CustomThemeColor = "#abcdef"
	if got := s.ThemeHex(); got != "#abcdef" {
		t.Errorf("ThemeHex() = %q", got)
	}
}

func TestNotificationSettings(t *testing.T) {
	n, err := DecodeNotificationSettings([]byte(`{"enabled":true}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !n.Enabled || n.Time != "20:00" || n.Message != constants.DefaultNotificationMessage {
		t.Errorf("unexpected settings: %+v", n)
	}
	if err := n.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	n.Time = "25:00"
	if err := n.Validate(); err == nil {
		t.Error("expected invalid time error")
	}
}

func TestNotificationSettings_NextFire(t *testing.T) {
	n := DefaultNotificationSettings()
	loc := time.UTC

	before := time.Date(2024, 5, 1, 19, 0, 0, 0, loc)
	next, err := n.NextFire(before)
	if err != nil {
		t.Fatalf("NextFire: %v", err)
	}
	if want := time.Date(2024, 5, 1, 20, 0, 0, 0, loc); !next.Equal(want) {
		t.Errorf("NextFire() = %v, want %v", next, want)
	}

	after := time.Date(2024, 5, 1, 20, 0, 0, 0, loc)
	next, _ = n.NextFire(after)
	if want := time.Date(2024, 5, 2, 20, 0, 0, 0, loc); !next.Equal(want) {
		t.Errorf("NextFire() = %v, want %v", next, want)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Travel ", "#travel", "road-trip", "2024", "!!"})
	want := []string{"travel", "roadtrip", "2024"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeTags() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizeTags()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if NormalizeTags([]string{"", "--"}) != nil {
		t.Error("expected nil for all-invalid input")
	}
}
