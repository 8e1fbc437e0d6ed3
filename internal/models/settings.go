package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/julianstephens/diarykeep/internal/constants"
)

// Settings holds appearance and layout preferences.
type Settings struct {
	FontFamily         string `json:"fontFamily"`         // inter, delius, georgia, courier, custom
	FontSize           string `json:"fontSize"`           // small, medium, large
	ThemeColor         string `json:"themeColor"`         // red, blue, green, purple, orange, pink, custom
	CustomThemeColor   string `json:"customThemeColor"`   // hex, used when ThemeColor is custom
	BackgroundColor    string `json:"backgroundColor"`    // hex
	FontColor          string `json:"fontColor"`          // hex
	CustomFontURL      string `json:"customFontUrl"`      // only with FontFamily custom
	CustomFontName     string `json:"customFontName"`     // only with FontFamily custom
	ShowWritingPrompts bool   `json:"showWritingPrompts"` // show a prompt card above the editor
	ShowCalendar       bool   `json:"showCalendar"`       // show the month calendar
}

var (
	fontFamilies = []string{"inter", "delius", "georgia", "courier", "custom"}
	fontSizes    = []string{"small", "medium", "large"}
	themeColors  = map[string]string{
		"red":    "#ef4444",
		"blue":   "#3b82f6",
		"green":  "#16a34a",
		"purple": "#7c3aed",
		"orange": "#f97316",
		"pink":   "#ec4899",
	}
	hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// DefaultSettings returns the settings used when nothing is stored.
func DefaultSettings() Settings {
	return Settings{
		FontFamily:         constants.DefaultFontFamily,
		FontSize:           constants.DefaultFontSize,
		ThemeColor:         constants.DefaultThemeColor,
		CustomThemeColor:   constants.DefaultCustomThemeColor,
		BackgroundColor:    constants.DefaultBackgroundColor,
		FontColor:          constants.DefaultFontColor,
		ShowWritingPrompts: constants.DefaultShowWritingPrompts,
		ShowCalendar:       constants.DefaultShowCalendar,
	}
}

// DecodeSettings merges stored JSON over the defaults. Unknown fields are
// ignored and missing fields keep their default.
func DecodeSettings(raw []byte) (Settings, error) {
	s := DefaultSettings()
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("decoding settings: %w", err)
	}
	return s, nil
}

func (s Settings) Validate() error {
	if !contains(fontFamilies, s.FontFamily) {
		return fmt.Errorf("unknown font family %q", s.FontFamily)
	}
	if !contains(fontSizes, s.FontSize) {
		return fmt.Errorf("unknown font size %q", s.FontSize)
	}
	if _, ok := themeColors[s.ThemeColor]; !ok && s.ThemeColor != "custom" {
		return fmt.Errorf("unknown theme color %q", s.ThemeColor)
	}
	for name, v := range map[string]string{
		"custom theme color": s.CustomThemeColor,
		"background color":   s.BackgroundColor,
		"font color":         s.FontColor,
	} {
		if !hexColorRe.MatchString(v) {
			return fmt.Errorf("invalid %s %q (expected #rrggbb)", name, v)
		}
	}
	return nil
}

// ThemeHex resolves the theme color to a #rrggbb value.
func (s Settings) ThemeHex() string {
	if s.ThemeColor == "custom" && hexColorRe.MatchString(s.CustomThemeColor) {
		return s.CustomThemeColor
	}
	if hex, ok := themeColors[s.ThemeColor]; ok {
		return hex
	}
	return themeColors[constants.DefaultThemeColor]
}

// LockSettings guards the app with a numeric PIN. Only a bcrypt hash of the
// PIN is stored. LegacyPassword is read from old clear-text records and
// dropped on the next save.
type LockSettings struct {
	Enabled        bool   `json:"isEnabled"`
	PINHash        string `json:"pinHash,omitempty"`
	UseBiometric   bool   `json:"useBiometric"`
	LegacyPassword string `json:"password,omitempty"`
}

// NotificationSettings configures the daily reminder.
type NotificationSettings struct {
	Enabled bool   `json:"enabled"`
	Time    string `json:"time"` // HH:MM
	Message string `json:"message"`
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Enabled: false,
		Time:    constants.DefaultNotificationTime,
		Message: constants.DefaultNotificationMessage,
	}
}

func DecodeNotificationSettings(raw []byte) (NotificationSettings, error) {
	n := DefaultNotificationSettings()
	if len(raw) == 0 {
		return n, nil
	}
	if err := json.Unmarshal(raw, &n); err != nil {
		return DefaultNotificationSettings(), fmt.Errorf("decoding notification settings: %w", err)
	}
	return n, nil
}

func (n NotificationSettings) Validate() error {
	if _, err := time.Parse(constants.TimeFormat, n.Time); err != nil {
		return fmt.Errorf("invalid time format (expected HH:MM): %w", err)
	}
	if n.Message == "" {
		return fmt.Errorf("notification message cannot be empty")
	}
	return nil
}

// NextFire returns the next time at or after now when the reminder fires.
func (n NotificationSettings) NextFire(now time.Time) (time.Time, error) {
	t, err := time.Parse(constants.TimeFormat, n.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format (expected HH:MM): %w", err)
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
