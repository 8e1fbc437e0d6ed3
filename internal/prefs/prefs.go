// Package prefs holds the small JSON partitions beside the diary: appearance
// settings, the app lock, bookmarks and the daily reminder.
package prefs

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/diarykeep/internal/bus"
	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/logger"
	"github.com/julianstephens/diarykeep/internal/models"
	"github.com/julianstephens/diarykeep/internal/storage"
)

type Store struct {
	provider storage.Provider
	bus      *bus.Bus
}

// New returns a Store. b may be nil when nothing observes preference changes.
func New(p storage.Provider, b *bus.Bus) *Store {
	return &Store{provider: p, bus: b}
}

func (s *Store) raw(key string) []byte {
	v, ok, err := s.provider.GetPartition(key)
	if err != nil {
		logger.Warn("Failed to read partition", "key", key, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	return []byte(v)
}

func (s *Store) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.provider.PutPartition(key, string(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	if s.bus != nil {
		s.bus.Publish()
	}
	return nil
}

// Settings returns the stored settings merged over the defaults. A corrupt or
// invalid record reads as the defaults.
func (s *Store) Settings() models.Settings {
	st, err := models.DecodeSettings(s.raw(constants.PartitionSettings))
	if err != nil {
		logger.Warn("Settings are malformed, using defaults", "error", err)
		return models.DefaultSettings()
	}
	if err := st.Validate(); err != nil {
		logger.Warn("Settings are invalid, using defaults", "error", err)
		return models.DefaultSettings()
	}
	return st
}

func (s *Store) SetSettings(st models.Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	if st.FontFamily != "custom" {
		st.CustomFontURL = ""
		st.CustomFontName = ""
	}
	return s.put(constants.PartitionSettings, st)
}

// Notifications returns the reminder settings, or the defaults when the
// record is missing or corrupt.
func (s *Store) Notifications() models.NotificationSettings {
	n, err := models.DecodeNotificationSettings(s.raw(constants.PartitionNotifications))
	if err != nil {
		logger.Warn("Notification settings are malformed, using defaults", "error", err)
		return models.DefaultNotificationSettings()
	}
	return n
}

func (s *Store) SetNotifications(n models.NotificationSettings) error {
	if err := n.Validate(); err != nil {
		return err
	}
	return s.put(constants.PartitionNotifications, n)
}
