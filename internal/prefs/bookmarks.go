package prefs

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/datekey"
	"github.com/julianstephens/diarykeep/internal/logger"
)

// Bookmarks returns bookmarked date keys, newest first.
func (s *Store) Bookmarks() []string {
	raw := s.raw(constants.PartitionBookmarks)
	if len(raw) == 0 {
		return nil
	}
	var keys []string
	if err := json.Unmarshal(raw, &keys); err != nil {
		logger.Warn("Bookmarks are malformed, ignoring", "error", err)
		return nil
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}

func (s *Store) IsBookmarked(key string) bool {
	for _, k := range s.Bookmarks() {
		if k == key {
			return true
		}
	}
	return false
}

// ToggleBookmark adds or removes the day and returns whether it is now
// bookmarked.
func (s *Store) ToggleBookmark(key string) (bool, error) {
	if !datekey.Valid(key) {
		return false, fmt.Errorf("invalid date key %q", key)
	}
	keys := s.Bookmarks()
	kept := make([]string, 0, len(keys)+1)
	found := false
	for _, k := range keys {
		if k == key {
			found = true
			continue
		}
		kept = append(kept, k)
	}
	if !found {
		kept = append(kept, key)
	}
	if err := s.put(constants.PartitionBookmarks, kept); err != nil {
		return false, err
	}
	return !found, nil
}
