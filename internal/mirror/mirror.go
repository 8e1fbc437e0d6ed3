// Package mirror keeps a human-readable copy of the diary on disk for the
// native host: one DD-MM-YYYY folder per day holding content.txt,
// photos.json, meta.json and the photo files themselves.
//
// The mirror is a best-effort replica. Callers log its errors and never
// treat them as write failures.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/julianstephens/diarykeep/internal/blob"
	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/datekey"
	"github.com/julianstephens/diarykeep/internal/models"
)

type Mirror struct {
	root string
}

// meta is the on-disk form of everything in a day that is not content or photos.
type meta struct {
	Tags       []string              `json:"tags,omitempty"`
	Location   *models.Location      `json:"location,omitempty"`
	Weather    *models.Weather       `json:"weather,omitempty"`
	Habits     map[string]bool       `json:"habits,omitempty"`
	Mood       models.Mood           `json:"mood,omitempty"`
	VoiceNotes []models.VoiceNoteRef `json:"voiceNotes,omitempty"`
}

// New returns a mirror rooted at <dataDir>/mydiaryapp.
func New(dataDir string) *Mirror {
	return &Mirror{root: filepath.Join(dataDir, constants.MirrorAppFolder)}
}

func (m *Mirror) Root() string {
	return m.root
}

func (m *Mirror) dayDir(key string) (string, error) {
	folder, err := datekey.ToFolder(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(m.root, folder), nil
}

// RelPath is the path recorded in a PhotoRef, relative to the host data dir.
func RelPath(key, filename string) string {
	folder, err := datekey.ToFolder(key)
	if err != nil {
		folder = key
	}
	return constants.MirrorAppFolder + "/" + folder + "/" + filename
}

// WriteDay writes content.txt, photos.json and meta.json for the day.
func (m *Mirror) WriteDay(ctx context.Context, key string, rec models.DayRecord) error {
	dir, err := m.dayDir(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create mirror folder: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, constants.MirrorContentFile), []byte(rec.Content), 0600); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}

	photos := make([]models.PhotoRef, 0, len(rec.Photos))
	for _, p := range rec.Photos {
		p.Base64 = ""
		photos = append(photos, p)
	}
	if err := writeJSON(ctx, filepath.Join(dir, constants.MirrorPhotosFile), photos); err != nil {
		return err
	}

	md := meta{
		Tags:     rec.Tags,
		Location: rec.Location,
		Weather:  rec.Weather,
		Habits:   rec.Habits,
		Mood:     rec.Mood,
	}
	for _, v := range rec.VoiceNotes {
		v.Base64 = ""
		md.VoiceNotes = append(md.VoiceNotes, v)
	}
	return writeJSON(ctx, filepath.Join(dir, constants.MirrorMetaFile), md)
}

// WriteFile decodes data and stores it as filename in the day's folder.
func (m *Mirror) WriteFile(ctx context.Context, key, filename, data string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if filename == "" || strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("invalid mirror filename %q", filename)
	}
	dir, err := m.dayDir(key)
	if err != nil {
		return err
	}
	raw, err := blob.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create mirror folder: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, filename), raw, 0600)
}

// RemoveFile deletes filename from the day's folder. A missing file is not an error.
func (m *Mirror) RemoveFile(ctx context.Context, key, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir, err := m.dayDir(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(dir, filename)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveDay deletes the whole day folder.
func (m *Mirror) RemoveDay(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir, err := m.dayDir(key)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

// ReadDay reads a day back from the mirror. ok is false when the day has no
// content.txt. A missing photos.json or meta.json leaves those fields empty.
func (m *Mirror) ReadDay(key string) (models.DayRecord, bool, error) {
	dir, err := m.dayDir(key)
	if err != nil {
		return models.DayRecord{}, false, err
	}

	content, err := os.ReadFile(filepath.Join(dir, constants.MirrorContentFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.DayRecord{}, false, nil
		}
		return models.DayRecord{}, false, err
	}
	rec := models.DayRecord{Content: string(content)}

	if raw, err := os.ReadFile(filepath.Join(dir, constants.MirrorPhotosFile)); err == nil {
		var photos []models.PhotoRef
		if json.Unmarshal(raw, &photos) == nil {
			rec.Photos = photos
		}
	}

	if raw, err := os.ReadFile(filepath.Join(dir, constants.MirrorMetaFile)); err == nil {
		var md meta
		if json.Unmarshal(raw, &md) == nil {
			rec.Tags = md.Tags
			rec.Location = md.Location
			rec.Weather = md.Weather
			rec.Habits = md.Habits
			rec.Mood = models.ParseMood(string(md.Mood))
			rec.VoiceNotes = md.VoiceNotes
		}
	}
	return rec, true, nil
}

// Days lists the date keys that have a folder in the mirror, oldest first.
// Folders not named DD-MM-YYYY are ignored.
func (m *Mirror) Days() ([]string, error) {
	entries, err := os.ReadDir(m.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if key, err := datekey.FromFolder(e.Name()); err == nil {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// ReadFile returns the raw bytes of filename in the day's folder.
func (m *Mirror) ReadFile(key, filename string) ([]byte, error) {
	if filename == "" || strings.ContainsAny(filename, `/\`) {
		return nil, fmt.Errorf("invalid mirror filename %q", filename)
	}
	dir, err := m.dayDir(key)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(dir, filename))
}

func writeJSON(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
