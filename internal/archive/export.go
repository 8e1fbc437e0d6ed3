// Package archive reads and writes the portable zip backup and keeps a
// rotating set of them on disk.
package archive

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"

	"github.com/julianstephens/diarykeep/internal/blob"
	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/diary"
	"github.com/julianstephens/diarykeep/internal/logger"
	"github.com/julianstephens/diarykeep/internal/models"
	"github.com/julianstephens/diarykeep/internal/storage"
)

// metadata is the per-day metadata.json. Empty fields are left out.
type metadata struct {
	Tags     []string         `json:"tags,omitempty"`
	Location *models.Location `json:"location,omitempty"`
	Weather  *models.Weather  `json:"weather,omitempty"`
	Habits   map[string]bool  `json:"habits,omitempty"`
	Mood     models.Mood      `json:"mood,omitempty"`
}

func (m metadata) empty() bool {
	return len(m.Tags) == 0 && m.Location == nil && m.Weather == nil && len(m.Habits) == 0 && m.Mood == ""
}

type photoEntry struct {
	Filename  string `json:"filename"`
	Path      string `json:"path,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type voiceEntry struct {
	Filename  string `json:"filename"`
	Duration  int    `json:"duration"`
	Timestamp int64  `json:"timestamp"`
}

// auxPartitions are copied verbatim into the archive root.
var auxPartitions = []struct {
	key  string
	file string
}{
	{constants.PartitionSettings, constants.ArchiveSettingsFile},
	{constants.PartitionBookmarks, constants.ArchiveBookmarksFile},
	{constants.PartitionHabits, constants.ArchiveHabitsFile},
}

// Export writes the whole diary as a zip archive to w.
func Export(ctx context.Context, w io.Writer, d *diary.Store, p storage.Provider) error {
	zw := zip.NewWriter(w)
	if _, err := zw.Create(constants.ArchiveRoot + "/"); err != nil {
		return err
	}
	snap := d.GetAll()

	for _, key := range snap.Keys() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeDay(ctx, zw, d, key, snap[key]); err != nil {
			return fmt.Errorf("failed to export %s: %w", key, err)
		}
	}

	for _, aux := range auxPartitions {
		v, ok, err := p.GetPartition(aux.key)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", aux.key, err)
		}
		if !ok {
			continue
		}
		if err := writeEntry(zw, path.Join(constants.ArchiveRoot, aux.file), []byte(v)); err != nil {
			return err
		}
	}

	return zw.Close()
}

func writeDay(ctx context.Context, zw *zip.Writer, d *diary.Store, key string, rec models.DayRecord) error {
	dir := path.Join(constants.ArchiveRoot, key)

	if rec.Content != "" {
		if err := writeEntry(zw, path.Join(dir, constants.ArchiveContentFile), []byte(rec.Content)); err != nil {
			return err
		}
	}

	meta := metadata{Tags: rec.Tags, Location: rec.Location, Weather: rec.Weather, Habits: rec.Habits, Mood: rec.Mood}
	if !meta.empty() {
		if err := writeJSON(zw, path.Join(dir, constants.ArchiveMetadataFile), meta); err != nil {
			return err
		}
	}

	if len(rec.Photos) > 0 {
		entries := make([]photoEntry, 0, len(rec.Photos))
		for _, ph := range rec.Photos {
			entries = append(entries, photoEntry{Filename: ph.Filename, Path: ph.Path, Timestamp: ph.Timestamp})
		}
		if err := writeJSON(zw, path.Join(dir, constants.ArchivePhotosFile), entries); err != nil {
			return err
		}
		for _, ph := range rec.Photos {
			data, ok := d.PhotoData(ctx, ph)
			if !ok {
				logger.Warn("Photo data missing, exporting reference only", "day", key, "filename", ph.Filename)
				continue
			}
			if err := writeBinary(zw, path.Join(dir, ph.Filename), data); err != nil {
				return err
			}
		}
	}

	if len(rec.VoiceNotes) > 0 {
		entries := make([]voiceEntry, 0, len(rec.VoiceNotes))
		for _, v := range rec.VoiceNotes {
			entries = append(entries, voiceEntry{Filename: v.Filename, Duration: v.Duration, Timestamp: v.Timestamp})
		}
		if err := writeJSON(zw, path.Join(dir, constants.ArchiveVoiceFile), entries); err != nil {
			return err
		}
		for _, v := range rec.VoiceNotes {
			data, ok := d.VoiceData(ctx, v)
			if !ok {
				logger.Warn("Voice note data missing, exporting reference only", "day", key, "filename", v.Filename)
				continue
			}
			if err := writeBinary(zw, path.Join(dir, v.Filename), data); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	return err
}

func writeJSON(zw *zip.Writer, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeEntry(zw, name, data)
}

func writeBinary(zw *zip.Writer, name, b64 string) error {
	raw, err := blob.Decode(b64)
	if err != nil {
		logger.Warn("Skipping corrupt media", "file", name, "error", err)
		return nil
	}
	return writeEntry(zw, name, raw)
}
