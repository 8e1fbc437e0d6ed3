package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/datekey"
	"github.com/julianstephens/diarykeep/internal/diary"
	apperrors "github.com/julianstephens/diarykeep/internal/errors"
	"github.com/julianstephens/diarykeep/internal/models"
	"github.com/julianstephens/diarykeep/internal/storage"
)

// Result summarises an import.
type Result struct {
	Days       []string
	Photos     int
	VoiceNotes int
	Partitions []string
}

// parsed is an archive fully decoded into memory.
type parsed struct {
	days       models.Snapshot
	partitions map[string]string
	photos     int
	voiceNotes int
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrImportInvalid, fmt.Sprintf(format, args...))
}

// Import merges the archive in r into the diary. Every file is parsed before
// anything is written; any problem returns ErrImportInvalid and leaves
// storage untouched. Imported days replace the same stored days whole.
func Import(ctx context.Context, r io.ReaderAt, size int64, d *diary.Store) (Result, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Result{}, invalid("not a zip archive: %v", err)
	}
	arc, err := parse(zr)
	if err != nil {
		return Result{}, err
	}

	keys := make([]string, 0, len(arc.partitions))
	for k := range arc.partitions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	err = d.Import(ctx, arc.days, func(tx storage.Tx) error {
		for _, k := range keys {
			if err := tx.PutPartition(k, arc.partitions[k]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to apply import: %w", err)
	}

	return Result{
		Days:       arc.days.Keys(),
		Photos:     arc.photos,
		VoiceNotes: arc.voiceNotes,
		Partitions: keys,
	}, nil
}

// ImportFile imports the archive at path.
func ImportFile(ctx context.Context, filePath string, d *diary.Store) (Result, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read archive: %w", err)
	}
	return Import(ctx, bytes.NewReader(data), int64(len(data)), d)
}

func parse(zr *zip.Reader) (*parsed, error) {
	root := constants.ArchiveRoot + "/"
	files := make(map[string]*zip.File)
	dayFiles := make(map[string]map[string]*zip.File)
	sawRoot := false

	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, root) {
			continue
		}
		sawRoot = true
		if f.FileInfo().IsDir() {
			continue
		}
		rel := strings.TrimPrefix(f.Name, root)
		files[rel] = f
		dir, name, ok := strings.Cut(rel, "/")
		if !ok {
			continue
		}
		if strings.Contains(name, "/") || name == "" {
			return nil, invalid("unexpected nested entry %s", f.Name)
		}
		if !datekey.Valid(dir) {
			return nil, invalid("folder %q is not a date", dir)
		}
		if dayFiles[dir] == nil {
			dayFiles[dir] = make(map[string]*zip.File)
		}
		dayFiles[dir][name] = f
	}
	if !sawRoot {
		return nil, invalid("%s folder not found", constants.ArchiveRoot)
	}

	arc := &parsed{days: models.Snapshot{}, partitions: map[string]string{}}
	for key, df := range dayFiles {
		rec, err := parseDay(key, df, arc)
		if err != nil {
			return nil, err
		}
		arc.days[key] = rec
	}

	for _, aux := range auxPartitions {
		f, ok := files[aux.file]
		if !ok {
			continue
		}
		data, err := readAll(f)
		if err != nil {
			return nil, err
		}
		if !json.Valid(data) {
			return nil, invalid("%s is not valid JSON", aux.file)
		}
		arc.partitions[aux.key] = string(data)
	}
	return arc, nil
}

func parseDay(key string, df map[string]*zip.File, arc *parsed) (models.DayRecord, error) {
	rec := models.DayRecord{Photos: []models.PhotoRef{}}

	if f, ok := df[constants.ArchiveContentFile]; ok {
		data, err := readAll(f)
		if err != nil {
			return rec, err
		}
		rec.Content = string(data)
	}

	if f, ok := df[constants.ArchiveMetadataFile]; ok {
		var meta metadata
		if err := decodeJSON(f, &meta); err != nil {
			return rec, err
		}
		rec.Tags = models.NormalizeTags(meta.Tags)
		rec.Location = meta.Location
		rec.Weather = meta.Weather
		rec.Habits = meta.Habits
		rec.Mood = models.ParseMood(string(meta.Mood))
	}

	if f, ok := df[constants.ArchivePhotosFile]; ok {
		var entries []photoEntry
		if err := decodeJSON(f, &entries); err != nil {
			return rec, err
		}
		for _, e := range entries {
			data, ok, err := readMedia(df, e.Filename)
			if err != nil {
				return rec, err
			}
			if !ok {
				continue
			}
			rec.Photos = append(rec.Photos, models.PhotoRef{
				Filename:  e.Filename,
				Path:      e.Path,
				Timestamp: e.Timestamp,
				Base64:    data,
			})
			arc.photos++
		}
	}

	if f, ok := df[constants.ArchiveVoiceFile]; ok {
		var entries []voiceEntry
		if err := decodeJSON(f, &entries); err != nil {
			return rec, err
		}
		for _, e := range entries {
			data, ok, err := readMedia(df, e.Filename)
			if err != nil {
				return rec, err
			}
			if !ok {
				continue
			}
			rec.VoiceNotes = append(rec.VoiceNotes, models.VoiceNoteRef{
				Filename:  e.Filename,
				Duration:  e.Duration,
				Timestamp: e.Timestamp,
				Base64:    data,
			})
			arc.voiceNotes++
		}
	}
	return rec, nil
}

// readMedia returns the base64 bytes of a media file listed in a day's
// index. Listed files missing from the archive are skipped.
func readMedia(df map[string]*zip.File, filename string) (string, bool, error) {
	if filename == "" || filename != path.Base(filename) {
		return "", false, invalid("bad media filename %q", filename)
	}
	f, ok := df[filename]
	if !ok {
		return "", false, nil
	}
	data, err := readAll(f)
	if err != nil {
		return "", false, err
	}
	return base64.StdEncoding.EncodeToString(data), true, nil
}

func readAll(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, invalid("cannot open %s: %v", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, invalid("cannot read %s: %v", f.Name, err)
	}
	return data, nil
}

func decodeJSON(f *zip.File, v any) error {
	data, err := readAll(f)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return invalid("%s: %v", f.Name, err)
	}
	return nil
}
