package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/diary"
	apperrors "github.com/julianstephens/diarykeep/internal/errors"
	"github.com/julianstephens/diarykeep/internal/models"
	"github.com/julianstephens/diarykeep/internal/storage"
	"github.com/julianstephens/diarykeep/internal/storage/sqlite"
)

type env struct {
	provider storage.Provider
	diary    *diary.Store
	dir      string
}

func setupEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	p := sqlite.NewStore(filepath.Join(dir, "test.db"))
	if err := p.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	d, err := diary.Open(context.Background(), diary.Options{Provider: p})
	if err != nil {
		t.Fatalf("diary.Open() failed: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return &env{provider: p, diary: d, dir: dir}
}

var photoBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}

func seed(t *testing.T, e *env) models.PhotoRef {
	t.Helper()
	ctx := context.Background()
	if err := e.diary.WriteContent(ctx, "2024-03-01", "first day"); err != nil {
		t.Fatalf("WriteContent() failed: %v", err)
	}
	if err := e.diary.WriteMeta(ctx, "2024-03-01", models.MetaPatch{
		Tags: &[]string{"work"},
		Mood: moodPtr(models.MoodGood),
	}); err != nil {
		t.Fatalf("WriteMeta() failed: %v", err)
	}
	ref, err := e.diary.AddPhoto(ctx, "2024-03-02", base64.StdEncoding.EncodeToString(photoBytes))
	if err != nil {
		t.Fatalf("AddPhoto() failed: %v", err)
	}
	if _, err := e.diary.AddVoiceNote(ctx, "2024-03-02", base64.StdEncoding.EncodeToString([]byte("voice")), 7); err != nil {
		t.Fatalf("AddVoiceNote() failed: %v", err)
	}
	if err := e.provider.PutPartition(constants.PartitionBookmarks, `["2024-03-01"]`); err != nil {
		t.Fatalf("PutPartition() failed: %v", err)
	}
	return ref
}

func moodPtr(m models.Mood) *models.Mood { return &m }

func export(t *testing.T, e *env) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := Export(context.Background(), &buf, e.diary, e.provider); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}
	return buf.Bytes()
}

func zipNames(t *testing.T, data []byte) map[string]bool {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() failed: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	return names
}

func TestExportLayout(t *testing.T) {
	e := setupEnv(t)
	ref := seed(t, e)
	names := zipNames(t, export(t, e))

	want := []string{
		"mydairy/2024-03-01/content.txt",
		"mydairy/2024-03-01/metadata.json",
		"mydairy/2024-03-02/content.txt",
		"mydairy/2024-03-02/photos.json",
		"mydairy/2024-03-02/" + ref.Filename,
		"mydairy/2024-03-02/voicenotes.json",
		"mydairy/bookmarks.json",
	}
	for _, n := range want {
		if !names[n] {
			t.Errorf("expected %s in archive", n)
		}
	}
	if names["mydairy/settings.json"] || names["mydairy/2024-03-02/metadata.json"] {
		t.Error("unexpected optional files in archive")
	}
}

func TestRoundTripUnpaddedPhoto(t *testing.T) {
	src := setupEnv(t)
	ctx := context.Background()
	ref, err := src.diary.AddPhoto(ctx, "2024-03-02", "aGVsbG8")
	if err != nil {
		t.Fatalf("AddPhoto() failed: %v", err)
	}
	data := export(t, src)
	if !zipNames(t, data)["mydairy/2024-03-02/"+ref.Filename] {
		t.Fatal("photo file missing from archive")
	}

	dst := setupEnv(t)
	res, err := Import(ctx, bytes.NewReader(data), int64(len(data)), dst.diary)
	if err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	if res.Photos != 1 {
		t.Errorf("imported photos = %d, want 1", res.Photos)
	}
	rec := dst.diary.GetDay("2024-03-02")
	if !rec.HasPhoto(ref.Filename) {
		t.Fatalf("photo ref not imported: %+v", rec)
	}
	got, ok := dst.diary.PhotoData(ctx, rec.Photos[0])
	if !ok || got != "aGVsbG8=" {
		t.Errorf("PhotoData() = %q, %v; want aGVsbG8=", got, ok)
	}
}

func TestRoundTrip(t *testing.T) {
	src := setupEnv(t)
	ref := seed(t, src)
	data := export(t, src)

	dst := setupEnv(t)
	res, err := Import(context.Background(), bytes.NewReader(data), int64(len(data)), dst.diary)
	if err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	if len(res.Days) != 2 || res.Photos != 1 || res.VoiceNotes != 1 {
		t.Errorf("unexpected result %+v", res)
	}

	got := dst.diary.GetAll()
	want := src.diary.GetAll()
	if got["2024-03-01"].Content != want["2024-03-01"].Content {
		t.Errorf("content mismatch: %q vs %q", got["2024-03-01"].Content, want["2024-03-01"].Content)
	}
	if got["2024-03-01"].Mood != models.MoodGood || len(got["2024-03-01"].Tags) != 1 {
		t.Errorf("metadata not restored: %+v", got["2024-03-01"])
	}
	if got["2024-03-02"].Content != want["2024-03-02"].Content {
		t.Errorf("photo marker content mismatch")
	}

	photo := got["2024-03-02"].Photos
	if len(photo) != 1 || photo[0].Filename != ref.Filename || photo[0].Base64 != "" {
		t.Fatalf("unexpected photos %+v", photo)
	}
	b64, ok := dst.diary.PhotoData(context.Background(), photo[0])
	if !ok || b64 != base64.StdEncoding.EncodeToString(photoBytes) {
		t.Error("photo bytes not restored to blob storage")
	}

	v := got["2024-03-02"].VoiceNotes
	if len(v) != 1 || v[0].Duration != 7 {
		t.Fatalf("unexpected voice notes %+v", v)
	}

	raw, ok, _ := dst.provider.GetPartition(constants.PartitionBookmarks)
	if !ok || raw != `["2024-03-01"]` {
		t.Errorf("bookmarks not restored: %q", raw)
	}
}

func TestImportOverwritesDaysAndKeepsOthers(t *testing.T) {
	src := setupEnv(t)
	ctx := context.Background()
	if err := src.diary.WriteContent(ctx, "2024-03-01", "from archive"); err != nil {
		t.Fatal(err)
	}
	data := export(t, src)

	dst := setupEnv(t)
	if err := dst.diary.WriteContent(ctx, "2024-03-01", "local"); err != nil {
		t.Fatal(err)
	}
	if err := dst.diary.WriteMeta(ctx, "2024-03-01", models.MetaPatch{Tags: &[]string{"old"}}); err != nil {
		t.Fatal(err)
	}
	if err := dst.diary.WriteContent(ctx, "2024-02-01", "untouched"); err != nil {
		t.Fatal(err)
	}

	signals, unsubscribe := dst.diary.Bus().Subscribe()
	defer unsubscribe()

	if _, err := Import(ctx, bytes.NewReader(data), int64(len(data)), dst.diary); err != nil {
		t.Fatalf("Import() failed: %v", err)
	}

	got := dst.diary.GetAll()
	if got["2024-03-01"].Content != "from archive" || len(got["2024-03-01"].Tags) != 0 {
		t.Errorf("expected the whole day to be replaced, got %+v", got["2024-03-01"])
	}
	if got["2024-02-01"].Content != "untouched" {
		t.Error("expected other days to be kept")
	}
	select {
	case <-signals:
	case <-time.After(time.Second):
		t.Error("expected a change signal after import")
	}
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestImportInvalidWritesNothing(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not a zip", []byte("hello")},
		{"missing root", buildZip(t, map[string]string{"other/2024-03-01/content.txt": "x"})},
		{"bad metadata", buildZip(t, map[string]string{
			"mydairy/2024-03-01/content.txt":   "x",
			"mydairy/2024-03-02/metadata.json": "{not json",
		})},
		{"bad habits file", buildZip(t, map[string]string{
			"mydairy/2024-03-01/content.txt": "x",
			"mydairy/habits.json":            "[",
		})},
		{"non-date folder", buildZip(t, map[string]string{"mydairy/notes/content.txt": "x"})},
		{"path in media name", buildZip(t, map[string]string{
			"mydairy/2024-03-01/photos.json": `[{"filename":"../evil.jpg"}]`,
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setupEnv(t)
			if err := e.diary.WriteContent(context.Background(), "2024-01-01", "keep"); err != nil {
				t.Fatal(err)
			}
			before, _, _ := e.provider.GetPartition(constants.PartitionDiary)

			_, err := Import(context.Background(), bytes.NewReader(tt.data), int64(len(tt.data)), e.diary)
			if !errors.Is(err, apperrors.ErrImportInvalid) {
				t.Fatalf("expected ErrImportInvalid, got %v", err)
			}
			after, _, _ := e.provider.GetPartition(constants.PartitionDiary)
			if before != after {
				t.Error("storage changed after a failed import")
			}
			if _, ok, _ := e.provider.GetPartition(constants.PartitionHabits); ok {
				t.Error("habits partition written after a failed import")
			}
		})
	}
}

func TestImportSkipsMissingMedia(t *testing.T) {
	data := buildZip(t, map[string]string{
		"mydairy/2024-03-01/content.txt": "x",
		"mydairy/2024-03-01/photos.json": `[{"filename":"photo_1.jpg","timestamp":1}]`,
	})
	e := setupEnv(t)
	res, err := Import(context.Background(), bytes.NewReader(data), int64(len(data)), e.diary)
	if err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	if res.Photos != 0 || len(e.diary.GetDay("2024-03-01").Photos) != 0 {
		t.Error("expected the unlisted photo to be skipped")
	}
}

func TestEmptyDiaryRoundTrip(t *testing.T) {
	src := setupEnv(t)
	data := export(t, src)
	dst := setupEnv(t)
	res, err := Import(context.Background(), bytes.NewReader(data), int64(len(data)), dst.diary)
	if err != nil {
		t.Fatalf("Import() of an empty archive failed: %v", err)
	}
	if len(res.Days) != 0 {
		t.Errorf("expected no days, got %v", res.Days)
	}
}

func TestManagerCreateAndList(t *testing.T) {
	e := setupEnv(t)
	seed(t, e)
	mgr := NewManager(e.dir, e.diary, e.provider)
	base := time.Date(2024, 3, 1, 10, 30, 0, 0, time.Local)
	mgr.now = func() time.Time { return base }

	first, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if filepath.Base(first) != "diarykeep-20240301-1030.zip" {
		t.Errorf("unexpected name %s", filepath.Base(first))
	}

	second, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if filepath.Base(second) != "diarykeep-20240301-103000.zip" {
		t.Errorf("expected seconds fallback, got %s", filepath.Base(second))
	}

	third, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if filepath.Base(third) != "diarykeep-20240301-103000-1.zip" {
		t.Errorf("expected counter fallback, got %s", filepath.Base(third))
	}

	list, err := mgr.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(list))
	}
	if err := os.WriteFile(filepath.Join(mgr.Dir(), "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if list, _ := mgr.List(); len(list) != 3 {
		t.Errorf("unrelated files should be ignored, got %d", len(list))
	}
}

func TestManagerRotation(t *testing.T) {
	e := setupEnv(t)
	mgr := NewManager(e.dir, e.diary, e.provider)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)

	for i := 0; i < constants.MaxBackups+3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		mgr.now = func() time.Time { return at }
		if _, err := mgr.Create(context.Background()); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	list, err := mgr.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(list) != constants.MaxBackups {
		t.Fatalf("expected %d backups, got %d", constants.MaxBackups, len(list))
	}
	newest := base.Add(time.Duration(constants.MaxBackups+2) * time.Hour)
	if !list[0].Timestamp.Equal(newest) {
		t.Errorf("expected newest first, got %v", list[0].Timestamp)
	}
	if !strings.HasSuffix(list[len(list)-1].Path, "diarykeep-20240301-0300.zip") {
		t.Errorf("expected oldest kept to be 03:00, got %s", list[len(list)-1].Path)
	}
}

func TestManagerRestore(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	if err := e.diary.WriteContent(ctx, "2024-03-01", "original"); err != nil {
		t.Fatal(err)
	}
	mgr := NewManager(e.dir, e.diary, e.provider)
	mgr.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local) }
	backup, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := e.diary.WriteContent(ctx, "2024-03-01", "changed"); err != nil {
		t.Fatal(err)
	}
	mgr.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local) }

	_, safety, err := mgr.Restore(ctx, backup)
	if err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	if e.diary.GetDay("2024-03-01").Content != "original" {
		t.Error("expected restored content")
	}
	if safety == "" || !exists(safety) {
		t.Error("expected a safety backup of the pre-restore state")
	}

	if _, _, err := mgr.Restore(ctx, filepath.Join(e.dir, "missing.zip")); err == nil {
		t.Error("expected error for missing backup")
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"diarykeep-20240301-1030.zip", true},
		{"diarykeep-20240301-103005.zip", true},
		{"diarykeep-20240301-103005-2.zip", true},
		{"diarykeep-latest.zip", false},
		{"other-20240301-1030.db", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := parseName(tt.name); ok != tt.ok {
				t.Errorf("parseName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			}
		})
	}
}
