// Package diary owns the per-day records: it persists the whole snapshot to
// the diary partition, keeps photo and voice bytes in the blob table,
// announces every write on the bus and mirrors days to the native folder
// layout when a host is present.
package diary

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/julianstephens/diarykeep/internal/blob"
	"github.com/julianstephens/diarykeep/internal/bus"
	"github.com/julianstephens/diarykeep/internal/constants"
	"github.com/julianstephens/diarykeep/internal/datekey"
	apperrors "github.com/julianstephens/diarykeep/internal/errors"
	"github.com/julianstephens/diarykeep/internal/logger"
	"github.com/julianstephens/diarykeep/internal/mirror"
	"github.com/julianstephens/diarykeep/internal/models"
	"github.com/julianstephens/diarykeep/internal/storage"
)

// Mirror receives a copy of every write. Implemented by mirror.Mirror.
type Mirror interface {
	WriteDay(ctx context.Context, key string, rec models.DayRecord) error
	WriteFile(ctx context.Context, key, filename, data string) error
	RemoveFile(ctx context.Context, key, filename string) error
	RemoveDay(ctx context.Context, key string) error
}

// MirrorReader is a Mirror that can also be read back.
type MirrorReader interface {
	Days() ([]string, error)
	ReadDay(key string) (models.DayRecord, bool, error)
	ReadFile(key, filename string) ([]byte, error)
}

type Options struct {
	Provider storage.Provider
	Bus      *bus.Bus
	// Mirror is optional.
	Mirror Mirror
	// Now defaults to time.Now.
	Now func() time.Time
}

type Store struct {
	provider storage.Provider
	blobs    *blob.Store
	bus      *bus.Bus
	mirror   Mirror
	now      func() time.Time

	// mu serialises read-modify-write cycles within the process.
	mu        sync.Mutex
	snapMu    sync.RWMutex
	snap      models.Snapshot
	lastStamp int64

	// Mirror jobs run one at a time in submission order.
	mirrorJobs    chan func()
	mirrorPending sync.WaitGroup
	mirrorWorker  conc.WaitGroup
	closed        bool
}

// Open loads the diary partition and moves any inline photo data left by old
// versions into the blob table.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("diary: provider is required")
	}
	if opts.Bus == nil {
		opts.Bus = bus.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{
		provider: opts.Provider,
		blobs:    blob.New(opts.Provider),
		bus:      opts.Bus,
		mirror:   opts.Mirror,
		now:      opts.Now,
		snap:     models.Snapshot{},
	}
	if s.mirror != nil {
		s.mirrorJobs = make(chan func(), 256)
		s.mirrorWorker.Go(s.runMirror)
	}
	s.read()

	if r, ok := s.mirror.(MirrorReader); ok {
		if n := s.recoverFromMirror(ctx, r); n > 0 {
			logger.Info("Recovered days from the native folders", "count", n)
		}
	}
	if n, err := s.MigrateInlinePhotos(ctx); err != nil {
		logger.Warn("Inline photo migration failed", "error", err)
	} else if n > 0 {
		logger.Info("Moved inline photos to blob storage", "count", n)
	}
	return s, nil
}

// recoverFromMirror adds days that exist in the native folders but not in
// the diary partition, with their photo and voice bytes when the files are
// there. Read failures skip the day.
func (s *Store) recoverFromMirror(ctx context.Context, r MirrorReader) int {
	days, err := r.Days()
	if err != nil {
		logger.Warn("Failed to list native folders", "error", err)
		return 0
	}

	snap := s.cached()
	next := snap
	recovered := 0
	for _, key := range days {
		if _, ok := snap[key]; ok {
			continue
		}
		rec, ok, err := r.ReadDay(key)
		if err != nil {
			logger.Warn("Failed to read native folder", "day", key, "error", err)
			continue
		}
		if !ok || rec.IsEmpty() {
			continue
		}

		for i, p := range rec.Photos {
			if _, found, _ := s.blobs.Get(ctx, p.Filename); found {
				continue
			}
			raw, err := r.ReadFile(key, p.Filename)
			if err != nil {
				continue
			}
			data := base64.StdEncoding.EncodeToString(raw)
			if err := s.blobs.PutForDay(ctx, p.Filename, data, key); err != nil {
				rec.Photos[i].Base64 = data
			}
		}
		for i, v := range rec.VoiceNotes {
			if raw, err := r.ReadFile(key, v.Filename); err == nil {
				rec.VoiceNotes[i].Base64 = base64.StdEncoding.EncodeToString(raw)
			}
		}
		next = next.With(key, rec)
		recovered++
	}
	if recovered == 0 {
		return 0
	}
	if err := s.persist(next); err != nil {
		logger.Warn("Failed to store recovered days", "error", err)
		return 0
	}
	return recovered
}

func (s *Store) Bus() *bus.Bus {
	return s.bus
}

func (s *Store) Blobs() *blob.Store {
	return s.blobs
}

// read loads the persisted snapshot. Storage errors keep the last good
// snapshot; a malformed partition yields an empty one.
func (s *Store) read() models.Snapshot {
	raw, ok, err := s.provider.GetPartition(constants.PartitionDiary)
	if err != nil {
		logger.Warn("Failed to read diary data", "error", err)
		return s.cached()
	}

	snap := models.Snapshot{}
	if ok && raw != "" {
		snap, err = Migrate([]byte(raw))
		if err != nil {
			logger.Warn("Diary data is malformed, starting empty", "error", err)
			snap = models.Snapshot{}
		}
	}

	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()
	return snap
}

func (s *Store) cached() models.Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap
}

// GetAll returns the full snapshot as currently persisted. The returned map
// must not be modified.
func (s *Store) GetAll() models.Snapshot {
	return s.read()
}

// GetDay returns a copy of the record for key, or an empty record.
func (s *Store) GetDay(key string) models.DayRecord {
	return s.GetAll()[key].Clone()
}

// HasEntry reports whether key has content or photos.
func (s *Store) HasEntry(key string) bool {
	return s.GetAll()[key].HasEntry()
}

func (s *Store) persist(snap models.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("failed to encode diary data: %w", err)
	}
	if err := s.provider.PutPartition(constants.PartitionDiary, string(data)); err != nil {
		return err
	}
	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()
	return nil
}

// update runs one read-modify-write of a single day and publishes once.
func (s *Store) update(ctx context.Context, key string, fn func(models.DayRecord) (models.DayRecord, error)) (models.DayRecord, error) {
	if !datekey.Valid(key) {
		return models.DayRecord{}, fmt.Errorf("invalid day key %q", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.read()
	rec, err := fn(snap[key].Clone())
	if err != nil {
		return models.DayRecord{}, err
	}
	if err := s.persist(snap.With(key, rec)); err != nil {
		return models.DayRecord{}, err
	}
	s.bus.Publish()
	s.mirrorDay(key, rec)
	return rec, nil
}

func (s *Store) WriteContent(ctx context.Context, key, text string) error {
	_, err := s.update(ctx, key, func(rec models.DayRecord) (models.DayRecord, error) {
		rec.Content = text
		return rec, nil
	})
	return err
}

func (s *Store) WriteMeta(ctx context.Context, key string, patch models.MetaPatch) error {
	_, err := s.update(ctx, key, func(rec models.DayRecord) (models.DayRecord, error) {
		return patch.Apply(rec), nil
	})
	return err
}

// ToggleHabit flips habitID on the day and returns the new state.
func (s *Store) ToggleHabit(ctx context.Context, key, habitID string) (bool, error) {
	var done bool
	_, err := s.update(ctx, key, func(rec models.DayRecord) (models.DayRecord, error) {
		if rec.Habits == nil {
			rec.Habits = make(map[string]bool)
		}
		done = !rec.Habits[habitID]
		rec.Habits[habitID] = done
		return rec, nil
	})
	return done, err
}

// AddTask appends an unchecked task line.
func (s *Store) AddTask(ctx context.Context, key, text string) error {
	_, err := s.update(ctx, key, func(rec models.DayRecord) (models.DayRecord, error) {
		rec.Content = appendLine(rec.Content, TaskLine(text, false))
		return rec, nil
	})
	return err
}

// ToggleTask flips the checkbox of the task on content line lineIndex.
func (s *Store) ToggleTask(ctx context.Context, key string, lineIndex int) error {
	_, err := s.update(ctx, key, func(rec models.DayRecord) (models.DayRecord, error) {
		content, err := toggleTaskLine(rec.Content, lineIndex)
		if err != nil {
			return rec, err
		}
		rec.Content = content
		return rec, nil
	})
	return err
}

// nextStamp returns a unix-nano stamp strictly greater than any before it.
func (s *Store) nextStamp() int64 {
	n := s.now().UnixNano()
	if n <= s.lastStamp {
		n = s.lastStamp + 1
	}
	s.lastStamp = n
	return n
}

// AddPhoto stores a photo for the day and appends its marker to the content.
// raw is base64 and may carry a data URI prefix; padding is optional. The
// change is published before the blob write. If the blob write fails the
// photo is kept inline in the record instead.
func (s *Store) AddPhoto(ctx context.Context, key, raw string) (models.PhotoRef, error) {
	if !datekey.Valid(key) {
		return models.PhotoRef{}, fmt.Errorf("invalid day key %q", key)
	}
	data, err := normalizeMedia(raw)
	if err != nil {
		return models.PhotoRef{}, fmt.Errorf("photo: %w", err)
	}

	s.mu.Lock()
	stamp := s.nextStamp()
	filename := constants.PhotoPrefix + strconv.FormatInt(stamp, 10) + constants.PhotoExt
	ref := models.PhotoRef{
		Filename:  filename,
		Path:      mirror.RelPath(key, filename),
		Timestamp: stamp / int64(time.Millisecond),
	}

	snap := s.read()
	rec := snap[key].Clone()
	rec.Content = appendLine(rec.Content, PhotoMarker(filename))
	rec.Photos = append(rec.Photos, ref)
	if err := s.persist(snap.With(key, rec)); err != nil {
		s.mu.Unlock()
		return models.PhotoRef{}, err
	}
	s.bus.Publish()
	s.mirrorFile(key, filename, data)
	s.mirrorDay(key, rec)
	s.mu.Unlock()

	if err := s.blobs.PutForDay(ctx, filename, data, key); err != nil {
		logger.Warn("Photo blob write failed, keeping inline copy", "filename", filename, "error", err)
		s.keepInline(key, filename, data)
	}
	return ref, nil
}

// keepInline stores data on the photo ref itself after a failed blob write.
func (s *Store) keepInline(key, filename, data string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.read()
	rec := snap[key].Clone()
	for i := range rec.Photos {
		if rec.Photos[i].Filename != filename {
			continue
		}
		rec.Photos[i].Base64 = data
		if err := s.persist(snap.With(key, rec)); err != nil {
			logger.Error("Failed to store inline photo fallback", "filename", filename, "error", err)
		}
		return
	}
}

// DeletePhoto removes the photo ref, its marker lines and its blob. Deleting
// an unknown filename does nothing.
func (s *Store) DeletePhoto(ctx context.Context, key, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.read()
	rec := snap[key].Clone()
	content, hadMarker := removeMarker(rec.Content, PhotoMarker(filename))
	if !hadMarker && !rec.HasPhoto(filename) {
		return nil
	}

	rec.Content = content
	photos := rec.Photos[:0]
	for _, p := range rec.Photos {
		if p.Filename != filename {
			photos = append(photos, p)
		}
	}
	rec.Photos = photos

	if err := s.persist(snap.With(key, rec)); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, filename); err != nil {
		logger.Warn("Failed to delete photo blob", "filename", filename, "error", err)
	}

	s.bus.Publish()
	s.mirrorRemove(key, filename)
	s.mirrorDay(key, rec)
	return nil
}

// AddVoiceNote stores a voice recording. The bytes stay inline in the ref
// and are also written to the blob table.
func (s *Store) AddVoiceNote(ctx context.Context, key, raw string, durationSeconds int) (models.VoiceNoteRef, error) {
	if !datekey.Valid(key) {
		return models.VoiceNoteRef{}, fmt.Errorf("invalid day key %q", key)
	}
	data, err := normalizeMedia(raw)
	if err != nil {
		return models.VoiceNoteRef{}, fmt.Errorf("voice note: %w", err)
	}
	if durationSeconds < 0 {
		durationSeconds = 0
	}

	s.mu.Lock()
	stamp := s.nextStamp()
	ref := models.VoiceNoteRef{
		Filename:  constants.VoicePrefix + strconv.FormatInt(stamp, 10) + constants.VoiceExt,
		Duration:  durationSeconds,
		Timestamp: stamp / int64(time.Millisecond),
		Base64:    data,
	}

	snap := s.read()
	rec := snap[key].Clone()
	rec.VoiceNotes = append(rec.VoiceNotes, ref)
	if err := s.persist(snap.With(key, rec)); err != nil {
		s.mu.Unlock()
		return models.VoiceNoteRef{}, err
	}
	s.bus.Publish()
	s.mirrorFile(key, ref.Filename, data)
	s.mirrorDay(key, rec)
	s.mu.Unlock()

	if err := s.blobs.PutForDay(ctx, ref.Filename, data, key); err != nil {
		logger.Warn("Voice blob write failed", "filename", ref.Filename, "error", err)
	}
	return ref, nil
}

func (s *Store) DeleteVoiceNote(ctx context.Context, key, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.read()
	rec := snap[key].Clone()
	if !rec.HasVoiceNote(filename) {
		return nil
	}
	notes := rec.VoiceNotes[:0]
	for _, v := range rec.VoiceNotes {
		if v.Filename != filename {
			notes = append(notes, v)
		}
	}
	rec.VoiceNotes = notes

	if err := s.persist(snap.With(key, rec)); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, filename); err != nil {
		logger.Warn("Failed to delete voice blob", "filename", filename, "error", err)
	}

	s.bus.Publish()
	s.mirrorRemove(key, filename)
	s.mirrorDay(key, rec)
	return nil
}

// DeleteDay removes the whole day with its photo and voice blobs.
func (s *Store) DeleteDay(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.read()
	rec, ok := snap[key]
	if !ok {
		return fmt.Errorf("day %s: %w", key, apperrors.ErrNotFound)
	}
	if err := s.persist(snap.Without(key)); err != nil {
		return err
	}
	for _, p := range rec.Photos {
		if err := s.blobs.Delete(ctx, p.Filename); err != nil {
			logger.Warn("Failed to delete photo blob", "filename", p.Filename, "error", err)
		}
	}
	for _, v := range rec.VoiceNotes {
		if err := s.blobs.Delete(ctx, v.Filename); err != nil {
			logger.Warn("Failed to delete voice blob", "filename", v.Filename, "error", err)
		}
	}

	s.bus.Publish()
	s.enqueueMirror(func(m Mirror) {
		if err := m.RemoveDay(context.Background(), key); err != nil {
			logger.Warn("Mirror remove failed", "day", key, "error", err)
		}
	})
	return nil
}

// Import replaces each day in days whole and keeps every other stored day.
// Inline photo and voice data in the records is moved to the blob table. The
// diary partition, the blobs and whatever extra writes all commit in one
// transaction: on error nothing is changed.
func (s *Store) Import(ctx context.Context, days models.Snapshot, extra func(storage.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.read()
	next := snap.Merge(nil)
	var blobs []storage.Blob
	var stale []string
	for key, rec := range days {
		if !datekey.Valid(key) {
			return fmt.Errorf("invalid day key %q", key)
		}
		rec = rec.Clone()
		keep := make(map[string]bool)
		for i, p := range rec.Photos {
			keep[p.Filename] = true
			if p.Base64 != "" {
				blobs = append(blobs, storage.Blob{Key: p.Filename, Data: p.Base64, DateKey: key})
				rec.Photos[i].Base64 = ""
			}
		}
		for _, v := range rec.VoiceNotes {
			keep[v.Filename] = true
			if v.Base64 != "" {
				blobs = append(blobs, storage.Blob{Key: v.Filename, Data: v.Base64, DateKey: key})
			}
		}
		old := snap[key]
		for _, p := range old.Photos {
			if !keep[p.Filename] {
				stale = append(stale, p.Filename)
			}
		}
		for _, v := range old.VoiceNotes {
			if !keep[v.Filename] {
				stale = append(stale, v.Filename)
			}
		}
		if rec.IsEmpty() {
			delete(next, key)
		} else {
			next[key] = rec
		}
	}

	data, err := encodeSnapshot(next)
	if err != nil {
		return fmt.Errorf("failed to encode diary data: %w", err)
	}
	err = s.provider.Apply(ctx, func(tx storage.Tx) error {
		if err := tx.PutPartition(constants.PartitionDiary, string(data)); err != nil {
			return err
		}
		for _, key := range stale {
			if err := tx.DeleteBlob(key); err != nil {
				return err
			}
		}
		for _, b := range blobs {
			if err := tx.PutBlob(b); err != nil {
				return err
			}
		}
		if extra != nil {
			return extra(tx)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.snapMu.Lock()
	s.snap = next
	s.snapMu.Unlock()
	s.bus.Publish()

	for key := range days {
		rec, ok := next[key]
		if !ok {
			continue
		}
		s.mirrorDay(key, rec)
		for _, p := range days[key].Photos {
			if p.Base64 != "" {
				s.mirrorFile(key, p.Filename, p.Base64)
			}
		}
		for _, v := range rec.VoiceNotes {
			if v.Base64 != "" {
				s.mirrorFile(key, v.Filename, v.Base64)
			}
		}
	}
	return nil
}

// Reload re-reads storage after an out-of-band write (an import, another
// process) and tells every subscriber.
func (s *Store) Reload() models.Snapshot {
	s.mu.Lock()
	snap := s.read()
	s.mu.Unlock()
	s.bus.Publish()
	return snap
}

// MigrateInlinePhotos moves photo data stored inside records into the blob
// table and returns how many photos were moved.
func (s *Store) MigrateInlinePhotos(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.read()
	moved := 0
	next := snap
	for _, key := range snap.Keys() {
		rec := snap[key]
		changed := false
		for i, p := range rec.Photos {
			if p.Base64 == "" {
				continue
			}
			if err := s.blobs.PutForDay(ctx, p.Filename, p.Base64, key); err != nil {
				return moved, fmt.Errorf("failed to move %s: %w", p.Filename, err)
			}
			if !changed {
				rec = rec.Clone()
				changed = true
			}
			rec.Photos[i].Base64 = ""
			moved++
		}
		if changed {
			next = next.With(key, rec)
		}
	}
	if moved == 0 {
		return 0, nil
	}
	if err := s.persist(next); err != nil {
		return 0, err
	}
	return moved, nil
}

// PhotoData returns the base64 bytes for a photo, falling back to the copy
// kept inline in the ref.
func (s *Store) PhotoData(ctx context.Context, ref models.PhotoRef) (string, bool) {
	data, ok, err := s.blobs.Get(ctx, ref.Filename)
	if err != nil {
		logger.Warn("Failed to read photo blob", "filename", ref.Filename, "error", err)
	}
	if ok {
		return data, true
	}
	if ref.Base64 != "" {
		return ref.Base64, true
	}
	return "", false
}

// VoiceData returns the base64 bytes for a voice note.
func (s *Store) VoiceData(ctx context.Context, ref models.VoiceNoteRef) (string, bool) {
	if ref.Base64 != "" {
		return ref.Base64, true
	}
	data, ok, err := s.blobs.Get(ctx, ref.Filename)
	if err != nil {
		logger.Warn("Failed to read voice blob", "filename", ref.Filename, "error", err)
	}
	return data, ok
}

// GalleryPhoto is a photo with the day it belongs to.
type GalleryPhoto struct {
	DateKey string
	models.PhotoRef
}

type GalleryVoiceNote struct {
	DateKey string
	models.VoiceNoteRef
}

// AllPhotos flattens every day's photos, newest first.
func (s *Store) AllPhotos() []GalleryPhoto {
	var out []GalleryPhoto
	for key, rec := range s.GetAll() {
		for _, p := range rec.Photos {
			out = append(out, GalleryPhoto{DateKey: key, PhotoRef: p})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].Filename > out[j].Filename
	})
	return out
}

// AllVoiceNotes flattens every day's voice notes, newest first.
func (s *Store) AllVoiceNotes() []GalleryVoiceNote {
	var out []GalleryVoiceNote
	for key, rec := range s.GetAll() {
		for _, v := range rec.VoiceNotes {
			out = append(out, GalleryVoiceNote{DateKey: key, VoiceNoteRef: v})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].Filename > out[j].Filename
	})
	return out
}

// Wait blocks until queued mirror writes finish.
func (s *Store) Wait() {
	s.mirrorPending.Wait()
}

// Close drains mirror writes and stops the mirror worker. The provider is
// owned by the caller.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.mirrorJobs != nil {
		close(s.mirrorJobs)
	}
	s.mu.Unlock()

	s.mirrorWorker.Wait()
	return nil
}

func (s *Store) runMirror() {
	for job := range s.mirrorJobs {
		job()
		s.mirrorPending.Done()
	}
}

// enqueueMirror must be called with s.mu held.
func (s *Store) enqueueMirror(fn func(Mirror)) {
	if s.mirror == nil || s.closed {
		return
	}
	m := s.mirror
	s.mirrorPending.Add(1)
	s.mirrorJobs <- func() { fn(m) }
}

// mirrorDay writes the day, or removes its folder once the record is empty.
func (s *Store) mirrorDay(key string, rec models.DayRecord) {
	if rec.IsEmpty() {
		s.enqueueMirror(func(m Mirror) {
			if err := m.RemoveDay(context.Background(), key); err != nil {
				logger.Warn("Mirror remove failed", "day", key, "error", err)
			}
		})
		return
	}
	rec = rec.Clone()
	s.enqueueMirror(func(m Mirror) {
		if err := m.WriteDay(context.Background(), key, rec); err != nil {
			logger.Warn("Mirror write failed", "day", key, "error", err)
		}
	})
}

func (s *Store) mirrorFile(key, filename, data string) {
	s.enqueueMirror(func(m Mirror) {
		if err := m.WriteFile(context.Background(), key, filename, data); err != nil {
			logger.Warn("Mirror file write failed", "day", key, "filename", filename, "error", err)
		}
	})
}

func (s *Store) mirrorRemove(key, filename string) {
	s.enqueueMirror(func(m Mirror) {
		if err := m.RemoveFile(context.Background(), key, filename); err != nil {
			logger.Warn("Mirror remove failed", "day", key, "filename", filename, "error", err)
		}
	})
}
