// Package blob stores large base64 payloads (photos, voice notes) by filename.
package blob

import (
	"context"
	"fmt"
	"sort"

	"github.com/julianstephens/diarykeep/internal/storage"
)

// Entry is one stored blob.
type Entry struct {
	Key     string
	Base64  string
	DateKey string
}

type Store struct {
	provider storage.Provider
}

func New(p storage.Provider) *Store {
	return &Store{provider: p}
}

// Put stores data under key exactly as given. An existing key is replaced.
func (s *Store) Put(ctx context.Context, key, data string) error {
	return s.PutForDay(ctx, key, data, "")
}

// PutForDay is Put with the owning day recorded for gallery queries.
func (s *Store) PutForDay(ctx context.Context, key, data, dateKey string) error {
	if key == "" {
		return fmt.Errorf("blob key cannot be empty")
	}
	return s.provider.PutBlob(ctx, storage.Blob{Key: key, Data: data, DateKey: dateKey})
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	b, ok, err := s.provider.GetBlob(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	return b.Data, true, nil
}

// Delete removes key. Deleting an absent key succeeds.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.provider.DeleteBlob(ctx, key)
}

// GetAll returns every blob ordered by key.
func (s *Store) GetAll(ctx context.Context) ([]Entry, error) {
	blobs, err := s.provider.ListBlobs(ctx)
	if err != nil {
		return nil, err
	}
	return toEntries(blobs), nil
}

func (s *Store) ListByDay(ctx context.Context, dateKey string) ([]Entry, error) {
	blobs, err := s.provider.ListBlobsByDay(ctx, dateKey)
	if err != nil {
		return nil, err
	}
	return toEntries(blobs), nil
}

func toEntries(blobs []storage.Blob) []Entry {
	out := make([]Entry, 0, len(blobs))
	for _, b := range blobs {
		out = append(out, Entry{Key: b.Key, Base64: b.Data, DateKey: b.DateKey})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
