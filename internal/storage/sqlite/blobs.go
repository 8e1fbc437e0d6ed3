package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/diarykeep/internal/storage"
)

const upsertBlobSQL = `
	INSERT INTO blobs (key, data, date_key, created_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET data = excluded.data, date_key = excluded.date_key
`

func (s *Store) PutBlob(ctx context.Context, b storage.Blob) error {
	if _, err := s.db.ExecContext(ctx, upsertBlobSQL, b.Key, b.Data, b.DateKey, now()); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", b.Key, err)
	}
	return nil
}

func (s *Store) GetBlob(ctx context.Context, key string) (storage.Blob, bool, error) {
	b := storage.Blob{Key: key}
	err := s.db.QueryRowContext(ctx, "SELECT data, date_key FROM blobs WHERE key = ?", key).Scan(&b.Data, &b.DateKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Blob{}, false, nil
		}
		return storage.Blob{}, false, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return b, true, nil
}

func (s *Store) DeleteBlob(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM blobs WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

func (s *Store) ListBlobs(ctx context.Context) ([]storage.Blob, error) {
	return s.queryBlobs(ctx, "SELECT key, data, date_key FROM blobs ORDER BY key")
}

func (s *Store) ListBlobsByDay(ctx context.Context, dateKey string) ([]storage.Blob, error) {
	return s.queryBlobs(ctx, "SELECT key, data, date_key FROM blobs WHERE date_key = ? ORDER BY key", dateKey)
}

func (s *Store) queryBlobs(ctx context.Context, query string, args ...any) ([]storage.Blob, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}
	defer rows.Close()

	var blobs []storage.Blob
	for rows.Next() {
		var b storage.Blob
		if err := rows.Scan(&b.Key, &b.Data, &b.DateKey); err != nil {
			return nil, err
		}
		blobs = append(blobs, b)
	}
	return blobs, rows.Err()
}
