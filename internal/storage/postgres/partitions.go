package postgres

import (
	"database/sql"
	"errors"
	"fmt"
)

const upsertPartitionSQL = `
	INSERT INTO partitions (key, value, updated_at) VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
`

func (s *Store) GetPartition(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM partitions WHERE key = $1", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read partition %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) PutPartition(key, value string) error {
	if _, err := s.db.Exec(upsertPartitionSQL, key, value); err != nil {
		return fmt.Errorf("failed to write partition %s: %w", key, err)
	}
	return nil
}

func (s *Store) DeletePartition(key string) error {
	if _, err := s.db.Exec("DELETE FROM partitions WHERE key = $1", key); err != nil {
		return fmt.Errorf("failed to delete partition %s: %w", key, err)
	}
	return nil
}
