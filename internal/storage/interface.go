package storage

import (
	"context"
	"errors"
)

// ErrNotInitialized is returned by Load when the backing store has not been created.
var ErrNotInitialized = errors.New("storage not initialized, run 'diarykeep init' first")

// Blob is one large binary object, stored as the base64 text it was given.
type Blob struct {
	Key     string
	Data    string
	DateKey string
}

// Tx is the write surface available inside Provider.Apply. Everything written
// through a Tx commits or rolls back together.
type Tx interface {
	PutPartition(key, value string) error
	DeletePartition(key string) error
	PutBlob(b Blob) error
	DeleteBlob(key string) error
}

// Provider is a durable backend holding small-value partitions (whole JSON
// documents keyed by name) and a blob table.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Partitions. A missing partition returns ok == false and no error.
	GetPartition(key string) (value string, ok bool, err error)
	PutPartition(key, value string) error
	DeletePartition(key string) error

	// Blobs. DeleteBlob of an absent key is not an error.
	PutBlob(ctx context.Context, b Blob) error
	GetBlob(ctx context.Context, key string) (Blob, bool, error)
	DeleteBlob(ctx context.Context, key string) error
	ListBlobs(ctx context.Context) ([]Blob, error)
	ListBlobsByDay(ctx context.Context, dateKey string) ([]Blob, error)

	// Apply runs fn inside a single transaction.
	Apply(ctx context.Context, fn func(Tx) error) error

	// Utils
	GetConfigPath() string
	// WatchPath is the local file whose changes mean another process wrote,
	// or "" when the backend is remote.
	WatchPath() string
}
