package diary

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"sync"
)

// ErrCaptureClosed is returned when a capture is used after Commit or Cancel.
var ErrCaptureClosed = errors.New("capture already finished")

type captureKind int

const (
	capturePhoto captureKind = iota
	captureVoice
)

// Capture buffers the bytes of a photo or recording in progress. Nothing is
// written until Commit; Cancel drops the buffer.
type Capture struct {
	store    *Store
	key      string
	kind     captureKind
	duration int

	mu   sync.Mutex
	buf  bytes.Buffer
	done bool
}

func (s *Store) BeginPhoto(key string) *Capture {
	return &Capture{store: s, key: key, kind: capturePhoto}
}

func (s *Store) BeginVoiceNote(key string) *Capture {
	return &Capture{store: s, key: key, kind: captureVoice}
}

// Write appends raw (not base64) bytes.
func (c *Capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return 0, ErrCaptureClosed
	}
	return c.buf.Write(p)
}

// SetDuration records the length of a voice capture in seconds.
func (c *Capture) SetDuration(seconds int) {
	c.mu.Lock()
	c.duration = seconds
	c.mu.Unlock()
}

func (c *Capture) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Len()
}

// Cancel discards the buffer. Safe to call more than once.
func (c *Capture) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done = true
	c.buf = bytes.Buffer{}
}

// Commit stores the buffered bytes and returns the new filename.
func (c *Capture) Commit(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return "", ErrCaptureClosed
	}
	c.done = true
	data := base64.StdEncoding.EncodeToString(c.buf.Bytes())
	duration := c.duration
	c.buf = bytes.Buffer{}
	c.mu.Unlock()

	if c.kind == captureVoice {
		ref, err := c.store.AddVoiceNote(ctx, c.key, data, duration)
		return ref.Filename, err
	}
	ref, err := c.store.AddPhoto(ctx, c.key, data)
	return ref.Filename, err
}
