// Package bus is the in-process change signal. A signal carries no payload:
// receivers re-read whatever state they care about.
package bus

import (
	"sync"

	"github.com/julianstephens/diarykeep/internal/logger"
)

type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan struct{}
	next   int
	closed bool
}

func New() *Bus {
	return &Bus{subs: make(map[int]chan struct{})}
}

// Subscribe returns a channel that receives a value after every Publish.
// The channel has capacity 1, so signals sent while the receiver is busy
// coalesce into one. The returned func unsubscribes and closes the channel.
func (b *Bus) Subscribe() (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan struct{}, 1)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Publish signals every subscriber without blocking.
func (b *Bus) Publish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Trigger publishes on behalf of an external event such as a resume or a
// write by another process.
func (b *Bus) Trigger(reason string) {
	logger.Debug("Change signal", "reason", reason)
	b.Publish()
}

// Close closes every subscriber channel. Later subscribers get a closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
