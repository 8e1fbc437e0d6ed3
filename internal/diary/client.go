package diary

import (
	"sync"

	"github.com/julianstephens/diarykeep/internal/models"
)

// Client is one consumer's view of the store. It re-reads the snapshot on
// every change signal and forwards the latest one on Updates.
type Client struct {
	*Store

	mu      sync.RWMutex
	snap    models.Snapshot
	updates chan models.Snapshot
	unsub   func()
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewClient subscribes a new consumer. Call Close to unsubscribe.
func (s *Store) NewClient() *Client {
	ch, unsub := s.bus.Subscribe()
	c := &Client{
		Store:   s,
		snap:    s.GetAll(),
		updates: make(chan models.Snapshot, 1),
		unsub:   unsub,
		done:    make(chan struct{}),
	}
	c.wg.Add(1)
	go c.listen(ch)
	return c
}

func (c *Client) listen(ch <-chan struct{}) {
	defer c.wg.Done()
	defer close(c.updates)
	for {
		select {
		case <-c.done:
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			snap := c.Store.GetAll()
			c.mu.Lock()
			c.snap = snap
			c.mu.Unlock()

			// Keep only the newest snapshot if the consumer is behind.
			select {
			case <-c.updates:
			default:
			}
			c.updates <- snap
		}
	}
}

// Snapshot returns the last snapshot this client observed.
func (c *Client) Snapshot() models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Day returns the observed record for key.
func (c *Client) Day(key string) models.DayRecord {
	return c.Snapshot()[key].Clone()
}

// Updates delivers a snapshot after each change signal. It is closed by Close.
func (c *Client) Updates() <-chan models.Snapshot {
	return c.updates
}

// Close unsubscribes the client. The underlying store stays open.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		c.unsub()
		c.wg.Wait()
	})
}
