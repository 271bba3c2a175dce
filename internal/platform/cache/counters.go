// Package cache holds process-local counters that lapse at a fixed instant.
package cache

import (
	"sync"
	"time"
)

type counter struct {
	n      int64
	lapses time.Time
}

// Counters maps keys to int64 counts. Each count lapses at the instant it was
// created with; a zero instant never lapses.
type Counters struct {
	mu    sync.Mutex
	byKey map[string]counter
	clock func() time.Time
}

func NewCounters() *Counters {
	return &Counters{byKey: make(map[string]counter), clock: time.Now}
}

// WithClock swaps the time source.
func (c *Counters) WithClock(clock func() time.Time) *Counters {
	if clock != nil {
		c.clock = clock
	}
	return c
}

// Value returns the live count at key, or zero.
func (c *Counters) Value(key string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live(key).n
}

// Add adds delta and returns the new count. A fresh count lapses at lapses;
// a live one keeps its original instant.
func (c *Counters) Add(key string, delta int64, lapses time.Time) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.byKey[key]
	if !ok || c.lapsed(item) {
		item = counter{lapses: lapses}
	}
	item.n += delta
	c.byKey[key] = item
	return item.n
}

// Put overwrites the count and its lapse instant.
func (c *Counters) Put(key string, n int64, lapses time.Time) {
	c.mu.Lock()
	c.byKey[key] = counter{n: n, lapses: lapses}
	c.mu.Unlock()
}

// Sweep drops lapsed counts and reports how many went.
func (c *Counters) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	for key, item := range c.byKey {
		if c.lapsed(item) {
			delete(c.byKey, key)
			dropped++
		}
	}
	return dropped
}

func (c *Counters) live(key string) counter {
	item, ok := c.byKey[key]
	if !ok {
		return counter{}
	}
	if c.lapsed(item) {
		delete(c.byKey, key)
		return counter{}
	}
	return item
}

func (c *Counters) lapsed(item counter) bool {
	return !item.lapses.IsZero() && !item.lapses.After(c.clock())
}
