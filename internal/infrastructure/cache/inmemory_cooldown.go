package cache

import (
	"context"
	"sync"
	"time"
)

// InMemoryCooldown implements Cooldown in process memory.
// A background goroutine prunes expired keys.
type InMemoryCooldown struct {
	mu        sync.Mutex
	window    time.Duration
	entries   map[string]time.Time // key -> window end
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryCooldown creates a cooldown and starts its pruning loop
func NewInMemoryCooldown(window, pruneInterval time.Duration) *InMemoryCooldown {
	c := &InMemoryCooldown{
		window:   window,
		entries:  make(map[string]time.Time),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	if pruneInterval <= 0 {
		pruneInterval = 5 * time.Minute
	}

	c.wg.Add(1)
	go c.pruneLoop(pruneInterval)

	return c
}

// Allow returns true if key has not been allowed within the window
func (c *InMemoryCooldown) Allow(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if until, ok := c.entries[key]; ok && now.Before(until) {
		return false, nil
	}
	c.entries[key] = now.Add(c.window)
	return true, nil
}

// Close stops the pruning goroutine. Safe to call multiple times.
func (c *InMemoryCooldown) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryCooldown) pruneLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.Prune()
		}
	}
}

// Prune removes keys whose window has ended and returns how many were removed
func (c *InMemoryCooldown) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, until := range c.entries {
		if !now.Before(until) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of tracked keys
func (c *InMemoryCooldown) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

var _ Cooldown = (*InMemoryCooldown)(nil)
