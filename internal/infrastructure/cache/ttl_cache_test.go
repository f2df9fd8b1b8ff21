package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCache_GetSet(t *testing.T) {
	c := NewTTLCache[string, int](50*time.Millisecond, 0)

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	time.Sleep(80 * time.Millisecond)
	_, ok = c.Get("a")
	assert.False(t, ok, "entry is gone after its TTL")

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestTTLCache_ExpiredEntriesArePurged(t *testing.T) {
	c := NewTTLCache[string, int](30*time.Millisecond, 10)
	c.Set("a", 1)
	c.Set("b", 2)

	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestTTLCache_EvictsLeastRecentlyUsedWhenFull(t *testing.T) {
	c := NewTTLCache[string, int](time.Hour, 2)

	c.Set("first", 1)
	c.Set("second", 2)
	c.Set("third", 3)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("first")
	assert.False(t, ok)
	_, ok = c.Get("third")
	assert.True(t, ok)
}

func TestTTLCache_RecentReadSurvivesEviction(t *testing.T) {
	c := NewTTLCache[string, int](time.Hour, 2)

	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestTTLCache_OverwriteReplacesValue(t *testing.T) {
	c := NewTTLCache[string, int](time.Hour, 2)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10)
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 10, v)
}

func TestTTLCache_Delete(t *testing.T) {
	c := NewTTLCache[string, int](time.Hour, 0)
	c.Set("a", 1)
	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
}
