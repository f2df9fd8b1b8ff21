package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCooldown_Allow(t *testing.T) {
	cd := NewInMemoryCooldown(time.Hour, time.Hour)
	defer cd.Close()

	ctx := context.Background()
	key := CooldownKey("store-1", "variant-1", "low_stock")

	t.Run("first call is allowed", func(t *testing.T) {
		ok, err := cd.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("repeat within window is suppressed", func(t *testing.T) {
		ok, err := cd.Allow(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("other kind is independent", func(t *testing.T) {
		ok, err := cd.Allow(ctx, CooldownKey("store-1", "variant-1", "out_of_stock"))
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestInMemoryCooldown_WindowExpiry(t *testing.T) {
	cd := NewInMemoryCooldown(time.Minute, time.Hour)
	defer cd.Close()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cd.now = func() time.Time { return now }
	ctx := context.Background()

	ok, _ := cd.Allow(ctx, "k")
	assert.True(t, ok)

	now = now.Add(59 * time.Second)
	ok, _ = cd.Allow(ctx, "k")
	assert.False(t, ok)

	now = now.Add(time.Second)
	ok, _ = cd.Allow(ctx, "k")
	assert.True(t, ok)
}

func TestInMemoryCooldown_Prune(t *testing.T) {
	cd := NewInMemoryCooldown(time.Minute, time.Hour)
	defer cd.Close()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cd.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = cd.Allow(ctx, "a")
	now = now.Add(30 * time.Second)
	_, _ = cd.Allow(ctx, "b")
	assert.Equal(t, 2, cd.Size())

	now = now.Add(45 * time.Second)
	assert.Equal(t, 1, cd.Prune())
	assert.Equal(t, 1, cd.Size())
}

func TestInMemoryCooldown_Concurrent(t *testing.T) {
	cd := NewInMemoryCooldown(time.Hour, time.Hour)
	defer cd.Close()

	var allowed int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := cd.Allow(context.Background(), "same"); ok {
				atomic.AddInt32(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), allowed)
}

func TestInMemoryCooldown_CloseIdempotent(t *testing.T) {
	cd := NewInMemoryCooldown(time.Second, 10*time.Millisecond)
	require.NoError(t, cd.Close())
	require.NoError(t, cd.Close())
}
