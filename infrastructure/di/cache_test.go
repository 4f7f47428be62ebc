package di

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCache_SetGetDelete(t *testing.T) {
	cache := NewInMemoryCache()
	defer cache.Stop()
	ctx := context.Background()

	_, ok := cache.Get(ctx, "missing")
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "pool", []string{"ref-1"}, 300))
	value, ok := cache.Get(ctx, "pool")
	require.True(t, ok)
	assert.Equal(t, []string{"ref-1"}, value)

	require.NoError(t, cache.Delete(ctx, "pool"))
	_, ok = cache.Get(ctx, "pool")
	assert.False(t, ok)
}

func TestInMemoryCache_ExpiredEntryReadsAsMiss(t *testing.T) {
	cache := NewInMemoryCache()
	defer cache.Stop()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "pool", "stale", 0))
	time.Sleep(time.Millisecond)

	_, ok := cache.Get(ctx, "pool")
	assert.False(t, ok)

	// the sweep reclaims it without waiting for the ticker
	cache.dropExpired()
	cache.mu.RLock()
	_, present := cache.items["pool"]
	cache.mu.RUnlock()
	assert.False(t, present)
}

func TestInMemoryCache_StopTerminatesSweep(t *testing.T) {
	cache := NewInMemoryCache()

	done := make(chan struct{})
	go func() {
		cache.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return; sweep goroutine still running")
	}
}
