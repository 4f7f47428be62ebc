package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketLimiter_AllowsWithinBudget(t *testing.T) {
	limiter := NewTokenBucketLimiter(2, time.Hour)
	defer limiter.Stop()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "client-1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "client-1")
	require.NoError(t, err)
	assert.False(t, allowed, "budget exhausted")

	// other keys have their own bucket
	allowed, err = limiter.Allow(ctx, "client-2")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestTokenBucketLimiter_RefillsOverTime(t *testing.T) {
	limiter := NewTokenBucketLimiter(1, 10*time.Millisecond)
	defer limiter.Stop()

	ctx := context.Background()
	allowed, err := limiter.Allow(ctx, "client-1")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, _ = limiter.Allow(ctx, "client-1")
	require.False(t, allowed)

	time.Sleep(15 * time.Millisecond)
	allowed, err = limiter.Allow(ctx, "client-1")
	require.NoError(t, err)
	assert.True(t, allowed, "one token refilled")
}

func TestTokenBucketLimiter_StopTerminatesCleanup(t *testing.T) {
	limiter := NewTokenBucketLimiter(1, time.Minute)

	done := make(chan struct{})
	go func() {
		limiter.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return; cleanup goroutine still running")
	}
}

func TestRateLimiters_StopStopsBoth(t *testing.T) {
	limiters := NewRateLimiters(100, 200)

	done := make(chan struct{})
	go func() {
		limiters.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}
