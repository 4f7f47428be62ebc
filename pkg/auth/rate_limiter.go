package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter provides rate limiting functionality
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// TokenBucketLimiter implements token bucket rate limiting
type TokenBucketLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	maxTokens  int
	refillRate time.Duration

	stopChan    chan struct{}
	stoppedChan chan struct{}
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// NewTokenBucketLimiter creates a new token bucket rate limiter
func NewTokenBucketLimiter(maxTokens int, refillRate time.Duration) *TokenBucketLimiter {
	limiter := &TokenBucketLimiter{
		buckets:     make(map[string]*bucket),
		maxTokens:   maxTokens,
		refillRate:  refillRate,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

// Stop terminates the cleanup goroutine
func (l *TokenBucketLimiter) Stop() {
	close(l.stopChan)
	<-l.stoppedChan
}

// Allow checks if a request is allowed
func (l *TokenBucketLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, exists := l.buckets[key]
	if !exists {
		b = &bucket{tokens: l.maxTokens, lastRefill: time.Now()}
		l.buckets[key] = b
	}

	now := time.Now()
	tokensToAdd := int(now.Sub(b.lastRefill) / l.refillRate)
	if tokensToAdd > 0 {
		b.tokens += tokensToAdd
		if b.tokens > l.maxTokens {
			b.tokens = l.maxTokens
		}
		b.lastRefill = now
	}

	if b.tokens <= 0 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

// cleanup periodically drops idle buckets until Stop is called
func (l *TokenBucketLimiter) cleanup() {
	defer close(l.stoppedChan)

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.dropIdleBuckets()
		}
	}
}

func (l *TokenBucketLimiter) dropIdleBuckets() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if time.Since(b.lastRefill) > 10*time.Minute {
			delete(l.buckets, key)
		}
	}
}

// NewIPRateLimiter creates a per-IP limiter allowing n requests per minute
func NewIPRateLimiter(perMinute int) *TokenBucketLimiter {
	return NewTokenBucketLimiter(perMinute, time.Minute/time.Duration(perMinute))
}

// NewUserRateLimiter creates a per-user limiter allowing n requests per minute
func NewUserRateLimiter(perMinute int) *TokenBucketLimiter {
	return NewTokenBucketLimiter(perMinute, time.Minute/time.Duration(perMinute))
}

// RateLimiters bundles the per-IP and per-user limiters guarding the
// API so one owner can manage their lifecycle.
type RateLimiters struct {
	IP   *TokenBucketLimiter
	User *TokenBucketLimiter
}

// NewRateLimiters creates both API limiters
func NewRateLimiters(ipPerMinute, userPerMinute int) *RateLimiters {
	return &RateLimiters{
		IP:   NewIPRateLimiter(ipPerMinute),
		User: NewUserRateLimiter(userPerMinute),
	}
}

// Stop terminates both cleanup goroutines
func (l *RateLimiters) Stop() {
	l.IP.Stop()
	l.User.Stop()
}
