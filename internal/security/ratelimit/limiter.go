package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Counter is the Redis subset the limiter needs.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Limiter is a fixed-window request limiter keyed by user id. When a Redis
// counter is configured the window is shared across instances; without one
// (or when Redis errors) it falls back to an in-memory sliding window, so a
// Redis outage degrades to per-instance limiting rather than rejecting
// traffic.
type Limiter struct {
	counter Counter
	maxReqs int
	window  time.Duration
	memory  *memoryLimiter
}

func NewLimiter(counter Counter, maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		counter: counter,
		maxReqs: maxRequests,
		window:  window,
		memory:  newMemoryLimiter(maxRequests, window),
	}
}

// Allow reports whether the caller is within budget. Anonymous requests
// (empty key) are not limited; the public endpoints they reach are cheap.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if key == "" {
		return true
	}

	if l.counter != nil {
		windowStart := time.Now().Unix() / int64(l.window.Seconds())
		redisKey := fmt.Sprintf("ratelimit:%s:%d", key, windowStart)

		count, err := l.counter.Incr(ctx, redisKey)
		if err == nil {
			if count == 1 {
				_ = l.counter.Expire(ctx, redisKey, l.window)
			}
			return count <= int64(l.maxReqs)
		}
	}

	return l.memory.allow(key)
}

// Stop releases the in-memory cleanup ticker
func (l *Limiter) Stop() {
	l.memory.stop()
}

type memoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	maxReqs int
	window  time.Duration
	cleanup *time.Ticker
}

type bucket struct {
	requests []time.Time
	lastSeen time.Time
}

func newMemoryLimiter(maxRequests int, window time.Duration) *memoryLimiter {
	limiter := &memoryLimiter{
		buckets: make(map[string]*bucket),
		maxReqs: maxRequests,
		window:  window,
		cleanup: time.NewTicker(5 * time.Minute),
	}
	go limiter.cleanupOldBuckets()
	return limiter
}

func (l *memoryLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, exists := l.buckets[key]
	if !exists {
		b = &bucket{}
		l.buckets[key] = b
	}

	cutoff := now.Add(-l.window)
	var reqs []time.Time
	for _, t := range b.requests {
		if t.After(cutoff) {
			reqs = append(reqs, t)
		}
	}
	b.requests = reqs
	b.lastSeen = now

	if len(b.requests) >= l.maxReqs {
		return false
	}

	b.requests = append(b.requests, now)
	return true
}

func (l *memoryLimiter) cleanupOldBuckets() {
	for range l.cleanup.C {
		l.mu.Lock()
		staleThreshold := time.Now().Add(-15 * time.Minute)
		for key, b := range l.buckets {
			if b.lastSeen.Before(staleThreshold) {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}

func (l *memoryLimiter) stop() {
	l.cleanup.Stop()
}
