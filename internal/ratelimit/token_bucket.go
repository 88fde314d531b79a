package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket is an in-process per-key limiter. The deployment is a single
// node sitting next to the access point, so there is no shared state to
// coordinate; buckets live in memory and refill continuously.
type TokenBucket struct {
	mu      sync.Mutex
	rate    float64
	burst   float64
	buckets map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket allows rate requests per second with bursts up to burst.
func NewTokenBucket(rate float64, burst int) *TokenBucket {
	return &TokenBucket{
		rate:    rate,
		burst:   float64(burst),
		buckets: make(map[string]*bucket),
	}
}

func (t *TokenBucket) Allow(key string) bool {
	return t.allowAt(key, time.Now())
}

func (t *TokenBucket) allowAt(key string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{tokens: t.burst, last: now}
		t.buckets[key] = b
	} else {
		delta := now.Sub(b.last).Seconds()
		if delta > 0 {
			b.tokens += delta * t.rate
			if b.tokens > t.burst {
				b.tokens = t.burst
			}
			b.last = now
		}
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Prune drops buckets idle long enough to have fully refilled. Callers run
// it occasionally to keep the map from growing with one-shot client IPs.
func (t *TokenBucket) Prune(olderThan time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	for key, b := range t.buckets {
		if b.last.Before(cutoff) {
			delete(t.buckets, key)
		}
	}
}
