package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBurstThenRefill(t *testing.T) {
	tb := NewTokenBucket(1, 3)
	now := time.Now()

	for i := 0; i < 3; i++ {
		assert.True(t, tb.allowAt("a", now), "request %d within burst", i)
	}
	assert.False(t, tb.allowAt("a", now))

	// One token refills after a second.
	assert.True(t, tb.allowAt("a", now.Add(time.Second)))
	assert.False(t, tb.allowAt("a", now.Add(time.Second)))
}

func TestKeysAreIndependent(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	now := time.Now()

	assert.True(t, tb.allowAt("a", now))
	assert.False(t, tb.allowAt("a", now))
	assert.True(t, tb.allowAt("b", now))
}

func TestPrune(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	old := time.Now().Add(-time.Hour)
	tb.allowAt("stale", old)
	tb.Allow("fresh")

	tb.Prune(30 * time.Minute)

	tb.mu.Lock()
	defer tb.mu.Unlock()
	assert.NotContains(t, tb.buckets, "stale")
	assert.Contains(t, tb.buckets, "fresh")
}
