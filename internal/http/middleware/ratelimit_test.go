package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterEvictsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	if !rl.Allow("10.0.0.1") {
		t.Fatalf("expected first request to pass")
	}

	// Age the bucket past its TTL and make the next Allow call sweep.
	rl.mu.Lock()
	rl.buckets["10.0.0.1"].lastTime = time.Now().Add(-2 * bucketTTL)
	rl.lastSweep = time.Now().Add(-2 * sweepInterval)
	rl.mu.Unlock()

	rl.Allow("10.0.0.2")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.buckets["10.0.0.1"]; ok {
		t.Fatalf("expected idle bucket to be evicted")
	}
	if _, ok := rl.buckets["10.0.0.2"]; !ok {
		t.Fatalf("expected active bucket to survive the sweep")
	}
}
