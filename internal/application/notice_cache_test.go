package application

import (
	"testing"
	"time"
)

func TestNoticeCacheThrottles(t *testing.T) {
	current := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	cache := newNoticeCache(time.Minute, 4, func() time.Time { return current })

	if !cache.Allow("stale:7") {
		t.Fatalf("expected first notice to be allowed")
	}
	if cache.Allow("stale:7") {
		t.Fatalf("expected repeated notice to be suppressed")
	}
	if !cache.Allow("stale:8") {
		t.Fatalf("expected a different key to be allowed")
	}

	current = current.Add(2 * time.Minute)
	if !cache.Allow("stale:7") {
		t.Fatalf("expected notice to be allowed again after the ttl")
	}
}

func TestNoticeCacheForgetAndInvalidate(t *testing.T) {
	cache := newNoticeCache(time.Minute, 4, time.Now)
	cache.Allow("a")
	cache.Allow("b")

	cache.Forget("a")
	if !cache.Allow("a") {
		t.Fatalf("expected forgotten key to be allowed")
	}

	cache.Invalidate()
	if !cache.Allow("b") {
		t.Fatalf("expected cache to be empty after invalidation")
	}
}

func TestNoticeCacheBounded(t *testing.T) {
	cache := newNoticeCache(time.Hour, 2, time.Now)
	for _, key := range []string{"a", "b", "c", "d"} {
		cache.Allow(key)
	}
	if len(cache.entries) > 2 {
		t.Fatalf("expected at most 2 entries, got %d", len(cache.entries))
	}
}

func TestNilNoticeCacheAllowsEverything(t *testing.T) {
	var cache *noticeCache
	if !cache.Allow("x") || !cache.Allow("x") {
		t.Fatalf("nil cache must not throttle")
	}
}
