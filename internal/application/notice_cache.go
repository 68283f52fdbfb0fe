package application

import (
	"sync"
	"time"
)

// noticeCache throttles repeated operator notices (stale participants,
// missing capabilities) so each key is emitted at most once per ttl.
type noticeCache struct {
	mu         sync.Mutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]time.Time
}

func newNoticeCache(ttl time.Duration, maxEntries int, now func() time.Time) *noticeCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 512
	}
	if now == nil {
		now = time.Now
	}
	return &noticeCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]time.Time),
	}
}

// Allow reports whether the notice for key should be emitted now and, if so,
// suppresses it until the ttl elapses.
func (c *noticeCache) Allow(key string) bool {
	if c == nil {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if expiresAt, ok := c.entries[key]; ok && !now.After(expiresAt) {
		return false
	}

	c.cleanupLocked(now)
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = now.Add(c.ttl)
	return true
}

// Forget drops key so its next notice is emitted immediately.
func (c *noticeCache) Forget(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *noticeCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]time.Time)
	c.mu.Unlock()
}

func (c *noticeCache) cleanupLocked(now time.Time) {
	for key, expiresAt := range c.entries {
		if now.After(expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *noticeCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}
