// Package cache provides an in-memory TTL cache with ETag support for the
// read API. Gold rows only change when the ETL runs, so entries live for the
// configured TTL or until a gold refresh purges them all.
package cache

import (
	"crypto/md5"
	"fmt"
	"sync"
	"time"
)

// Leader boards are recomputed from the whole gold set; they get a shorter
// life than per-match payloads.
const leaderTTLDivisor = 5

type entry struct {
	data      []byte
	etag      string
	expiresAt time.Time
}

// Cache is a thread-safe in-memory TTL cache.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	enabled bool
	ttl     time.Duration
	stop    chan struct{}
	once    sync.Once
}

// New creates a cache whose entries live for ttl. Pass enabled=false to
// create a no-op cache that still computes ETags.
func New(enabled bool, ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		enabled: enabled && ttl > 0,
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	if c.enabled {
		go c.evictLoop(ttl)
	}
	return c
}

// MatchTTL is the lifetime of per-match payloads.
func (c *Cache) MatchTTL() time.Duration { return c.ttl }

// LeaderTTL is the lifetime of leader boards.
func (c *Cache) LeaderTTL() time.Duration { return c.ttl / leaderTTLDivisor }

// Get retrieves a cached value. Returns data, etag, and whether the entry was found.
func (c *Cache) Get(key string) (data []byte, etag string, ok bool) {
	if !c.enabled {
		return nil, "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, exists := c.entries[key]
	if !exists || time.Now().After(e.expiresAt) {
		return nil, "", false
	}
	return e.data, e.etag, true
}

// Set stores a value with a TTL and returns its ETag.
func (c *Cache) Set(key string, data []byte, ttl time.Duration) string {
	etag := ComputeETag(data)
	if !c.enabled {
		return etag
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		data:      data,
		etag:      etag,
		expiresAt: time.Now().Add(ttl),
	}
	return etag
}

// Purge drops every entry and returns how many were held.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]entry)
	return n
}

// Stats returns cache statistics.
func (c *Cache) Stats() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	active := 0
	now := time.Now()
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			active++
		}
	}
	return map[string]any{
		"enabled":      c.enabled,
		"ttl_seconds":  int(c.ttl.Seconds()),
		"total_keys":   len(c.entries),
		"active_keys":  active,
		"expired_keys": len(c.entries) - active,
	}
}

// Close stops the eviction loop.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache) evictLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.evict()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) evict() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// ComputeETag generates a weak ETag from response data using MD5.
func ComputeETag(data []byte) string {
	hash := md5.Sum(data)
	return fmt.Sprintf(`W/"%x"`, hash[:8])
}

// CheckETagMatch checks if If-None-Match header matches the current ETag.
func CheckETagMatch(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}
	return ifNoneMatch == etag
}
