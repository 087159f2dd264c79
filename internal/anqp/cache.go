//
//
package anqp

import (
	"maps"
	"sync"
	"time"
)

// Entry is one cached ANQP response.
type Entry struct {
	BSSID    string            `json:"bssid"`
	Elements map[string]string `json:"elements"`
	StoredAt time.Time         `json:"storedAt"`
}

// Cache is a bounded TTL cache of ANQP entries keyed by BSSID.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewCache creates a cache holding at most capacity entries for ttl each.
// capacity <= 0 removes the size bound; ttl <= 0 disables expiry.
func NewCache(capacity int, ttl time.Duration) *Cache {
	return &Cache{
		entries:  make(map[string]Entry),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Put stores elements for a BSSID, replacing any previous entry. When the
// cache is full the oldest entry makes room.
func (c *Cache) Put(bssid string, elements map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[bssid]; !exists && c.capacity > 0 && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}

	c.entries[bssid] = Entry{
		BSSID:    bssid,
		Elements: maps.Clone(elements),
		StoredAt: c.now(),
	}
}

// Get returns the entry for a BSSID. Expired entries are evicted and
// reported as a miss.
func (c *Cache) Get(bssid string) (Entry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[bssid]
	c.mu.RUnlock()

	if !ok {
		return Entry{}, false
	}

	if c.expired(entry) {
		c.mu.Lock()
		if cur, ok := c.entries[bssid]; ok && c.expired(cur) {
			delete(c.entries, bssid)
		}
		c.mu.Unlock()
		return Entry{}, false
	}

	return entry, true
}

// Flush drops every entry and returns how many were dropped.
func (c *Cache) Flush() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]Entry)
	return n
}

// Len returns the number of live entries, sweeping out expired ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	for bssid, entry := range c.entries {
		if c.expired(entry) {
			delete(c.entries, bssid)
		}
	}
	return len(c.entries)
}

// expired reports whether an entry has outlived the TTL.
func (c *Cache) expired(entry Entry) bool {
	if c.ttl <= 0 {
		return false
	}
	return c.now().Sub(entry.StoredAt) >= c.ttl
}

// evictOldestLocked removes the entry with the oldest StoredAt.
// Callers hold c.mu.
func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true

	for bssid, entry := range c.entries {
		if first || entry.StoredAt.Before(oldestAt) {
			oldestKey = bssid
			oldestAt = entry.StoredAt
			first = false
		}
	}

	if !first {
		delete(c.entries, oldestKey)
	}
}
