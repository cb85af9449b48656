package service

import (
	"context"
	"sync"
	"time"
)

// Query cache groups invalidated after every successful export.
const (
	CacheGroupRecentCertificates = "recent-certificates"
	CacheGroupMyReports          = "my-reports"
	CacheGroupCustomerReports    = "customer-reports"
)

// ExportCacheGroups lists the groups a new certificate makes stale.
var ExportCacheGroups = []string{
	CacheGroupRecentCertificates,
	CacheGroupMyReports,
	CacheGroupCustomerReports,
}

type cacheEntry struct {
	value   any
	expires time.Time
}

// QueryCache memoizes report listings per group and key until they expire
// or their group is invalidated.
type QueryCache struct {
	mu     sync.RWMutex
	ttl    time.Duration
	groups map[string]map[string]cacheEntry
	now    func() time.Time
}

func NewQueryCache(ttl time.Duration) *QueryCache {
	return &QueryCache{
		ttl:    ttl,
		groups: make(map[string]map[string]cacheEntry),
		now:    time.Now,
	}
}

func (c *QueryCache) Get(group, key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.groups[group][key]
	if !ok || c.now().After(entry.expires) {
		return nil, false
	}
	return entry.value, true
}

func (c *QueryCache) Set(group, key string, value any) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, ok := c.groups[group]
	if !ok {
		entries = make(map[string]cacheEntry)
		c.groups[group] = entries
	}
	entries[key] = cacheEntry{value: value, expires: c.now().Add(c.ttl)}
}

// Invalidate drops every entry of the named groups.
func (c *QueryCache) Invalidate(_ context.Context, groups ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, g := range groups {
		delete(c.groups, g)
	}
	return nil
}

// Fetch returns the cached value or loads and caches it. Load errors are
// not cached.
func Fetch[T any](c *QueryCache, group, key string, load func() (T, error)) (T, error) {
	if v, ok := c.Get(group, key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(group, key, v)
	return v, nil
}
