// Package cache persists last-known-good camera configurations keyed by IP.
// A hit seeds the next discovery run's hints; it never bypasses
// re-validation.
package cache

import (
	"context"
	"log"
	"sync"
)

// Entry is the last configuration that worked for an IP. JSON field names
// match the legacy cache file, so existing files keep working.
type Entry struct {
	Vendor   string `json:"vendor"`
	Path     string `json:"path"`
	User     string `json:"user"`
	Password string `json:"pwd"`
	Port     int    `json:"port"`
}

// Store is the persistence backend. Load on a missing backend returns an
// empty map, not an error; only genuinely broken reads error, and callers
// treat even those as "start empty".
type Store interface {
	Load(ctx context.Context) (map[string]Entry, error)
	Save(ctx context.Context, entries map[string]Entry) error
}

// Cache is the in-memory working set in front of a Store. Reads come from
// any goroutine; writes are funneled through the scan collector, but the
// mutex keeps the type safe regardless of caller discipline.
type Cache struct {
	store Store

	mu      sync.RWMutex
	entries map[string]Entry
}

// New loads the store eagerly. A failed load logs and starts empty; cache
// persistence is never fatal to a run.
func New(ctx context.Context, store Store) *Cache {
	c := &Cache{store: store, entries: map[string]Entry{}}
	if store == nil {
		return c
	}
	entries, err := store.Load(ctx)
	if err != nil {
		log.Printf("[cache] load failed, starting empty: %v", err)
		return c
	}
	if entries != nil {
		c.entries = entries
	}
	return c
}

func (c *Cache) Get(ip string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[ip]
	return e, ok
}

// Put upserts an entry. Last write wins across sessions.
func (c *Cache) Put(ip string, e Entry) {
	c.mu.Lock()
	c.entries[ip] = e
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Flush writes the working set back to the store, best-effort.
func (c *Cache) Flush(ctx context.Context) {
	if c.store == nil {
		return
	}
	c.mu.RLock()
	snapshot := make(map[string]Entry, len(c.entries))
	for k, v := range c.entries {
		snapshot[k] = v
	}
	c.mu.RUnlock()

	if err := c.store.Save(ctx, snapshot); err != nil {
		log.Printf("[cache] save failed (ignored): %v", err)
	}
}
