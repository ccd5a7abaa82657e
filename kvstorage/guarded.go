package kvstorage

import (
	"sync"

	"github.com/dokzlo13/tempokv/clock"
)

// Guarded wraps a Storage with a mutex so several goroutines can share one
// instance. Reads never mutate the store (expiry checks are lazy), so Get
// and GetManySorted take the read lock only.
type Guarded struct {
	mu sync.RWMutex
	st *Storage
}

// NewGuarded builds a concurrency-safe store from the given items, with
// the same bulk-load semantics as New.
func NewGuarded(items []Item, clk clock.Clock) *Guarded {
	return &Guarded{st: New(items, clk)}
}

// Set assigns value to key under the write lock. See Storage.Set.
func (g *Guarded) Set(key, value string, ttl uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.st.Set(key, value, ttl)
}

// Get returns the live value stored under key. See Storage.Get.
func (g *Guarded) Get(key string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.st.Get(key)
}

// Remove deletes key and reports whether it existed. See Storage.Remove.
func (g *Guarded) Remove(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.st.Remove(key)
}

// GetManySorted returns up to count live entries with keys >= from. See
// Storage.GetManySorted.
func (g *Guarded) GetManySorted(from string, count uint32) []Entry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.st.GetManySorted(from, count)
}

// RemoveOneExpiredEntry reclaims one expired record, if any. See
// Storage.RemoveOneExpiredEntry.
func (g *Guarded) RemoveOneExpiredEntry() (Entry, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.st.RemoveOneExpiredEntry()
}

// Len returns the physical record count. See Storage.Len.
func (g *Guarded) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.st.Len()
}
