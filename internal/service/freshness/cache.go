// internal/service/freshness/cache.go

package freshness

import (
	"sync"
	"time"
)

// Entry is the last result stored for a gate
type Entry struct {
	Value     interface{}
	CheckedAt time.Time
}

// Cache holds the last computed result per gate. It only stores and
// returns values; whether an entry is still usable is decided by Gate.
type Cache struct {
	mu      sync.RWMutex
	entries map[GateID]Entry
	now     func() time.Time
}

// NewCache creates a cache using clock for timestamps. A nil clock
// defaults to time.Now.
func NewCache(clock func() time.Time) *Cache {
	if clock == nil {
		clock = time.Now
	}
	return &Cache{
		entries: make(map[GateID]Entry),
		now:     clock,
	}
}

// Now returns the cache clock's current time
func (c *Cache) Now() time.Time {
	return c.now()
}

// Get returns the entry stored for id
func (c *Cache) Get(id GateID) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	return e, ok
}

// LastCheck returns when id was last stored, or nil if never
func (c *Cache) LastCheck(id GateID) *time.Time {
	e, ok := c.Get(id)
	if !ok {
		return nil
	}
	t := e.CheckedAt
	return &t
}

// Put stores value for id, stamped with the current clock time
func (c *Cache) Put(id GateID, value interface{}) Entry {
	e := Entry{Value: value, CheckedAt: c.now()}

	c.mu.Lock()
	c.entries[id] = e
	c.mu.Unlock()

	return e
}

// Invalidate drops the entry for id so the next check refetches
func (c *Cache) Invalidate(id GateID) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// InvalidateAll drops every entry
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[GateID]Entry)
	c.mu.Unlock()
}

// Fresh returns the cached value for gate when the gate allows reuse
func (c *Cache) Fresh(g Gate) (interface{}, bool) {
	if g.ShouldRefetch(c.LastCheck(g.ID), c.now()) {
		return nil, false
	}
	e, ok := c.Get(g.ID)
	if !ok {
		return nil, false
	}
	return e.Value, true
}
