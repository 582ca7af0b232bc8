package registration

import "sync"

// Cache holds the student's registrations for one page session. It is
// rebuilt from the store before every registration attempt and updated on
// successful writes. Nothing else invalidates it.
type Cache struct {
	mu            sync.RWMutex
	registrations []Registration
	eventIDs      map[string]struct{}
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{eventIDs: map[string]struct{}{}}
}

// Replace swaps in a fresh list loaded from the store.
func (c *Cache) Replace(regs []Registration) {
	ids := make(map[string]struct{}, len(regs))
	for _, r := range regs {
		ids[r.EventID] = struct{}{}
	}
	c.mu.Lock()
	c.registrations = append([]Registration(nil), regs...)
	c.eventIDs = ids
	c.mu.Unlock()
}

// Has reports whether the cache knows of a registration for eventID.
func (c *Cache) Has(eventID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.eventIDs[eventID]
	return ok
}

// MarkRegistered records eventID without a full registration.
func (c *Cache) MarkRegistered(eventID string) {
	c.mu.Lock()
	c.eventIDs[eventID] = struct{}{}
	c.mu.Unlock()
}

// Add appends a newly written registration.
func (c *Cache) Add(r Registration) {
	c.mu.Lock()
	c.registrations = append(c.registrations, r)
	c.eventIDs[r.EventID] = struct{}{}
	c.mu.Unlock()
}

// Registrations returns a copy of the cached list.
func (c *Cache) Registrations() []Registration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Registration{}, c.registrations...)
}

// Len is the number of cached registrations.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.registrations)
}
