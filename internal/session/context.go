package session

import (
	"time"

	"maatram_portal_backend/internal/identity"
	"maatram_portal_backend/internal/profile"
	"maatram_portal_backend/internal/registration"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// Context is the state one page load works with. It is built fresh for every
// routed decision and never shared between page loads.
type Context struct {
	ID            string
	Page          Page
	Identity      identity.Identity
	Profile       *profile.UserProfile
	Registrations *registration.Cache
	CreatedAt     time.Time
}

// ContextStore keeps page contexts by page-session id until they go idle.
type ContextStore struct {
	items *gocache.Cache
	ttl   time.Duration
}

var _ registration.CacheResolver = (*ContextStore)(nil)

// NewContextStore creates a store whose contexts expire after ttl without use.
func NewContextStore(ttl time.Duration) *ContextStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ContextStore{items: gocache.New(ttl, 2*ttl), ttl: ttl}
}

// Create registers a new context and returns it.
func (s *ContextStore) Create(page Page, id identity.Identity, p *profile.UserProfile) *Context {
	c := &Context{
		ID:            uuid.NewString(),
		Page:          page,
		Identity:      id,
		Profile:       p,
		Registrations: registration.NewCache(),
		CreatedAt:     time.Now().UTC(),
	}
	s.items.SetDefault(c.ID, c)
	return c
}

// Get returns a live context and extends its lifetime.
func (s *ContextStore) Get(pageSessionID string) (*Context, bool) {
	if pageSessionID == "" {
		return nil, false
	}
	v, ok := s.items.Get(pageSessionID)
	if !ok {
		return nil, false
	}
	c := v.(*Context)
	s.items.SetDefault(pageSessionID, c)
	return c, true
}

// Delete drops a context.
func (s *ContextStore) Delete(pageSessionID string) {
	s.items.Delete(pageSessionID)
}

// DeleteForUID drops every context belonging to uid, used on sign-out.
func (s *ContextStore) DeleteForUID(uid string) int {
	n := 0
	for key, item := range s.items.Items() {
		if c, ok := item.Object.(*Context); ok && c.Identity.UID == uid {
			s.items.Delete(key)
			n++
		}
	}
	return n
}

// Len counts unexpired contexts.
func (s *ContextStore) Len() int {
	return s.items.ItemCount()
}

// CacheFor returns the registrations cache of the page session when it
// belongs to uid. Anything else gets a fresh, unshared cache.
func (s *ContextStore) CacheFor(pageSessionID, uid string) *registration.Cache {
	if c, ok := s.Get(pageSessionID); ok && c.Identity.UID == uid {
		return c.Registrations
	}
	return registration.NewCache()
}
