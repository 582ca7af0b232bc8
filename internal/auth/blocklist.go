package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"maatram_portal_backend/internal/identity"

	"github.com/patrickmn/go-cache"
)

// ErrTokenSignedOut is returned for ID tokens presented after logout.
var ErrTokenSignedOut = errors.New("session has been signed out")

// TokenBlocklist remembers ID tokens handed in at logout until they would
// have expired anyway.
type TokenBlocklist struct {
	mu    sync.RWMutex
	cache *cache.Cache
	ttl   time.Duration
}

// BlocklistConfig holds the configuration for the TokenBlocklist.
type BlocklistConfig struct {
	// TokenLifetime bounds how long a signed-out token stays listed.
	TokenLifetime   time.Duration
	CleanupInterval time.Duration
}

// NewTokenBlocklist creates an in-memory blocklist.
func NewTokenBlocklist(cfg BlocklistConfig) *TokenBlocklist {
	if cfg.TokenLifetime <= 0 {
		cfg.TokenLifetime = time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 10 * time.Minute
	}
	return &TokenBlocklist{
		cache: cache.New(cfg.TokenLifetime, cfg.CleanupInterval),
		ttl:   cfg.TokenLifetime,
	}
}

// Add lists token for expiresIn, or the default lifetime when expiresIn is not positive.
func (b *TokenBlocklist) Add(token string, expiresIn time.Duration) {
	if token == "" {
		return
	}
	if expiresIn <= 0 || expiresIn > b.ttl {
		expiresIn = b.ttl
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache.Set(token, true, expiresIn)
}

// Contains reports whether token was signed out.
func (b *TokenBlocklist) Contains(token string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, found := b.cache.Get(token)
	return found
}

// Verifier is the session verification contract the blocklist guards.
type Verifier interface {
	VerifySession(ctx context.Context, idToken string) (*identity.Identity, error)
}

// BlocklistVerifier rejects listed tokens before asking the provider.
type BlocklistVerifier struct {
	next      Verifier
	blocklist *TokenBlocklist
}

// NewBlocklistVerifier wraps next with blocklist.
func NewBlocklistVerifier(next Verifier, blocklist *TokenBlocklist) *BlocklistVerifier {
	return &BlocklistVerifier{next: next, blocklist: blocklist}
}

func (v *BlocklistVerifier) VerifySession(ctx context.Context, idToken string) (*identity.Identity, error) {
	if v.blocklist.Contains(idToken) {
		return nil, ErrTokenSignedOut
	}
	return v.next.VerifySession(ctx, idToken)
}
