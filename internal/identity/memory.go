package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"maatram_portal_backend/internal/platform/crypto"

	"github.com/rs/xid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	tokenLifetimeSecs = 3600
)

type memoryAccount struct {
	identity Identity
	hash     []byte
}

// MemoryProvider is an in-process identity provider for local runs and tests.
// Tokens are random strings that live until SignOut revokes them.
type MemoryProvider struct {
	mu       sync.RWMutex
	accounts map[string]*memoryAccount // by lower-cased email
	tokens   map[string]string         // token -> uid
	logger   *zap.Logger
}

var _ Provider = (*MemoryProvider)(nil)

// NewMemoryProvider creates an empty MemoryProvider.
func NewMemoryProvider(logger *zap.Logger) *MemoryProvider {
	return &MemoryProvider{
		accounts: make(map[string]*memoryAccount),
		tokens:   make(map[string]string),
		logger:   logger,
	}
}

func (p *MemoryProvider) CreateAccount(ctx context.Context, email, password, displayName string) (*Credential, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(key, "@") {
		return nil, newError(ErrInvalidEmail, "The email address is badly formatted.")
	}
	if len(password) < minPasswordLength {
		return nil, newError(ErrWeakPassword, "Password should be at least 6 characters.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	p.mu.Lock()
	if _, exists := p.accounts[key]; exists {
		p.mu.Unlock()
		return nil, newError(ErrEmailExists, "The email address is already in use by another account.")
	}
	acct := &memoryAccount{
		identity: Identity{UID: xid.New().String(), Email: key, DisplayName: displayName},
		hash:     hash,
	}
	p.accounts[key] = acct
	p.mu.Unlock()

	p.logger.Info("Account created", zap.String("uid", acct.identity.UID))
	return p.issue(acct.identity)
}

func (p *MemoryProvider) SignIn(ctx context.Context, email, password string) (*Credential, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	p.mu.RLock()
	acct, ok := p.accounts[key]
	p.mu.RUnlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(password)) != nil {
		return nil, newError(ErrInvalidCredentials, "The email or password is incorrect.")
	}
	return p.issue(acct.identity)
}

func (p *MemoryProvider) SignOut(ctx context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for token, owner := range p.tokens {
		if owner == uid {
			delete(p.tokens, token)
		}
	}
	return nil
}

func (p *MemoryProvider) VerifySession(ctx context.Context, idToken string) (*Identity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	uid, ok := p.tokens[idToken]
	if !ok {
		return nil, newError(ErrInvalidSession, "ID token is invalid or has been revoked")
	}
	for _, acct := range p.accounts {
		if acct.identity.UID == uid {
			id := acct.identity
			return &id, nil
		}
	}
	return nil, newError(ErrInvalidSession, "ID token subject no longer exists")
}

func (p *MemoryProvider) issue(id Identity) (*Credential, error) {
	token, err := crypto.GenerateSecureRandomString(32)
	if err != nil {
		return nil, fmt.Errorf("generating session token: %w", err)
	}
	refresh, err := crypto.GenerateSecureRandomString(32)
	if err != nil {
		return nil, fmt.Errorf("generating refresh token: %w", err)
	}
	p.mu.Lock()
	p.tokens[token] = id.UID
	p.mu.Unlock()
	return &Credential{Identity: id, IDToken: token, RefreshToken: refresh, ExpiresIn: tokenLifetimeSecs}, nil
}
