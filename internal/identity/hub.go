package identity

import (
	"context"
	"sync"
)

// Hub fans session-state changes out to subscribers, keyed by uid.
// Each subscription holds at most one pending state; a newer state replaces
// an undelivered older one, so the consumer always re-evaluates the latest.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan SessionState]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan SessionState]struct{})}
}

// Subscribe delivers initial immediately, then every later state published
// for uid. The channel is closed once ctx is done.
func (h *Hub) Subscribe(ctx context.Context, uid string, initial SessionState) <-chan SessionState {
	ch := make(chan SessionState, 1)
	ch <- initial

	h.mu.Lock()
	set, ok := h.subs[uid]
	if !ok {
		set = make(map[chan SessionState]struct{})
		h.subs[uid] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[uid], ch)
		if len(h.subs[uid]) == 0 {
			delete(h.subs, uid)
		}
		close(ch)
	}()
	return ch
}

// Publish sends state to every subscriber of uid without blocking.
func (h *Hub) Publish(uid string, state SessionState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[uid] {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}

// Subscribers returns the number of live subscriptions for uid.
func (h *Hub) Subscribers(uid string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[uid])
}

// NotifyingProvider publishes session changes to a Hub around a Provider.
type NotifyingProvider struct {
	Provider
	hub *Hub
}

// NewNotifyingProvider wraps p so sign-in, sign-up and sign-out reach hub.
func NewNotifyingProvider(p Provider, hub *Hub) *NotifyingProvider {
	return &NotifyingProvider{Provider: p, hub: hub}
}

func (n *NotifyingProvider) CreateAccount(ctx context.Context, email, password, displayName string) (*Credential, error) {
	cred, err := n.Provider.CreateAccount(ctx, email, password, displayName)
	if err != nil {
		return nil, err
	}
	n.hub.Publish(cred.UID, Present(cred.Identity))
	return cred, nil
}

func (n *NotifyingProvider) SignIn(ctx context.Context, email, password string) (*Credential, error) {
	cred, err := n.Provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	n.hub.Publish(cred.UID, Present(cred.Identity))
	return cred, nil
}

func (n *NotifyingProvider) SignOut(ctx context.Context, uid string) error {
	if err := n.Provider.SignOut(ctx, uid); err != nil {
		return err
	}
	n.hub.Publish(uid, Absent)
	return nil
}
