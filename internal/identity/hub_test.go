package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func receive(t *testing.T, ch <-chan SessionState) SessionState {
	t.Helper()
	select {
	case st, ok := <-ch:
		require.True(t, ok, "channel closed")
		return st
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for session state")
	}
	return SessionState{}
}

func TestHub_DeliversInitialThenChanges(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := hub.Subscribe(ctx, "U1", Present(Identity{UID: "U1"}))
	st := receive(t, ch)
	assert.True(t, st.SignedIn())

	hub.Publish("U1", Absent)
	st = receive(t, ch)
	assert.False(t, st.SignedIn())

	hub.Publish("U2", Absent)
	select {
	case <-ch:
		t.Fatal("received a state published for another uid")
	default:
	}
}

func TestHub_CoalescesToLatest(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := hub.Subscribe(ctx, "U1", Absent)
	hub.Publish("U1", Present(Identity{UID: "U1", Email: "first@example.com"}))
	hub.Publish("U1", Present(Identity{UID: "U1", Email: "second@example.com"}))

	st := receive(t, ch)
	require.True(t, st.SignedIn())
	assert.Equal(t, "second@example.com", st.Identity.Email)
}

func TestHub_CancelClosesAndUnregisters(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	ch := hub.Subscribe(ctx, "U1", Absent)
	assert.Equal(t, 1, hub.Subscribers("U1"))
	cancel()

	assert.Eventually(t, func() bool { return hub.Subscribers("U1") == 0 }, time.Second, 5*time.Millisecond)
	for range ch {
	}
	hub.Publish("U1", Absent)
}

func TestNotifyingProvider_PublishesOnSessionChanges(t *testing.T) {
	hub := NewHub()
	p := NewNotifyingProvider(NewMemoryProvider(zap.NewNop()), hub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cred, err := p.CreateAccount(ctx, "a@example.com", "secret1", "A")
	require.NoError(t, err)

	ch := hub.Subscribe(ctx, cred.UID, Present(cred.Identity))
	receive(t, ch)

	require.NoError(t, p.SignOut(ctx, cred.UID))
	assert.False(t, receive(t, ch).SignedIn())

	_, err = p.SignIn(ctx, "a@example.com", "secret1")
	require.NoError(t, err)
	assert.True(t, receive(t, ch).SignedIn())
}
