package notification

import (
	"context"
	"errors"
	"testing"

	"maatram_portal_backend/internal/docstore"
	"maatram_portal_backend/internal/docstore/docstoretest"
	"maatram_portal_backend/internal/event"
	"maatram_portal_backend/internal/profile"
	"maatram_portal_backend/internal/registration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	store   *docstoretest.FaultyStore
	events  *event.ServiceImplementation
	regRepo registration.Repository
	svc     *ServiceImplementation
}

var (
	olivia = &profile.UserProfile{UID: "org1", Name: "Olivia", Role: profile.RoleOrganizer}
	omar   = &profile.UserProfile{UID: "org2", Name: "Omar", Role: profile.RoleOrganizer}
	admin  = &profile.UserProfile{UID: "root", Role: profile.RoleSuperadmin}
	sam    = &profile.UserProfile{UID: "s1", Name: "Sam", Role: profile.RoleStudent}
	anchor = &profile.UserProfile{UID: "a1", Role: profile.RoleAnchor}
)

func newFixture() *fixture {
	store := docstoretest.Wrap(docstore.NewMemoryStore())
	logger := zap.NewNop()
	events := event.NewService(event.NewDocRepository(store), nil, logger)
	regRepo := registration.NewDocRepository(store)
	return &fixture{store: store, events: events, regRepo: regRepo, svc: NewService(regRepo, events, logger)}
}

func (f *fixture) register(t *testing.T, organizer *profile.UserProfile, title string, autoApprove bool, students ...string) string {
	ctx := context.Background()
	id, err := f.events.CreateEvent(ctx, organizer, event.CreateEventRequest{Title: title, AutoApprove: autoApprove})
	require.NoError(t, err)
	for _, uid := range students {
		status := registration.StatusPending
		if autoApprove {
			status = registration.StatusApproved
		}
		_, err := f.regRepo.Create(ctx, &registration.Registration{EventID: id, StudentUID: uid, Status: status})
		require.NoError(t, err)
	}
	return id
}

func TestSummary(t *testing.T) {
	f := newFixture()
	f.register(t, olivia, "Pending A", false, "s1", "s2")
	f.register(t, olivia, "Approved", true, "s1")
	f.register(t, omar, "Pending B", false, "s3")

	ctx := context.Background()
	assert.Equal(t, Summary{Role: profile.RoleStudent, Kind: KindApprovedRegistrations, Count: 1}, f.svc.Summary(ctx, sam))
	assert.Equal(t, 2, f.svc.Summary(ctx, olivia).Count, "own events only")
	assert.Equal(t, 1, f.svc.Summary(ctx, omar).Count)
	assert.Equal(t, 3, f.svc.Summary(ctx, admin).Count)
	assert.Equal(t, KindNone, f.svc.Summary(ctx, anchor).Kind)
}

func TestSummary_ReadFailureIsZero(t *testing.T) {
	f := newFixture()
	f.register(t, olivia, "Pending", false, "s1")
	f.store.FailQuery(docstore.CollectionRegistrations, errors.New("permission denied"))

	assert.Equal(t, 0, f.svc.Summary(context.Background(), olivia).Count)
	assert.Equal(t, 0, f.svc.Summary(context.Background(), sam).Count)
}

func TestInbox(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	first := f.register(t, olivia, "Beach Cleanup", false, "s1")
	second := f.register(t, olivia, "Blood Drive", false, "s1")
	f.register(t, olivia, "Quiet", false, "s1")

	regs, err := f.regRepo.FindByStudent(ctx, "s1")
	require.NoError(t, err)
	byEvent := map[string]string{}
	for _, r := range regs {
		byEvent[r.EventID] = r.ID
	}
	require.NoError(t, f.regRepo.StampMessage(ctx, byEvent[first], "Bring gloves"))
	require.NoError(t, f.regRepo.StampMessage(ctx, byEvent[second], "Eat breakfast"))

	items := f.svc.Inbox(ctx, "s1")
	require.Len(t, items, 2)
	for _, item := range items {
		require.NotNil(t, item.NotifiedAt)
	}
	assert.False(t, items[0].NotifiedAt.Before(*items[1].NotifiedAt), "newest first")
	titles := []string{items[0].EventTitle, items[1].EventTitle}
	assert.ElementsMatch(t, []string{"Beach Cleanup", "Blood Drive"}, titles)
}

func TestInbox_ReadFailure(t *testing.T) {
	f := newFixture()
	f.store.FailQuery(docstore.CollectionRegistrations, errors.New("permission denied"))
	items := f.svc.Inbox(context.Background(), "s1")
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
