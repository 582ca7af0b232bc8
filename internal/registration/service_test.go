package registration

import (
	"context"
	"errors"
	"testing"

	"maatram_portal_backend/internal/common"
	"maatram_portal_backend/internal/docstore"
	"maatram_portal_backend/internal/docstore/docstoretest"
	"maatram_portal_backend/internal/event"
	"maatram_portal_backend/internal/identity"
	"maatram_portal_backend/internal/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	store    *docstoretest.FaultyStore
	events   *event.ServiceImplementation
	profiles *profile.ServiceImplementation
	svc      *ServiceImplementation
}

func newFixture() *fixture {
	store := docstoretest.Wrap(docstore.NewMemoryStore())
	logger := zap.NewNop()
	events := event.NewService(event.NewDocRepository(store), nil, logger)
	profiles := profile.NewService(profile.NewDocRepository(store), logger)
	return &fixture{
		store:    store,
		events:   events,
		profiles: profiles,
		svc:      NewService(NewDocRepository(store), events, profiles, logger),
	}
}

var (
	organizer = &profile.UserProfile{UID: "org1", Name: "Olivia", Role: profile.RoleOrganizer}
	student   = &profile.UserProfile{UID: "U1", Name: "Sam Raj", Phone: "555", College: "PSG", Year: "2", Role: profile.RoleStudent}
)

func (f *fixture) createEvent(t *testing.T, title string, autoApprove bool) *event.Event {
	id, err := f.events.CreateEvent(context.Background(), organizer, event.CreateEventRequest{Title: title, AutoApprove: autoApprove})
	require.NoError(t, err)
	ev, err := f.events.GetEvent(context.Background(), id)
	require.NoError(t, err)
	return ev
}

func (f *fixture) count(t *testing.T, eventID, uid string) int {
	regs, err := NewDocRepository(f.store).FindByEventAndStudent(context.Background(), eventID, uid)
	require.NoError(t, err)
	return len(regs)
}

func TestRegisterForEvent_PendingThenMyEvents(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	e1 := f.createEvent(t, "E1", false)

	reg, err := f.svc.RegisterForEvent(ctx, NewCache(), e1, student)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, reg.Status)
	assert.Equal(t, "U1", reg.StudentUID)
	assert.Equal(t, e1.ID, reg.EventID)
	assert.Equal(t, "Sam Raj", reg.StudentName)
	assert.Equal(t, "555", reg.StudentPhone)
	assert.Equal(t, "PSG", reg.StudentCollege)
	assert.Equal(t, "2", reg.StudentYear)
	assert.False(t, reg.CreatedAt.IsZero())
	assert.Equal(t, 1, f.count(t, e1.ID, "U1"))

	events, notice := f.svc.MyEvents(ctx, NewCache(), "U1")
	assert.Empty(t, notice)
	require.Len(t, events, 1)
	assert.Equal(t, e1.ID, events[0].ID)
}

func TestRegisterForEvent_AutoApprove(t *testing.T) {
	f := newFixture()
	ev := f.createEvent(t, "Beach Cleanup", true)

	reg, err := f.svc.RegisterForEvent(context.Background(), NewCache(), ev, student)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, reg.Status)
}

func TestRegisterForEvent_SecondCallAddsNothing(t *testing.T) {
	f := newFixture()
	ev := f.createEvent(t, "E1", false)
	cache := NewCache()

	_, err := f.svc.RegisterForEvent(context.Background(), cache, ev, student)
	require.NoError(t, err)
	_, err = f.svc.RegisterForEvent(context.Background(), cache, ev, student)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	// A fresh page session with an empty cache is caught by the reload.
	_, err = f.svc.RegisterForEvent(context.Background(), NewCache(), ev, student)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, 1, f.count(t, ev.ID, "U1"))
}

func TestRegisterForEvent_CheckQueryErrorTreatedAsNotRegistered(t *testing.T) {
	f := newFixture()
	ev := f.createEvent(t, "E1", false)
	f.store.FailQuery(docstore.CollectionRegistrations, errors.New("permission denied"))

	reg, err := f.svc.RegisterForEvent(context.Background(), NewCache(), ev, student)
	require.NoError(t, err)
	assert.NotEmpty(t, reg.ID)
}

func TestRegisterForEvent_WriteFailure(t *testing.T) {
	f := newFixture()
	ev := f.createEvent(t, "E1", false)
	cause := errors.New("permission denied")
	f.store.FailAdd(docstore.CollectionRegistrations, cause)
	cache := NewCache()

	_, err := f.svc.RegisterForEvent(context.Background(), cache, ev, student)
	require.ErrorIs(t, err, cause)
	notice, _ := common.NoticeOf(err)
	assert.Equal(t, NoticeRegisterFailed, notice)
	assert.False(t, cache.Has(ev.ID))
}

func TestMyEvents_DedupesAndSkipsMissing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ev := f.createEvent(t, "E1", false)
	for _, eventID := range []string{ev.ID, ev.ID, "deleted-event"} {
		_, err := f.store.Add(ctx, docstore.CollectionRegistrations, map[string]interface{}{
			"eventId": eventID, "studentUid": "U1", "status": "pending",
		})
		require.NoError(t, err)
	}

	events, notice := f.svc.MyEvents(ctx, NewCache(), "U1")
	assert.Empty(t, notice)
	require.Len(t, events, 1)
	assert.Equal(t, ev.ID, events[0].ID)
}

func TestRecentEventsForStudent_FlagsRegistered(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.createEvent(t, "A", false)
	b := f.createEvent(t, "B", false)
	_, err := f.svc.RegisterForEvent(ctx, NewCache(), a, student)
	require.NoError(t, err)

	events, notice := f.svc.RecentEventsForStudent(ctx, NewCache(), "U1")
	assert.Empty(t, notice)
	require.Len(t, events, 2)
	flags := map[string]bool{}
	for _, e := range events {
		flags[e.ID] = e.Registered
	}
	assert.True(t, flags[a.ID])
	assert.False(t, flags[b.ID])
}

func TestListRegistrationsForEvent_ReadFailure(t *testing.T) {
	f := newFixture()
	f.store.FailQuery(docstore.CollectionRegistrations, errors.New("permission denied"))

	regs, notice := f.svc.ListRegistrationsForEvent(context.Background(), "E1")
	assert.NotNil(t, regs)
	assert.Empty(t, regs)
	assert.Equal(t, NoticeEventRegsFailed, notice)
}

func TestParticipants_Fallbacks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ev := f.createEvent(t, "E1", false)

	_, err := f.profiles.CreateOnSignUp(ctx, identityOf("U2", "Priya Devi"), "Priya Devi", profile.RoleStudent, "R2")
	require.NoError(t, err)
	_, err = f.profiles.UpdateProfile(ctx, "U2", profile.Edit{Name: "Priya Devi", Phone: "777"})
	require.NoError(t, err)

	rows := []map[string]interface{}{
		{"eventId": ev.ID, "studentUid": "U1", "studentName": "Sam Raj", "studentPhone": "555", "status": "approved"},
		{"eventId": ev.ID, "studentUid": "U2", "status": "pending"},
		{"eventId": ev.ID, "studentUid": "U3", "status": "pending"},
	}
	for _, row := range rows {
		_, err := f.store.Add(ctx, docstore.CollectionRegistrations, row)
		require.NoError(t, err)
	}

	participants, notice := f.svc.Participants(ctx, ev.ID)
	assert.Empty(t, notice)
	require.Len(t, participants, 3)
	byUID := map[string]Participant{}
	for _, p := range participants {
		byUID[p.StudentUID] = p
	}
	assert.Equal(t, "Sam Raj", byUID["U1"].DisplayName)
	assert.Equal(t, "SR", byUID["U1"].Initials)
	assert.Equal(t, StatusApproved, byUID["U1"].Status)
	assert.Equal(t, "Priya Devi", byUID["U2"].DisplayName)
	assert.Equal(t, "777", byUID["U2"].Phone)
	assert.Equal(t, "Unknown", byUID["U3"].DisplayName)
	assert.Equal(t, "No phone", byUID["U3"].Phone)
	assert.Equal(t, "U", byUID["U3"].Initials)
}

func TestCache(t *testing.T) {
	c := NewCache()
	assert.False(t, c.Has("E1"))
	c.Replace([]Registration{{ID: "r1", EventID: "E1"}})
	assert.True(t, c.Has("E1"))
	c.MarkRegistered("E2")
	assert.True(t, c.Has("E2"))
	assert.Equal(t, 1, c.Len())
	c.Add(Registration{ID: "r3", EventID: "E3"})
	regs := c.Registrations()
	require.Len(t, regs, 2)
	regs[0].EventID = "mutated"
	assert.Equal(t, "E1", c.Registrations()[0].EventID)
}

func identityOf(uid, name string) identity.Identity {
	return identity.Identity{UID: uid, DisplayName: name, Email: uid + "@example.org"}
}
