package broadcast

import (
	"context"
	"errors"
	"testing"

	"maatram_portal_backend/internal/common"
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
	store *docstoretest.FaultyStore
	svc   *Service
	event *event.Event
}

var (
	organizer = &profile.UserProfile{UID: "org1", Name: "Olivia", Role: profile.RoleOrganizer}
	stranger  = &profile.UserProfile{UID: "org2", Name: "Omar", Role: profile.RoleOrganizer}
	admin     = &profile.UserProfile{UID: "root", Name: "Root", Role: profile.RoleSuperadmin}
)

func newFixture(t *testing.T, registrants int) (*fixture, []string) {
	store := docstoretest.Wrap(docstore.NewMemoryStore())
	logger := zap.NewNop()
	events := event.NewService(event.NewDocRepository(store), nil, logger)
	profiles := profile.NewService(profile.NewDocRepository(store), logger)
	regRepo := registration.NewDocRepository(store)
	regs := registration.NewService(regRepo, events, profiles, logger)

	id, err := events.CreateEvent(context.Background(), organizer, event.CreateEventRequest{Title: "Beach Cleanup"})
	require.NoError(t, err)
	ev, err := events.GetEvent(context.Background(), id)
	require.NoError(t, err)

	var regIDs []string
	for i := 0; i < registrants; i++ {
		student := &profile.UserProfile{UID: string(rune('a' + i)), Name: "Student"}
		reg, err := regs.RegisterForEvent(context.Background(), registration.NewCache(), ev, student)
		require.NoError(t, err)
		regIDs = append(regIDs, reg.ID)
	}

	svc := NewService(events, regs, regRepo, NewDocRepository(store), logger)
	return &fixture{store: store, svc: svc, event: ev}, regIDs
}

func (f *fixture) lastMessage(t *testing.T, regID string) string {
	doc, err := f.store.Get(context.Background(), docstore.CollectionRegistrations, regID)
	require.NoError(t, err)
	return doc.String("lastMessage")
}

func TestSend_PartialFailure(t *testing.T) {
	f, regIDs := newFixture(t, 3)
	f.store.FailUpdate(docstore.CollectionRegistrations, regIDs[1], errors.New("permission denied"))

	result, err := f.svc.Send(context.Background(), organizer, f.event.ID, "Bring gloves")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Attempted)
	assert.Equal(t, 2, result.Updated)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, regIDs[1], result.Failed[0].RegistrationID)
	assert.NotEmpty(t, result.MessageID)

	assert.Equal(t, "Bring gloves", f.lastMessage(t, regIDs[0]))
	assert.Empty(t, f.lastMessage(t, regIDs[1]))
	assert.Equal(t, "Bring gloves", f.lastMessage(t, regIDs[2]))

	doc, err := f.store.Get(context.Background(), docstore.CollectionRegistrations, regIDs[0])
	require.NoError(t, err)
	assert.False(t, doc.Time("lastNotifiedAt").IsZero())

	history, err := f.svc.History(context.Background(), f.event.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Bring gloves", history[0].Message)
	assert.Equal(t, "org1", history[0].SenderUID)
	assert.False(t, history[0].SentAt.IsZero())
}

func TestSend_EmptyMessage(t *testing.T) {
	f, _ := newFixture(t, 1)
	_, err := f.svc.Send(context.Background(), organizer, f.event.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Equal(t, 0, f.store.Calls("update"))
}

func TestSend_NoParticipantsWritesNothing(t *testing.T) {
	f, _ := newFixture(t, 0)
	_, err := f.svc.Send(context.Background(), organizer, f.event.ID, "Hello")
	assert.ErrorIs(t, err, ErrNoParticipants)

	history, err := f.svc.History(context.Background(), f.event.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSend_ReadFailureCountsAsNoParticipants(t *testing.T) {
	f, _ := newFixture(t, 2)
	f.store.FailQuery(docstore.CollectionRegistrations, errors.New("permission denied"))
	_, err := f.svc.Send(context.Background(), organizer, f.event.ID, "Hello")
	assert.ErrorIs(t, err, ErrNoParticipants)
	assert.Equal(t, 0, f.store.Calls("update"))
}

func TestSend_Authorization(t *testing.T) {
	f, _ := newFixture(t, 1)
	_, err := f.svc.Send(context.Background(), stranger, f.event.ID, "Hello")
	assert.ErrorIs(t, err, ErrNotEventOrganizer)

	result, err := f.svc.Send(context.Background(), admin, f.event.ID, "Hello")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	_, err = f.svc.Send(context.Background(), admin, "missing", "Hello")
	assert.ErrorIs(t, err, event.ErrEventNotFound)
}

func TestSend_AuditFailureStillAppliesRows(t *testing.T) {
	f, regIDs := newFixture(t, 2)
	f.store.FailAdd(docstore.CollectionMessages, errors.New("permission denied"))

	result, err := f.svc.Send(context.Background(), organizer, f.event.ID, "Hello")
	require.Error(t, err)
	notice, _ := common.NoticeOf(err)
	assert.Equal(t, NoticeSendFailed, notice)
	require.NotNil(t, result)
	assert.Equal(t, 2, result.Updated)
	assert.Empty(t, result.MessageID)
	assert.Equal(t, "Hello", f.lastMessage(t, regIDs[0]))
}
