package broadcast

import (
	"context"
	"errors"
	"strings"
	"sync"

	"maatram_portal_backend/internal/common"
	"maatram_portal_backend/internal/event"
	"maatram_portal_backend/internal/profile"
	"maatram_portal_backend/internal/registration"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	NoticeSent           = "Message sent to participants"
	NoticeSendFailed     = "Failed to send message (permission?)"
	NoticeNoParticipants = "No participants to message"
	NoticeEmptyMessage   = "Enter a message"

	maxConcurrentUpdates = 16
)

var (
	ErrEmptyMessage      = errors.New("message is empty")
	ErrNoParticipants    = errors.New("event has no registrations")
	ErrNotEventOrganizer = errors.New("only the event's organizer may message its participants")
)

// EventReader loads the event being messaged.
type EventReader interface {
	GetEvent(ctx context.Context, id string) (*event.Event, error)
}

// RegistrationSource lists registrations; a read failure yields an empty list and a notice.
type RegistrationSource interface {
	ListRegistrationsForEvent(ctx context.Context, eventID string) ([]registration.Registration, string)
}

// Stamper marks one registration with the latest message.
type Stamper interface {
	StampMessage(ctx context.Context, id, message string) error
}

// Service sends organizer messages to every registrant of an event.
type Service struct {
	events   EventReader
	regs     RegistrationSource
	stamper  Stamper
	messages Repository
	logger   *zap.Logger
}

// NewService creates a broadcast service.
func NewService(events EventReader, regs RegistrationSource, stamper Stamper, messages Repository, logger *zap.Logger) *Service {
	return &Service{events: events, regs: regs, stamper: stamper, messages: messages, logger: logger.Named("BroadcastService")}
}

// Send stamps every registration of eventID with text and writes one audit
// record. Row failures are collected and do not stop the batch. The audit
// record is written while the row updates are in flight, and Send returns
// only after every update has settled. Nothing is rolled back.
func (s *Service) Send(ctx context.Context, sender *profile.UserProfile, eventID, text string) (*BatchResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	ev, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if sender.Role != profile.RoleSuperadmin && ev.OrganizerUID != sender.UID {
		return nil, ErrNotEventOrganizer
	}

	regs, notice := s.regs.ListRegistrationsForEvent(ctx, eventID)
	if len(regs) == 0 {
		if notice != "" {
			s.logger.Warn("No registrations loaded for broadcast", zap.String("eventId", eventID), zap.String("notice", notice))
		}
		return nil, ErrNoParticipants
	}

	result := &BatchResult{Attempted: len(regs), Failed: []RowFailure{}}
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(maxConcurrentUpdates)

	// Dispatch from a separate goroutine so the audit write is not held
	// back by the concurrency limit.
	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		for _, r := range regs {
			g.Go(func() error {
				if err := s.stamper.StampMessage(ctx, r.ID, text); err != nil {
					s.logger.Warn("Failed to update registration with message", zap.String("registrationId", r.ID), zap.Error(err))
					mu.Lock()
					result.Failed = append(result.Failed, RowFailure{RegistrationID: r.ID, Error: err.Error(), Err: err})
					mu.Unlock()
				}
				return nil
			})
		}
	}()

	msgID, auditErr := s.messages.Create(ctx, eventID, text, sender.UID)
	if auditErr != nil {
		s.logger.Error("Writing broadcast audit record failed", zap.String("eventId", eventID), zap.Error(auditErr))
	}

	<-dispatched
	_ = g.Wait()

	result.MessageID = msgID
	result.Updated = result.Attempted - len(result.Failed)
	s.logger.Info("Broadcast sent",
		zap.String("eventId", eventID),
		zap.Int("attempted", result.Attempted),
		zap.Int("updated", result.Updated),
	)
	if auditErr != nil {
		return result, &common.NoticeError{Notice: NoticeSendFailed, Err: auditErr}
	}
	return result, nil
}

// History lists the broadcasts sent for an event.
func (s *Service) History(ctx context.Context, eventID string) ([]Message, error) {
	return s.messages.FindByEvent(ctx, eventID)
}
