package registration

import (
	"context"
	"errors"
	"strings"

	"maatram_portal_backend/internal/common"
	"maatram_portal_backend/internal/event"
	"maatram_portal_backend/internal/profile"

	"go.uber.org/zap"
)

const (
	NoticeRegistered        = "Registered successfully"
	NoticeAlreadyRegistered = "You have already registered for this event"
	NoticeRegisterFailed    = "Registration failed"
	NoticeMyRegsFailed      = "Unable to load your registrations"
	NoticeEventRegsFailed   = "Unable to load registrations (permission)."
	NoticeEventsFailed      = "Failed to load events."
)

// ErrAlreadyRegistered is returned when the student already has a
// registration for the event.
var ErrAlreadyRegistered = errors.New("already registered for this event")

// EventReader is the part of the event service registrations need.
type EventReader interface {
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	ListEvents(ctx context.Context) ([]event.Event, string)
}

// ProfileReader loads live profiles for participant fallbacks.
type ProfileReader interface {
	Get(ctx context.Context, uid string) (*profile.UserProfile, error)
}

// Service defines registration operations.
type Service interface {
	LoadMyRegistrations(ctx context.Context, cache *Cache, studentUID string) error
	RegisterForEvent(ctx context.Context, cache *Cache, ev *event.Event, student *profile.UserProfile) (*Registration, error)
	ListRegistrationsForEvent(ctx context.Context, eventID string) ([]Registration, string)
	Participants(ctx context.Context, eventID string) ([]Participant, string)
	MyEvents(ctx context.Context, cache *Cache, studentUID string) ([]event.Event, string)
	RecentEventsForStudent(ctx context.Context, cache *Cache, studentUID string) ([]StudentEvent, string)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo     Repository
	events   EventReader
	profiles ProfileReader
	logger   *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a registration service.
func NewService(repo Repository, events EventReader, profiles ProfileReader, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, events: events, profiles: profiles, logger: logger.Named("RegistrationService")}
}

// LoadMyRegistrations rebuilds cache from the store. On failure the cache is
// left as it was.
func (s *ServiceImplementation) LoadMyRegistrations(ctx context.Context, cache *Cache, studentUID string) error {
	regs, err := s.repo.FindByStudent(ctx, studentUID)
	if err != nil {
		s.logger.Error("Loading student registrations failed", zap.String("studentUid", studentUID), zap.Error(err))
		return &common.NoticeError{Notice: NoticeMyRegsFailed, Err: err}
	}
	cache.Replace(regs)
	return nil
}

// RegisterForEvent writes one registration unless the student already has
// one. The duplicate check consults the cache, then the store. The check and
// the write are not atomic.
func (s *ServiceImplementation) RegisterForEvent(ctx context.Context, cache *Cache, ev *event.Event, student *profile.UserProfile) (*Registration, error) {
	_ = s.LoadMyRegistrations(ctx, cache, student.UID)

	if s.hasExistingRegistration(ctx, cache, ev.ID, student.UID) {
		return nil, ErrAlreadyRegistered
	}

	reg := &Registration{
		EventID:        ev.ID,
		StudentUID:     student.UID,
		Status:         StatusFor(ev),
		StudentName:    student.Name,
		StudentPhone:   student.Phone,
		StudentCollege: student.College,
		StudentYear:    student.Year,
	}
	id, err := s.repo.Create(ctx, reg)
	if err != nil {
		s.logger.Error("Registration write failed", zap.String("eventId", ev.ID), zap.String("studentUid", student.UID), zap.Error(err))
		return nil, &common.NoticeError{Notice: NoticeRegisterFailed, Err: err}
	}
	reg.ID = id
	if stored, err := s.repo.FindByID(ctx, id); err == nil {
		reg = stored
	}
	cache.Add(*reg)

	s.logger.Info("Student registered", zap.String("eventId", ev.ID), zap.String("studentUid", student.UID), zap.String("status", string(reg.Status)))
	return reg, nil
}

func (s *ServiceImplementation) hasExistingRegistration(ctx context.Context, cache *Cache, eventID, studentUID string) bool {
	if cache.Has(eventID) {
		return true
	}
	existing, err := s.repo.FindByEventAndStudent(ctx, eventID, studentUID)
	if err != nil {
		s.logger.Error("Duplicate registration check failed", zap.String("eventId", eventID), zap.Error(err))
		return false
	}
	if len(existing) > 0 {
		cache.MarkRegistered(eventID)
		return true
	}
	return false
}

func (s *ServiceImplementation) ListRegistrationsForEvent(ctx context.Context, eventID string) ([]Registration, string) {
	regs, err := s.repo.FindByEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("Loading event registrations failed", zap.String("eventId", eventID), zap.Error(err))
		return []Registration{}, NoticeEventRegsFailed
	}
	return regs, ""
}

// Participants lists registrants with display name and phone. Blank snapshot
// fields fall back to the live profile, then to placeholders.
func (s *ServiceImplementation) Participants(ctx context.Context, eventID string) ([]Participant, string) {
	regs, notice := s.ListRegistrationsForEvent(ctx, eventID)
	out := make([]Participant, 0, len(regs))
	for _, r := range regs {
		name := strings.TrimSpace(r.StudentName)
		phone := strings.TrimSpace(r.StudentPhone)
		if name == "" || phone == "" {
			if p, err := s.profiles.Get(ctx, r.StudentUID); err == nil {
				if name == "" {
					name = p.Name
				}
				if phone == "" {
					phone = p.Phone
				}
			} else if !errors.Is(err, profile.ErrProfileNotFound) {
				s.logger.Warn("Could not load user profile for participant", zap.String("studentUid", r.StudentUID), zap.Error(err))
			}
		}
		if name == "" {
			name = "Unknown"
		}
		if phone == "" {
			phone = "No phone"
		}
		out = append(out, Participant{
			RegistrationID: r.ID,
			StudentUID:     r.StudentUID,
			DisplayName:    name,
			Phone:          phone,
			Initials:       profile.Initials(name),
			Status:         r.Status,
		})
	}
	return out, notice
}

// MyEvents returns each event the student registered for once, in
// registration order. Registrations whose event is gone are skipped.
func (s *ServiceImplementation) MyEvents(ctx context.Context, cache *Cache, studentUID string) ([]event.Event, string) {
	var notice string
	if err := s.LoadMyRegistrations(ctx, cache, studentUID); err != nil {
		notice, _ = common.NoticeOf(err)
	}

	seen := map[string]struct{}{}
	events := []event.Event{}
	for _, r := range cache.Registrations() {
		if r.EventID == "" {
			continue
		}
		if _, ok := seen[r.EventID]; ok {
			continue
		}
		seen[r.EventID] = struct{}{}

		ev, err := s.events.GetEvent(ctx, r.EventID)
		if err != nil {
			s.logger.Warn("Could not load event for registration", zap.String("registrationId", r.ID), zap.String("eventId", r.EventID), zap.Error(err))
			continue
		}
		events = append(events, *ev)
	}
	return events, notice
}

// RecentEventsForStudent lists all events newest first, flagging those the
// student has registered for.
func (s *ServiceImplementation) RecentEventsForStudent(ctx context.Context, cache *Cache, studentUID string) ([]StudentEvent, string) {
	_ = s.LoadMyRegistrations(ctx, cache, studentUID)

	events, notice := s.events.ListEvents(ctx)
	if notice != "" {
		return []StudentEvent{}, NoticeEventsFailed
	}
	out := make([]StudentEvent, 0, len(events))
	for _, e := range events {
		out = append(out, StudentEvent{Event: e, Registered: cache.Has(e.ID)})
	}
	return out, ""
}
