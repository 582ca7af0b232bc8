package notification

import (
	"context"
	"sort"

	"maatram_portal_backend/internal/event"
	"maatram_portal_backend/internal/profile"
	"maatram_portal_backend/internal/registration"

	"go.uber.org/zap"
)

// RegistrationCounter is the read side of the registration store used here.
type RegistrationCounter interface {
	FindByStudent(ctx context.Context, studentUID string) ([]registration.Registration, error)
	CountByStudentAndStatus(ctx context.Context, studentUID string, status registration.Status) (int, error)
	CountByEventAndStatus(ctx context.Context, eventID string, status registration.Status) (int, error)
}

// EventLister lists events for organizer badges and inbox titles.
type EventLister interface {
	ListEvents(ctx context.Context) ([]event.Event, string)
	ListEventsByOrganizer(ctx context.Context, organizerUID string) ([]event.Event, string)
	GetEvent(ctx context.Context, id string) (*event.Event, error)
}

// Service defines notification operations. Failures degrade to empty
// results and are only logged.
type Service interface {
	Summary(ctx context.Context, p *profile.UserProfile) Summary
	Inbox(ctx context.Context, studentUID string) []InboxItem
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	regs   RegistrationCounter
	events EventLister
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a notification service.
func NewService(regs RegistrationCounter, events EventLister, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{regs: regs, events: events, logger: logger.Named("NotificationService")}
}

// Summary counts approved registrations for students and pending
// registrations for organizers. Organizers see their own events; superadmins
// see every event.
func (s *ServiceImplementation) Summary(ctx context.Context, p *profile.UserProfile) Summary {
	out := Summary{Role: p.Role}
	switch p.Role {
	case profile.RoleStudent:
		out.Kind = KindApprovedRegistrations
		n, err := s.regs.CountByStudentAndStatus(ctx, p.UID, registration.StatusApproved)
		if err != nil {
			s.logger.Warn("Counting approved registrations failed", zap.String("uid", p.UID), zap.Error(err))
			return out
		}
		out.Count = n
	case profile.RoleOrganizer, profile.RoleSuperadmin:
		out.Kind = KindPendingApprovals
		var events []event.Event
		var notice string
		if p.Role == profile.RoleSuperadmin {
			events, notice = s.events.ListEvents(ctx)
		} else {
			events, notice = s.events.ListEventsByOrganizer(ctx, p.UID)
		}
		if notice != "" {
			return out
		}
		for _, e := range events {
			n, err := s.regs.CountByEventAndStatus(ctx, e.ID, registration.StatusPending)
			if err != nil {
				s.logger.Warn("Counting pending registrations failed", zap.String("eventId", e.ID), zap.Error(err))
				return Summary{Role: p.Role, Kind: KindPendingApprovals}
			}
			out.Count += n
		}
	default:
		out.Kind = KindNone
	}
	return out
}

// Inbox returns the student's registrations that carry a message, newest first.
func (s *ServiceImplementation) Inbox(ctx context.Context, studentUID string) []InboxItem {
	regs, err := s.regs.FindByStudent(ctx, studentUID)
	if err != nil {
		s.logger.Warn("Loading inbox failed", zap.String("uid", studentUID), zap.Error(err))
		return []InboxItem{}
	}

	items := []InboxItem{}
	titles := map[string]string{}
	for _, r := range regs {
		if r.LastMessage == "" {
			continue
		}
		title, ok := titles[r.EventID]
		if !ok {
			if ev, err := s.events.GetEvent(ctx, r.EventID); err == nil {
				title = ev.Title
			}
			titles[r.EventID] = title
		}
		items = append(items, InboxItem{
			RegistrationID: r.ID,
			EventID:        r.EventID,
			EventTitle:     title,
			Message:        r.LastMessage,
			NotifiedAt:     r.LastNotifiedAt,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].NotifiedAt, items[j].NotifiedAt
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})
	return items
}
