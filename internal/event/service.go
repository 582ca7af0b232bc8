package event

import (
	"context"
	"errors"
	"sort"
	"strings"

	"maatram_portal_backend/internal/common"
	"maatram_portal_backend/internal/profile"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

const (
	NoticeListFailed        = "Unable to load events (permission)."
	NoticeOrganizerListFail = "Unable to load your events (permission)."
	NoticeCreateFailed      = "Failed to create event"

	searchResultSize = 50
)

// ErrSearchDisabled is returned by SearchEvents when no search index is configured.
var ErrSearchDisabled = errors.New("event search is not configured")

// SearchIndex is the full-text index events are mirrored into.
type SearchIndex interface {
	Index(ctx context.Context, id string, doc interface{}) error
	Search(ctx context.Context, query string, size int) ([]string, error)
}

// Service defines event operations. List operations never fail: a read error
// yields an empty list and a notice.
type Service interface {
	ListEvents(ctx context.Context) ([]Event, string)
	ListEventsByOrganizer(ctx context.Context, organizerUID string) ([]Event, string)
	CreateEvent(ctx context.Context, organizer *profile.UserProfile, req CreateEventRequest) (string, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	SearchEvents(ctx context.Context, query string) ([]Event, error)
	ReindexAll(ctx context.Context) (int, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo   Repository
	index  SearchIndex
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates an event service. index may be nil.
func NewService(repo Repository, index SearchIndex, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, index: index, logger: logger.Named("EventService")}
}

func (s *ServiceImplementation) ListEvents(ctx context.Context) ([]Event, string) {
	events, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Listing events failed", zap.Error(err))
		return []Event{}, NoticeListFailed
	}
	SortNewestFirst(events)
	return events, ""
}

func (s *ServiceImplementation) ListEventsByOrganizer(ctx context.Context, organizerUID string) ([]Event, string) {
	events, err := s.repo.FindByOrganizer(ctx, organizerUID)
	if err != nil {
		s.logger.Error("Listing organizer events failed", zap.String("organizerUid", organizerUID), zap.Error(err))
		return []Event{}, NoticeOrganizerListFail
	}
	SortNewestFirst(events)
	return events, ""
}

func (s *ServiceImplementation) CreateEvent(ctx context.Context, organizer *profile.UserProfile, req CreateEventRequest) (string, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Untitled"
	}
	e := &Event{
		Title:         title,
		Slug:          slug.Make(title),
		Date:          strings.TrimSpace(req.Date),
		Time:          strings.TrimSpace(req.Time),
		Location:      strings.TrimSpace(req.Location),
		Description:   strings.TrimSpace(req.Description),
		Limit:         req.Limit,
		AutoApprove:   req.AutoApprove,
		OrganizerUID:  organizer.UID,
		OrganizerName: organizer.Name,
	}

	id, err := s.repo.Create(ctx, e)
	if err != nil {
		s.logger.Error("Creating event failed", zap.String("organizerUid", organizer.UID), zap.Error(err))
		return "", &common.NoticeError{Notice: NoticeCreateFailed, Err: err}
	}
	e.ID = id
	s.logger.Info("Event created", zap.String("eventId", id), zap.String("organizerUid", organizer.UID))

	if s.index != nil {
		if created, err := s.repo.FindByID(ctx, id); err == nil {
			e = created
		}
		if err := s.index.Index(ctx, id, e.searchDocument()); err != nil {
			s.logger.Warn("Indexing new event failed", zap.String("eventId", id), zap.Error(err))
		}
	}
	return id, nil
}

func (s *ServiceImplementation) GetEvent(ctx context.Context, id string) (*Event, error) {
	return s.repo.FindByID(ctx, id)
}

// SearchEvents returns events matching query in relevance order. Ids the index
// knows but the store does not are skipped.
func (s *ServiceImplementation) SearchEvents(ctx context.Context, query string) ([]Event, error) {
	if s.index == nil {
		return nil, ErrSearchDisabled
	}
	ids, err := s.index.Search(ctx, query, searchResultSize)
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(ids))
	for _, id := range ids {
		e, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if !errors.Is(err, ErrEventNotFound) {
				s.logger.Warn("Loading search hit failed", zap.String("eventId", id), zap.Error(err))
			}
			continue
		}
		events = append(events, *e)
	}
	return events, nil
}

// ReindexAll mirrors every stored event into the search index.
func (s *ServiceImplementation) ReindexAll(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, ErrSearchDisabled
	}
	events, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	indexed := 0
	for i := range events {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}
		if err := s.index.Index(ctx, events[i].ID, events[i].searchDocument()); err != nil {
			s.logger.Warn("Reindexing event failed", zap.String("eventId", events[i].ID), zap.Error(err))
			continue
		}
		indexed++
	}
	return indexed, nil
}

// SortNewestFirst orders events by createdAt descending. Events without a
// timestamp sort last.
func SortNewestFirst(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
}
