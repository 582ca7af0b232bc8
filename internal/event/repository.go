package event

import (
	"context"
	"errors"
	"fmt"

	"maatram_portal_backend/internal/docstore"
)

// ErrEventNotFound is returned when events/{id} does not exist.
var ErrEventNotFound = errors.New("event not found")

// Repository defines persistence for events.
type Repository interface {
	FindAll(ctx context.Context) ([]Event, error)
	FindByOrganizer(ctx context.Context, organizerUID string) ([]Event, error)
	FindByID(ctx context.Context, id string) (*Event, error)
	Create(ctx context.Context, e *Event) (string, error)
}

// DocRepository implements Repository on the events collection.
type DocRepository struct {
	store docstore.Store
}

// NewDocRepository creates an event repository.
func NewDocRepository(store docstore.Store) Repository {
	return &DocRepository{store: store}
}

func (r *DocRepository) FindAll(ctx context.Context) ([]Event, error) {
	return r.query(ctx)
}

func (r *DocRepository) FindByOrganizer(ctx context.Context, organizerUID string) ([]Event, error) {
	return r.query(ctx, docstore.Eq("organizerUid", organizerUID))
}

func (r *DocRepository) FindByID(ctx context.Context, id string) (*Event, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionEvents, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("loading event %s: %w", id, err)
	}
	e := FromDocument(doc)
	return &e, nil
}

func (r *DocRepository) Create(ctx context.Context, e *Event) (string, error) {
	id, err := r.store.Add(ctx, docstore.CollectionEvents, e.fields())
	if err != nil {
		return "", fmt.Errorf("creating event: %w", err)
	}
	return id, nil
}

func (r *DocRepository) query(ctx context.Context, filters ...docstore.Filter) ([]Event, error) {
	docs, err := r.store.Query(ctx, docstore.CollectionEvents, filters...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	events := make([]Event, 0, len(docs))
	for _, d := range docs {
		events = append(events, FromDocument(d))
	}
	return events, nil
}
