package registration

import (
	"context"
	"errors"
	"fmt"

	"maatram_portal_backend/internal/docstore"
)

// ErrRegistrationNotFound is returned when registrations/{id} does not exist.
var ErrRegistrationNotFound = errors.New("registration not found")

// Repository defines persistence for registrations.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Registration, error)
	FindByStudent(ctx context.Context, studentUID string) ([]Registration, error)
	FindByEvent(ctx context.Context, eventID string) ([]Registration, error)
	FindByEventAndStudent(ctx context.Context, eventID, studentUID string) ([]Registration, error)
	CountByStudentAndStatus(ctx context.Context, studentUID string, status Status) (int, error)
	CountByEventAndStatus(ctx context.Context, eventID string, status Status) (int, error)
	Create(ctx context.Context, r *Registration) (string, error)
	// StampMessage sets lastMessage and a server-assigned lastNotifiedAt.
	StampMessage(ctx context.Context, id, message string) error
}

// DocRepository implements Repository on the registrations collection.
type DocRepository struct {
	store docstore.Store
}

// NewDocRepository creates a registration repository.
func NewDocRepository(store docstore.Store) Repository {
	return &DocRepository{store: store}
}

func (r *DocRepository) FindByID(ctx context.Context, id string) (*Registration, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionRegistrations, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("loading registration %s: %w", id, err)
	}
	reg := FromDocument(doc)
	return &reg, nil
}

func (r *DocRepository) FindByStudent(ctx context.Context, studentUID string) ([]Registration, error) {
	return r.query(ctx, docstore.Eq("studentUid", studentUID))
}

func (r *DocRepository) FindByEvent(ctx context.Context, eventID string) ([]Registration, error) {
	return r.query(ctx, docstore.Eq("eventId", eventID))
}

func (r *DocRepository) FindByEventAndStudent(ctx context.Context, eventID, studentUID string) ([]Registration, error) {
	return r.query(ctx, docstore.Eq("eventId", eventID), docstore.Eq("studentUid", studentUID))
}

func (r *DocRepository) CountByStudentAndStatus(ctx context.Context, studentUID string, status Status) (int, error) {
	regs, err := r.query(ctx, docstore.Eq("studentUid", studentUID), docstore.Eq("status", string(status)))
	return len(regs), err
}

func (r *DocRepository) CountByEventAndStatus(ctx context.Context, eventID string, status Status) (int, error) {
	regs, err := r.query(ctx, docstore.Eq("eventId", eventID), docstore.Eq("status", string(status)))
	return len(regs), err
}

func (r *DocRepository) Create(ctx context.Context, reg *Registration) (string, error) {
	id, err := r.store.Add(ctx, docstore.CollectionRegistrations, reg.fields())
	if err != nil {
		return "", fmt.Errorf("creating registration: %w", err)
	}
	return id, nil
}

func (r *DocRepository) StampMessage(ctx context.Context, id, message string) error {
	err := r.store.Update(ctx, docstore.CollectionRegistrations, id, map[string]interface{}{
		"lastMessage":    message,
		"lastNotifiedAt": docstore.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("stamping registration %s: %w", id, err)
	}
	return nil
}

func (r *DocRepository) query(ctx context.Context, filters ...docstore.Filter) ([]Registration, error) {
	docs, err := r.store.Query(ctx, docstore.CollectionRegistrations, filters...)
	if err != nil {
		return nil, fmt.Errorf("querying registrations: %w", err)
	}
	regs := make([]Registration, 0, len(docs))
	for _, d := range docs {
		regs = append(regs, FromDocument(d))
	}
	return regs, nil
}
