package profile

import (
	"context"
	"errors"
	"fmt"

	"maatram_portal_backend/internal/docstore"
)

// ErrProfileNotFound is returned when users/{uid} does not exist.
var ErrProfileNotFound = errors.New("user profile not found")

// Repository defines persistence for user profiles.
type Repository interface {
	FindByUID(ctx context.Context, uid string) (*UserProfile, error)
	// Create writes the whole profile in one atomic write.
	Create(ctx context.Context, p *UserProfile) error
	Update(ctx context.Context, uid string, fields map[string]interface{}) error
}

// DocRepository implements Repository on the users collection.
type DocRepository struct {
	store docstore.Store
}

// NewDocRepository creates a profile repository.
func NewDocRepository(store docstore.Store) Repository {
	return &DocRepository{store: store}
}

func (r *DocRepository) FindByUID(ctx context.Context, uid string) (*UserProfile, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionUsers, uid)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("loading profile %s: %w", uid, err)
	}
	return FromDocument(doc), nil
}

func (r *DocRepository) Create(ctx context.Context, p *UserProfile) error {
	if err := r.store.Set(ctx, docstore.CollectionUsers, p.UID, p.Fields()); err != nil {
		return fmt.Errorf("creating profile %s: %w", p.UID, err)
	}
	return nil
}

func (r *DocRepository) Update(ctx context.Context, uid string, fields map[string]interface{}) error {
	if err := r.store.Update(ctx, docstore.CollectionUsers, uid, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("updating profile %s: %w", uid, err)
	}
	return nil
}
