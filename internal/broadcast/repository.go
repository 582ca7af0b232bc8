package broadcast

import (
	"context"
	"fmt"
	"sort"

	"maatram_portal_backend/internal/docstore"
)

// Repository stores broadcast audit records.
type Repository interface {
	Create(ctx context.Context, eventID, message, senderUID string) (string, error)
	FindByEvent(ctx context.Context, eventID string) ([]Message, error)
}

// DocRepository implements Repository on the messages collection.
type DocRepository struct {
	store docstore.Store
}

// NewDocRepository creates a message repository.
func NewDocRepository(store docstore.Store) Repository {
	return &DocRepository{store: store}
}

func (r *DocRepository) Create(ctx context.Context, eventID, message, senderUID string) (string, error) {
	id, err := r.store.Add(ctx, docstore.CollectionMessages, map[string]interface{}{
		"eventId":   eventID,
		"message":   message,
		"senderUid": senderUID,
		"sentAt":    docstore.ServerTimestamp,
	})
	if err != nil {
		return "", fmt.Errorf("writing message audit record: %w", err)
	}
	return id, nil
}

// FindByEvent returns the event's broadcasts, newest first.
func (r *DocRepository) FindByEvent(ctx context.Context, eventID string) ([]Message, error) {
	docs, err := r.store.Query(ctx, docstore.CollectionMessages, docstore.Eq("eventId", eventID))
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	out := make([]Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, FromDocument(d))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	return out, nil
}
