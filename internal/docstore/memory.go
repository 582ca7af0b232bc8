package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"
)

// MemoryStore keeps documents in process memory. Used for local runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]map[string]map[string]interface{}
	clock func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the clock used to resolve ServerTimestamp.
func WithClock(clock func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.clock = clock }
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		data:  make(map[string]map[string]map[string]interface{}),
		clock: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fields, ok := s.data[collection][id]
	if !ok {
		return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return Document{ID: id, Data: copyFields(fields, time.Time{})}, nil
}

// Query returns matching documents ordered by id so results are stable.
func (s *MemoryStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Document
	for id, fields := range s.data[collection] {
		doc := Document{ID: id, Data: fields}
		if matchesAll(doc, filters) {
			out = append(out, Document{ID: id, Data: copyFields(fields, time.Time{})})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Add(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := xid.New().String()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection(collection)[id] = copyFields(fields, s.clock())
	return id, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection(collection)[id] = copyFields(fields, s.clock())
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.data[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	for k, v := range copyFields(fields, s.clock()) {
		existing[k] = v
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Count returns the number of documents in a collection.
func (s *MemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[collection])
}

func (s *MemoryStore) collection(name string) map[string]map[string]interface{} {
	c, ok := s.data[name]
	if !ok {
		c = make(map[string]map[string]interface{})
		s.data[name] = c
	}
	return c
}
