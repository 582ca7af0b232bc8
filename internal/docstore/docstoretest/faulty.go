// Package docstoretest provides a document store wrapper that injects failures.
package docstoretest

import (
	"context"
	"sync"

	"maatram_portal_backend/internal/docstore"
)

type opKey struct {
	op         string
	collection string
	id         string
}

// FaultyStore delegates to an inner store and fails the operations it is told to.
type FaultyStore struct {
	docstore.Store

	mu     sync.Mutex
	faults map[opKey]error
	calls  map[string]int
}

// Wrap returns a FaultyStore around inner.
func Wrap(inner docstore.Store) *FaultyStore {
	return &FaultyStore{Store: inner, faults: map[opKey]error{}, calls: map[string]int{}}
}

// FailGet makes Get on collection/id fail. An empty id matches every document.
func (f *FaultyStore) FailGet(collection, id string, err error) { f.set("get", collection, id, err) }

// FailQuery makes every Query on collection fail.
func (f *FaultyStore) FailQuery(collection string, err error) { f.set("query", collection, "", err) }

// FailAdd makes every Add on collection fail.
func (f *FaultyStore) FailAdd(collection string, err error) { f.set("add", collection, "", err) }

// FailSet makes Set on collection/id fail. An empty id matches every document.
func (f *FaultyStore) FailSet(collection, id string, err error) { f.set("set", collection, id, err) }

// FailUpdate makes Update on collection/id fail. An empty id matches every document.
func (f *FaultyStore) FailUpdate(collection, id string, err error) { f.set("update", collection, id, err) }

// Calls reports how many times op ("get", "query", "add", "set", "update") was invoked.
func (f *FaultyStore) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FaultyStore) set(op, collection, id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[opKey{op, collection, id}] = err
}

func (f *FaultyStore) check(op, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if err, ok := f.faults[opKey{op, collection, id}]; ok {
		return err
	}
	return f.faults[opKey{op, collection, ""}]
}

func (f *FaultyStore) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := f.check("get", collection, id); err != nil {
		return docstore.Document{}, err
	}
	return f.Store.Get(ctx, collection, id)
}

func (f *FaultyStore) Query(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	if err := f.check("query", collection, ""); err != nil {
		return nil, err
	}
	return f.Store.Query(ctx, collection, filters...)
}

func (f *FaultyStore) Add(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	if err := f.check("add", collection, ""); err != nil {
		return "", err
	}
	return f.Store.Add(ctx, collection, fields)
}

func (f *FaultyStore) Set(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	if err := f.check("set", collection, id); err != nil {
		return err
	}
	return f.Store.Set(ctx, collection, id, fields)
}

func (f *FaultyStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	if err := f.check("update", collection, id); err != nil {
		return err
	}
	return f.Store.Update(ctx, collection, id, fields)
}
