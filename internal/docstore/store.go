// Package docstore is the schema-less document store behind users, events,
// registrations and messages. Backends: Firestore, GORM and in-memory.
package docstore

import (
	"context"
	"errors"
	"reflect"
)

// Collection names.
const (
	CollectionUsers         = "users"
	CollectionEvents        = "events"
	CollectionRegistrations = "registrations"
	CollectionMessages      = "messages"
)

// ErrNotFound is returned by Get and Update when the document does not exist.
var ErrNotFound = errors.New("document not found")

type sentinel string

// ServerTimestamp is a field value the backend replaces with its own clock at write time.
const ServerTimestamp = sentinel("server_timestamp")

// Store is the document store contract. Filters passed to Query are ANDed.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	// Add inserts fields under a generated id and returns it.
	Add(ctx context.Context, collection string, fields map[string]interface{}) (string, error)
	// Set inserts or overwrites the whole document atomically.
	Set(ctx context.Context, collection, id string, fields map[string]interface{}) error
	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Close() error
}

// Filter is an equality filter on one top-level field.
type Filter struct {
	Field string
	Value interface{}
}

// Eq builds an equality filter.
func Eq(field string, value interface{}) Filter {
	return Filter{Field: field, Value: value}
}

// Matches reports whether d satisfies the filter. Numbers compare by value
// regardless of their concrete Go type.
func (f Filter) Matches(d Document) bool {
	v, ok := d.Data[f.Field]
	if !ok {
		return false
	}
	return equalValues(v, f.Value)
}

func matchesAll(d Document, filters []Filter) bool {
	for _, f := range filters {
		if !f.Matches(d) {
			return false
		}
	}
	return true
}

func equalValues(a, b interface{}) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}
