// Package docstore provides a narrow document-database abstraction: named
// collections of schemaless JSON documents with opaque string ids.
//
// Two backends are provided: a SQLite-backed store for persistent deployments
// and an in-memory store for development and tests. The in-memory store does
// not support range queries and reports ErrUnsupportedQuery for them, which
// callers handle by falling back to a full fetch with client-side filtering.
package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a document id does not exist in the
	// collection.
	ErrNotFound = errors.New("document not found")

	// ErrPermissionDenied is returned when the backend refuses the
	// operation, e.g. access-control misconfiguration.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnsupportedQuery is returned when the backend cannot service the
	// query shape (the document-database analogue of a missing index).
	ErrUnsupportedQuery = errors.New("unsupported query")
)

// Record is a fetched document together with its id.
type Record struct {
	ID   string
	Data map[string]any
}

// Range is an inclusive range predicate on a single numeric field.
type Range struct {
	Field string
	Min   any
	Max   any
}

// Query describes a collection read. The zero value fetches everything in
// unspecified order.
type Query struct {
	Range      *Range
	OrderBy    string
	Descending bool
	Limit      int
}

// Store is the narrow interface the rest of the application depends on.
// Implementations must be safe for concurrent use.
type Store interface {
	// Create persists a new document and returns its assigned id.
	Create(ctx context.Context, collection string, doc map[string]any) (string, error)

	// Get returns the document with the given id, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (map[string]any, error)

	// Update merges the given fields into an existing document.
	// Fields not mentioned are left untouched. Returns ErrNotFound when
	// the id does not exist.
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// Delete removes the document permanently. Deleting an absent id is
	// not an error.
	Delete(ctx context.Context, collection, id string) error

	// Query returns the records matching q.
	Query(ctx context.Context, collection string, q Query) ([]Record, error)

	// Close releases backend resources.
	Close() error
}
