// Package store defines the document-store contract the portal depends on:
// collection-scoped queries with equality predicates, descending created_at
// ordering, optional cursor continuation, and a server-side count. Backends
// implement the contract for MongoDB (default) and MySQL; nothing above this
// package knows which one is in use.
package store

import (
	"context"

	"publicpulse/models"
)

// Cursor marks the last record of a previously fetched page. Comparison is on
// the stored created_at text (the collection orders the raw strings), with
// the id breaking ties.
type Cursor struct {
	CreatedAt string
	ID        string
}

// Query describes one reports query. Empty predicate fields (or Region ==
// models.RegionAll) add no constraint. Results are always ordered by
// created_at descending, id descending.
type Query struct {
	Region     string
	Status     string
	Agency     string
	Importance string

	// StartAfter continues after the given record; nil starts from the top.
	StartAfter *Cursor

	// Limit caps the result size; 0 means no limit (full set).
	Limit int64
}

// Source is the reports collection as this service sees it.
type Source interface {
	// Query returns matching complaints in descending created_at order.
	Query(ctx context.Context, q Query) ([]models.Complaint, error)

	// Count returns the number of records matching the predicates only;
	// StartAfter and Limit are ignored.
	Count(ctx context.Context, q Query) (int64, error)

	// Insert stores a newly submitted complaint.
	Insert(ctx context.Context, c *models.Complaint) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// regionConstrained reports whether q names a single region.
func regionConstrained(q Query) bool {
	return q.Region != "" && q.Region != models.RegionAll
}
