/*
Package catalog - read-only view of the book service's data.

The book service owns books; this service only ever sees snapshots: a
possibly stale copy obtained by a single remote call. Stock is never
mutated here, only read to bound cart quantities.
*/
package catalog

import (
	"context"
	"errors"
)

var (
	// ErrBookNotFound the book service authoritatively reports no such book
	ErrBookNotFound = errors.New("book not found")

	// ErrSourceUnavailable the lookup failed for transport reasons (timeout,
	// connection failure, malformed reply). Must never be collapsed into
	// ErrBookNotFound: a transient outage is not non-existence.
	ErrSourceUnavailable = errors.New("book source unavailable")
)

// BookSnapshot is the remote book record as of one lookup.
type BookSnapshot struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Price  float64 `json:"price"`
	Stock  int     `json:"stock"`
}

// BookSnapshotSource looks up books in the book service. Implementations
// make exactly one bounded network attempt per call; no retries, no
// caching across requests.
type BookSnapshotSource interface {
	// Get returns the snapshot, ErrBookNotFound, or ErrSourceUnavailable.
	Get(ctx context.Context, bookID int64) (*BookSnapshot, error)

	// Catalog returns all books, for listing pages. Not involved in cart
	// correctness.
	Catalog(ctx context.Context) ([]BookSnapshot, error)
}
