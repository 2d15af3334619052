package cart

import "context"

// Repository is the persistence port for carts and line items.
//
// The store guarantees atomicity only per row mutation; it deliberately
// offers no check-and-act primitive spanning a read and a write. The
// compare-and-set contract on UpdateItemQuantity (and the unique-index
// failure mode of InsertItem) is what lets the aggregation service merge
// quantities without lost updates: a writer that loses the race gets
// ErrConcurrentModification, re-reads and retries.
type Repository interface {
	// FindByCustomer returns the customer's cart or ErrCartNotFound.
	FindByCustomer(ctx context.Context, customerID int64) (*Cart, error)

	// CreateForCustomer creates the customer's cart. Concurrent first-time
	// creators race down to a single winner via the unique index on
	// customer_id; losers receive the winner's row.
	CreateForCustomer(ctx context.Context, customerID int64) (*Cart, error)

	// FindItem returns the (cart, book) line item or ErrCartItemNotFound.
	FindItem(ctx context.Context, cartID string, bookID int64) (*CartItem, error)

	// FindItemByID returns the line item or ErrCartItemNotFound.
	FindItemByID(ctx context.Context, itemID string) (*CartItem, error)

	// InsertItem creates a new line item. If a row for (cartID, bookID)
	// appeared since the caller's read, it fails with
	// ErrConcurrentModification instead of merging silently.
	InsertItem(ctx context.Context, cartID string, bookID int64, quantity int) (*CartItem, error)

	// UpdateItemQuantity sets the line item's quantity only if it still
	// equals expectedQuantity. A stale expectation yields
	// ErrConcurrentModification; a vanished row yields ErrCartItemNotFound.
	UpdateItemQuantity(ctx context.Context, itemID string, expectedQuantity, newQuantity int) error

	// DeleteItem removes the line item, ErrCartItemNotFound when absent.
	DeleteItem(ctx context.Context, itemID string) error

	// ListItems returns all line items of a cart.
	ListItems(ctx context.Context, cartID string) ([]CartItem, error)
}
