/*
Package cart - cart domain errors.

Sentinel errors support errors.Is() checks; the constructors capture the
stack at the point the error was created (usually inside a repository or
the aggregation service), which the API layer extracts for logging.
*/
package cart

import (
	"errors"
	"fmt"

	"bookcart/domain/shared"
)

var (
	// ErrCartNotFound no cart exists for the customer yet
	ErrCartNotFound = errors.New("cart not found")

	// ErrCartItemNotFound the referenced line item does not exist
	ErrCartItemNotFound = errors.New("cart item not found")

	// ErrStockExceeded the merged quantity would exceed the book's stock
	ErrStockExceeded = errors.New("stock exceeded")

	// ErrConcurrentModification another writer changed the line item between
	// read and write; callers should re-read and retry
	ErrConcurrentModification = errors.New("cart item was modified by another request, please retry")

	// ErrInvalidQuantity quantity must be at least 1
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// StockExceededError reports how much was requested against how much the
// book service says is available, so callers can react without another
// round trip.
type StockExceededError struct {
	BookID    int64
	Requested int
	Available int
	stack     []uintptr
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("insufficient stock for book %d: requested %d, available %d",
		e.BookID, e.Requested, e.Available)
}

func (e *StockExceededError) Unwrap() error {
	return ErrStockExceeded
}

// Stack implements shared.Stacker.
func (e *StockExceededError) Stack() []string {
	return shared.FormatStack(e.stack)
}

// NewStockExceededError creates a stock exceeded error carrying the
// requested and available quantities.
func NewStockExceededError(bookID int64, requested, available int) error {
	return &StockExceededError{
		BookID:    bookID,
		Requested: requested,
		Available: available,
		stack:     shared.CaptureStack(3),
	}
}

// NewCartItemNotFoundError creates a line-item-not-found error.
func NewCartItemNotFoundError(itemID string) error {
	return &cartDomainError{
		sentinel: ErrCartItemNotFound,
		entity:   "cart_item",
		message:  "cart item not found: " + itemID,
		stack:    shared.CaptureStack(3),
	}
}

// NewConcurrentModificationError creates a concurrent modification error.
func NewConcurrentModificationError(cartID string, bookID int64) error {
	return &cartDomainError{
		sentinel: ErrConcurrentModification,
		entity:   "cart_item",
		message:  fmt.Sprintf("cart %s item for book %d was modified by another request, please retry", cartID, bookID),
		stack:    shared.CaptureStack(3),
	}
}

// NewInvalidQuantityError creates a validation error for a non-positive quantity.
func NewInvalidQuantityError(quantity int) error {
	return &cartDomainError{
		sentinel: ErrInvalidQuantity,
		entity:   "cart_item",
		field:    "quantity",
		message:  fmt.Sprintf("quantity must be at least 1, got %d", quantity),
		stack:    shared.CaptureStack(3),
	}
}

// cartDomainError implements error, Unwrap and shared.Stacker.
type cartDomainError struct {
	sentinel error
	entity   string
	field    string
	message  string
	stack    []uintptr
}

func (e *cartDomainError) Error() string {
	return e.message
}

func (e *cartDomainError) Unwrap() error {
	return e.sentinel
}

func (e *cartDomainError) Stack() []string {
	return shared.FormatStack(e.stack)
}
