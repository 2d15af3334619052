package mocks

import (
	"context"
	"sync"
	"time"

	"bookcart/domain/cart"

	"github.com/google/uuid"
)

// MockCartRepository in-memory cart repository.
//
// Each method is atomic under one mutex, mirroring the per-row atomicity
// of the real store: the unique constraints and the compare-and-set
// contract behave exactly as in MySQL, so the aggregation service's
// optimistic merge loop can be exercised concurrently in tests.
type MockCartRepository struct {
	mu    sync.Mutex
	carts map[string]*cart.Cart     // cart id -> cart
	items map[string]*cart.CartItem // item id -> item
}

// NewMockCartRepository creates an empty in-memory repository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]*cart.Cart),
		items: make(map[string]*cart.CartItem),
	}
}

func (r *MockCartRepository) FindByCustomer(ctx context.Context, customerID int64) (*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.carts {
		if c.CustomerID == customerID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, cart.ErrCartNotFound
}

func (r *MockCartRepository) CreateForCustomer(ctx context.Context, customerID int64) (*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Unique constraint on customer_id: a losing creator gets the winner's row.
	for _, c := range r.carts {
		if c.CustomerID == customerID {
			copied := *c
			return &copied, nil
		}
	}

	now := time.Now()
	c := &cart.Cart{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.carts[c.ID] = c

	copied := *c
	return &copied, nil
}

func (r *MockCartRepository) FindItem(ctx context.Context, cartID string, bookID int64) (*cart.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range r.items {
		if it.CartID == cartID && it.BookID == bookID {
			copied := *it
			return &copied, nil
		}
	}
	return nil, cart.ErrCartItemNotFound
}

func (r *MockCartRepository) FindItemByID(ctx context.Context, itemID string) (*cart.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, exists := r.items[itemID]
	if !exists {
		return nil, cart.NewCartItemNotFoundError(itemID)
	}
	copied := *it
	return &copied, nil
}

func (r *MockCartRepository) InsertItem(ctx context.Context, cartID string, bookID int64, quantity int) (*cart.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Composite unique index (cart_id, book_id)
	for _, it := range r.items {
		if it.CartID == cartID && it.BookID == bookID {
			return nil, cart.NewConcurrentModificationError(cartID, bookID)
		}
	}

	it := &cart.CartItem{
		ID:        uuid.New().String(),
		CartID:    cartID,
		BookID:    bookID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	}
	r.items[it.ID] = it

	copied := *it
	return &copied, nil
}

func (r *MockCartRepository) UpdateItemQuantity(ctx context.Context, itemID string, expectedQuantity, newQuantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, exists := r.items[itemID]
	if !exists {
		return cart.NewCartItemNotFoundError(itemID)
	}
	if it.Quantity != expectedQuantity {
		return cart.ErrConcurrentModification
	}
	it.Quantity = newQuantity
	return nil
}

func (r *MockCartRepository) DeleteItem(ctx context.Context, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[itemID]; !exists {
		return cart.NewCartItemNotFoundError(itemID)
	}
	delete(r.items, itemID)
	return nil
}

func (r *MockCartRepository) ListItems(ctx context.Context, cartID string) ([]cart.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var items []cart.CartItem
	for _, it := range r.items {
		if it.CartID == cartID {
			items = append(items, *it)
		}
	}
	return items, nil
}

// CartCount number of carts currently stored (test helper).
func (r *MockCartRepository) CartCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}

// ItemCount number of line items currently stored (test helper).
func (r *MockCartRepository) ItemCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

var _ cart.Repository = (*MockCartRepository)(nil)
