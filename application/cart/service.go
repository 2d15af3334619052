/*
Package cart Application Layer - cart aggregation over remote ownership.

This service owns no book or customer data. Every operation validates
against live lookups into the services that do own it (customer identity,
book stock and price) and only then touches the cart store. There is no
shared transaction with those services, so:

  - every remote lookup is a fresh read, never cached across requests;
  - stock checks are advisory snapshots, enforced at merge time;
  - the quantity merge uses the store's compare-and-set contract inside a
    bounded retry loop, so concurrent adds for the same (customer, book)
    compose instead of overwriting each other.
*/
package cart

import (
	"context"
	"errors"
	"fmt"

	domaincart "bookcart/domain/cart"
	"bookcart/domain/catalog"
	"bookcart/domain/identity"
	"bookcart/infrastructure/persistence/retry"
	"bookcart/pkg/logger"

	"go.uber.org/zap"
)

// ApplicationService coordinates cart operations against the cart store
// and the two remote sources. All dependencies are injected; the service
// itself is stateless.
type ApplicationService struct {
	repo      domaincart.Repository
	books     catalog.BookSnapshotSource
	customers identity.IdentitySource
	retryCfg  retry.Config
}

// NewApplicationService creates the cart aggregation service.
func NewApplicationService(
	repo domaincart.Repository,
	books catalog.BookSnapshotSource,
	customers identity.IdentitySource,
	retryCfg retry.Config,
) *ApplicationService {
	return &ApplicationService{
		repo:      repo,
		books:     books,
		customers: customers,
		retryCfg:  retryCfg,
	}
}

// checkCustomer validates customer existence against the customer service.
func (s *ApplicationService) checkCustomer(ctx context.Context, customerID int64) error {
	exists, err := s.customers.Exists(ctx, customerID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %d", identity.ErrCustomerNotFound, customerID)
	}
	return nil
}

// getOrCreateCart resolves the customer's cart, creating it on first use.
// The repository's unique constraint makes concurrent first-time creators
// converge on a single cart.
func (s *ApplicationService) getOrCreateCart(ctx context.Context, customerID int64) (*domaincart.Cart, error) {
	c, err := s.repo.FindByCustomer(ctx, customerID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, domaincart.ErrCartNotFound) {
		return nil, err
	}
	return s.repo.CreateForCustomer(ctx, customerID)
}

// GetOrCreateCart returns the customer's cart, creating an empty one on
// first use. Idempotent: the same customer always gets the same cart id.
func (s *ApplicationService) GetOrCreateCart(ctx context.Context, customerID int64) (*CartResponse, error) {
	if err := s.checkCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	c, err := s.getOrCreateCart(ctx, customerID)
	if err != nil {
		return nil, err
	}

	return &CartResponse{
		ID:         c.ID,
		CustomerID: c.CustomerID,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}, nil
}

// AddItem merges quantity into the customer's cart line for the book.
//
// The stock bound applies to the merged total, not just the increment:
// with 3 of a stock-5 book already in the cart, adding 3 more fails and
// leaves the stored quantity untouched. The merge itself runs under the
// store's compare-and-set contract with bounded retries, so concurrent
// adds never lose updates; the book snapshot is fetched once per call and
// reused across retry attempts.
func (s *ApplicationService) AddItem(ctx context.Context, customerID, bookID int64, quantity int) (*CartItemResponse, error) {
	if quantity < 1 {
		return nil, domaincart.NewInvalidQuantityError(quantity)
	}

	if err := s.checkCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	snapshot, err := s.books.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}

	c, err := s.getOrCreateCart(ctx, customerID)
	if err != nil {
		return nil, err
	}

	var merged *domaincart.CartItem
	err = retry.ExecuteWithRetry(ctx, s.retryCfg, func(ctx context.Context) error {
		existing, err := s.repo.FindItem(ctx, c.ID, bookID)
		currentQuantity := 0
		if err == nil {
			currentQuantity = existing.Quantity
		} else if !errors.Is(err, domaincart.ErrCartItemNotFound) {
			return err
		}

		newTotal := currentQuantity + quantity
		if newTotal > snapshot.Stock {
			return domaincart.NewStockExceededError(bookID, newTotal, snapshot.Stock)
		}

		if currentQuantity == 0 {
			created, err := s.repo.InsertItem(ctx, c.ID, bookID, newTotal)
			if err != nil {
				return err
			}
			merged = created
			return nil
		}

		if err := s.repo.UpdateItemQuantity(ctx, existing.ID, currentQuantity, newTotal); err != nil {
			return err
		}
		existing.Quantity = newTotal
		merged = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CartItemResponse{
		ID:        merged.ID,
		BookID:    merged.BookID,
		Quantity:  merged.Quantity,
		Available: true,
		BookInfo: &BookInfo{
			ID:     snapshot.ID,
			Title:  snapshot.Title,
			Author: snapshot.Author,
			Price:  snapshot.Price,
		},
		LineTotal: snapshot.Price * float64(merged.Quantity),
		CreatedAt: merged.CreatedAt,
	}, nil
}

// RemoveItem deletes one line item by id. A second removal of the same id
// reports cart item not found rather than silently succeeding.
func (s *ApplicationService) RemoveItem(ctx context.Context, itemID string) error {
	return s.repo.DeleteItem(ctx, itemID)
}

// ViewCart renders the customer's cart with live prices.
//
// Each line triggers one book lookup. A failed lookup - whether the book
// vanished or the book service is down - degrades that line to
// "unavailable" with zero contribution to the total instead of failing
// the whole view. The total therefore covers exactly the successfully
// resolved lines.
func (s *ApplicationService) ViewCart(ctx context.Context, customerID int64) (*CartViewResponse, error) {
	if err := s.checkCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	c, err := s.getOrCreateCart(ctx, customerID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	view := &CartViewResponse{
		ID:         c.ID,
		CustomerID: c.CustomerID,
		Items:      make([]CartItemResponse, 0, len(items)),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}

	for _, item := range items {
		line := CartItemResponse{
			ID:        item.ID,
			BookID:    item.BookID,
			Quantity:  item.Quantity,
			CreatedAt: item.CreatedAt,
		}

		snapshot, err := s.books.Get(ctx, item.BookID)
		if err != nil {
			logger.Warn("Book lookup failed during cart view, rendering line as unavailable",
				zap.Int64("book_id", item.BookID),
				zap.String("cart_id", c.ID),
				zap.Error(err))
			line.Available = false
		} else {
			line.Available = true
			line.BookInfo = &BookInfo{
				ID:     snapshot.ID,
				Title:  snapshot.Title,
				Author: snapshot.Author,
				Price:  snapshot.Price,
			}
			line.LineTotal = snapshot.Price * float64(item.Quantity)
			view.Total += line.LineTotal
		}

		view.Items = append(view.Items, line)
	}

	return view, nil
}

// CatalogBooks proxies the book service catalog for listing pages.
func (s *ApplicationService) CatalogBooks(ctx context.Context) ([]catalog.BookSnapshot, error) {
	return s.books.Catalog(ctx)
}
