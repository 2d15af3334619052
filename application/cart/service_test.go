package cart_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	cartapp "bookcart/application/cart"
	domaincart "bookcart/domain/cart"
	"bookcart/domain/catalog"
	"bookcart/domain/identity"
	"bookcart/infrastructure/persistence/mocks"
	"bookcart/infrastructure/persistence/retry"

	"golang.org/x/sync/errgroup"
)

// fakeBookSource serves book snapshots from a fixed map. Setting err
// simulates a full book service outage; perBookErr fails single lookups.
type fakeBookSource struct {
	books      map[int64]catalog.BookSnapshot
	err        error
	perBookErr map[int64]error
}

func (f *fakeBookSource) Get(ctx context.Context, bookID int64) (*catalog.BookSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err, ok := f.perBookErr[bookID]; ok {
		return nil, err
	}
	b, ok := f.books[bookID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", catalog.ErrBookNotFound, bookID)
	}
	copied := b
	return &copied, nil
}

func (f *fakeBookSource) Catalog(ctx context.Context) ([]catalog.BookSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]catalog.BookSnapshot, 0, len(f.books))
	for _, b := range f.books {
		out = append(out, b)
	}
	return out, nil
}

// fakeIdentitySource knows a fixed set of customers. Setting err
// simulates a customer service outage.
type fakeIdentitySource struct {
	customers map[int64]bool
	err       error
}

func (f *fakeIdentitySource) Exists(ctx context.Context, customerID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.customers[customerID], nil
}

const (
	knownCustomer = int64(7)
	knownBook     = int64(42)
)

func testRetryConfig() retry.Config {
	return retry.Config{
		Enabled:       true,
		MaxAttempts:   50,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
		JitterEnabled: true,
	}
}

func newTestService(books *fakeBookSource, customers *fakeIdentitySource) (*cartapp.ApplicationService, *mocks.MockCartRepository) {
	if books == nil {
		books = &fakeBookSource{books: map[int64]catalog.BookSnapshot{
			knownBook: {ID: knownBook, Title: "The Go Programming Language", Author: "Donovan & Kernighan", Price: 39.99, Stock: 10},
		}}
	}
	if customers == nil {
		customers = &fakeIdentitySource{customers: map[int64]bool{knownCustomer: true}}
	}
	repo := mocks.NewMockCartRepository()
	return cartapp.NewApplicationService(repo, books, customers, testRetryConfig()), repo
}

func TestGetOrCreateCart_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(nil, nil)

	first, err := svc.GetOrCreateCart(ctx, knownCustomer)
	if err != nil {
		t.Fatalf("First GetOrCreateCart failed: %v", err)
	}
	second, err := svc.GetOrCreateCart(ctx, knownCustomer)
	if err != nil {
		t.Fatalf("Second GetOrCreateCart failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("Expected the same cart id, got %s and %s", first.ID, second.ID)
	}
	if first.CustomerID != knownCustomer {
		t.Errorf("Expected customer id %d, got %d", knownCustomer, first.CustomerID)
	}
	if repo.CartCount() != 1 {
		t.Errorf("Expected exactly 1 cart stored, got %d", repo.CartCount())
	}
}

func TestGetOrCreateCart_ConcurrentSingleCart(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(nil, nil)

	const N = 50
	ids := make(map[string]struct{})
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < N; i++ {
		g.Go(func() error {
			resp, err := svc.GetOrCreateCart(ctx, knownCustomer)
			if err != nil {
				return err
			}
			mu.Lock()
			ids[resp.ID] = struct{}{}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("Concurrent GetOrCreateCart failed: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("Expected exactly 1 cart id, got %d: %+v", len(ids), ids)
	}
	if repo.CartCount() != 1 {
		t.Errorf("Expected exactly 1 cart stored, got %d", repo.CartCount())
	}
}

func TestGetOrCreateCart_UnknownCustomer(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(nil, nil)

	_, err := svc.GetOrCreateCart(ctx, 999)
	if !errors.Is(err, identity.ErrCustomerNotFound) {
		t.Fatalf("Expected ErrCustomerNotFound, got %v", err)
	}
	if repo.CartCount() != 0 {
		t.Errorf("No cart should be created for an unknown customer, got %d", repo.CartCount())
	}
}

func TestGetOrCreateCart_IdentityUnavailable(t *testing.T) {
	ctx := context.Background()
	customers := &fakeIdentitySource{err: fmt.Errorf("%w: connection refused", identity.ErrSourceUnavailable)}
	svc, _ := newTestService(nil, customers)

	_, err := svc.GetOrCreateCart(ctx, knownCustomer)
	if !errors.Is(err, identity.ErrSourceUnavailable) {
		t.Fatalf("Expected ErrSourceUnavailable, got %v", err)
	}
}

func TestAddItem_MergesQuantities(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(nil, nil)

	first, err := svc.AddItem(ctx, knownCustomer, knownBook, 2)
	if err != nil {
		t.Fatalf("First AddItem failed: %v", err)
	}
	if first.Quantity != 2 {
		t.Errorf("Expected quantity 2, got %d", first.Quantity)
	}

	second, err := svc.AddItem(ctx, knownCustomer, knownBook, 3)
	if err != nil {
		t.Fatalf("Second AddItem failed: %v", err)
	}
	if second.Quantity != 5 {
		t.Errorf("Expected merged quantity 5, got %d", second.Quantity)
	}
	if second.ID != first.ID {
		t.Errorf("Merge should reuse the same line item, got %s and %s", first.ID, second.ID)
	}
	if repo.ItemCount() != 1 {
		t.Errorf("Expected exactly 1 line item stored, got %d", repo.ItemCount())
	}

	if second.BookInfo == nil {
		t.Fatal("Expected book info on the response")
	}
	wantTotal := 39.99 * 5
	if second.LineTotal != wantTotal {
		t.Errorf("Expected line total %.2f, got %.2f", wantTotal, second.LineTotal)
	}
}

func TestAddItem_StockExceededLeavesQuantityUnchanged(t *testing.T) {
	ctx := context.Background()
	books := &fakeBookSource{books: map[int64]catalog.BookSnapshot{
		knownBook: {ID: knownBook, Title: "Rare Print", Author: "Anon", Price: 120.00, Stock: 5},
	}}
	svc, _ := newTestService(books, nil)

	if _, err := svc.AddItem(ctx, knownCustomer, knownBook, 3); err != nil {
		t.Fatalf("AddItem within stock failed: %v", err)
	}

	_, err := svc.AddItem(ctx, knownCustomer, knownBook, 3)
	if !errors.Is(err, domaincart.ErrStockExceeded) {
		t.Fatalf("Expected ErrStockExceeded, got %v", err)
	}

	var stockErr *domaincart.StockExceededError
	if !errors.As(err, &stockErr) {
		t.Fatalf("Expected *StockExceededError, got %T", err)
	}
	if stockErr.Requested != 6 || stockErr.Available != 5 {
		t.Errorf("Expected requested=6 available=5, got requested=%d available=%d",
			stockErr.Requested, stockErr.Available)
	}

	// The stored quantity must be untouched by the failed merge
	view, err := svc.ViewCart(ctx, knownCustomer)
	if err != nil {
		t.Fatalf("ViewCart failed: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 3 {
		t.Errorf("Expected the line to keep quantity 3, got %+v", view.Items)
	}
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(nil, nil)

	for _, quantity := range []int{0, -1, -10} {
		_, err := svc.AddItem(ctx, knownCustomer, knownBook, quantity)
		if !errors.Is(err, domaincart.ErrInvalidQuantity) {
			t.Errorf("Quantity %d: expected ErrInvalidQuantity, got %v", quantity, err)
		}
	}
	if repo.ItemCount() != 0 {
		t.Errorf("No items should be stored after invalid requests, got %d", repo.ItemCount())
	}
}

func TestAddItem_UnknownBook(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(nil, nil)

	_, err := svc.AddItem(ctx, knownCustomer, 555, 1)
	if !errors.Is(err, catalog.ErrBookNotFound) {
		t.Fatalf("Expected ErrBookNotFound, got %v", err)
	}
	if repo.ItemCount() != 0 {
		t.Errorf("No items should be stored for an unknown book, got %d", repo.ItemCount())
	}
}

func TestAddItem_BookSourceUnavailable(t *testing.T) {
	ctx := context.Background()
	books := &fakeBookSource{err: fmt.Errorf("%w: timeout", catalog.ErrSourceUnavailable)}
	svc, _ := newTestService(books, nil)

	_, err := svc.AddItem(ctx, knownCustomer, knownBook, 1)
	if !errors.Is(err, catalog.ErrSourceUnavailable) {
		t.Fatalf("Expected ErrSourceUnavailable, got %v", err)
	}
}

func TestAddItem_ConcurrentNoLostUpdates(t *testing.T) {
	ctx := context.Background()
	books := &fakeBookSource{books: map[int64]catalog.BookSnapshot{
		knownBook: {ID: knownBook, Title: "Bulk Title", Author: "Anon", Price: 10.00, Stock: 100},
	}}
	svc, repo := newTestService(books, nil)

	const N = 20
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < N; i++ {
		g.Go(func() error {
			_, err := svc.AddItem(gctx, knownCustomer, knownBook, 1)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Concurrent AddItem failed: %v", err)
	}

	view, err := svc.ViewCart(ctx, knownCustomer)
	if err != nil {
		t.Fatalf("ViewCart failed: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("Expected a single merged line, got %d", len(view.Items))
	}
	if got := view.Items[0].Quantity; got != N {
		t.Errorf("Expected quantity %d after %d concurrent adds, got %d", N, N, got)
	}
	if repo.ItemCount() != 1 {
		t.Errorf("Expected exactly 1 line item stored, got %d", repo.ItemCount())
	}
}

func TestRemoveItem_SecondRemovalFails(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil, nil)

	item, err := svc.AddItem(ctx, knownCustomer, knownBook, 1)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if err := svc.RemoveItem(ctx, item.ID); err != nil {
		t.Fatalf("First RemoveItem failed: %v", err)
	}

	err = svc.RemoveItem(ctx, item.ID)
	if !errors.Is(err, domaincart.ErrCartItemNotFound) {
		t.Fatalf("Expected ErrCartItemNotFound on second removal, got %v", err)
	}

	view, err := svc.ViewCart(ctx, knownCustomer)
	if err != nil {
		t.Fatalf("ViewCart failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("Expected empty cart after removal, got %d items", len(view.Items))
	}
}

func TestRemoveItem_UnknownID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil, nil)

	err := svc.RemoveItem(ctx, "no-such-item")
	if !errors.Is(err, domaincart.ErrCartItemNotFound) {
		t.Fatalf("Expected ErrCartItemNotFound, got %v", err)
	}
}

func TestViewCart_LivePricesAndTotal(t *testing.T) {
	ctx := context.Background()
	books := &fakeBookSource{books: map[int64]catalog.BookSnapshot{
		1: {ID: 1, Title: "First", Author: "A", Price: 10.00, Stock: 10},
		2: {ID: 2, Title: "Second", Author: "B", Price: 2.50, Stock: 10},
	}}
	svc, _ := newTestService(books, nil)

	if _, err := svc.AddItem(ctx, knownCustomer, 1, 2); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if _, err := svc.AddItem(ctx, knownCustomer, 2, 4); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	// Price change between add and view must show up in the view
	books.books[1] = catalog.BookSnapshot{ID: 1, Title: "First", Author: "A", Price: 12.00, Stock: 10}

	view, err := svc.ViewCart(ctx, knownCustomer)
	if err != nil {
		t.Fatalf("ViewCart failed: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(view.Items))
	}

	wantTotal := 12.00*2 + 2.50*4
	if view.Total != wantTotal {
		t.Errorf("Expected total %.2f, got %.2f", wantTotal, view.Total)
	}
	for _, line := range view.Items {
		if !line.Available {
			t.Errorf("Line for book %d should be available", line.BookID)
		}
		if line.BookInfo == nil {
			t.Errorf("Line for book %d should carry book info", line.BookID)
		}
	}
}

func TestViewCart_DegradesUnresolvableLines(t *testing.T) {
	ctx := context.Background()
	books := &fakeBookSource{
		books: map[int64]catalog.BookSnapshot{
			1: {ID: 1, Title: "Healthy", Author: "A", Price: 10.00, Stock: 10},
			2: {ID: 2, Title: "Doomed", Author: "B", Price: 99.00, Stock: 10},
		},
		perBookErr: map[int64]error{},
	}
	svc, _ := newTestService(books, nil)

	if _, err := svc.AddItem(ctx, knownCustomer, 1, 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if _, err := svc.AddItem(ctx, knownCustomer, 2, 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	// Book 2 disappears from the book service after it was added
	books.perBookErr[2] = fmt.Errorf("%w: 2", catalog.ErrBookNotFound)

	view, err := svc.ViewCart(ctx, knownCustomer)
	if err != nil {
		t.Fatalf("ViewCart must not fail on a single unresolvable line: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("Expected both lines rendered, got %d", len(view.Items))
	}

	var healthy, doomed *cartapp.CartItemResponse
	for i := range view.Items {
		switch view.Items[i].BookID {
		case 1:
			healthy = &view.Items[i]
		case 2:
			doomed = &view.Items[i]
		}
	}
	if healthy == nil || doomed == nil {
		t.Fatalf("Missing expected lines: %+v", view.Items)
	}

	if !healthy.Available || healthy.BookInfo == nil {
		t.Errorf("Resolvable line should stay available: %+v", healthy)
	}
	if doomed.Available || doomed.BookInfo != nil || doomed.LineTotal != 0 {
		t.Errorf("Unresolvable line should degrade: %+v", doomed)
	}
	if view.Total != 10.00 {
		t.Errorf("Total should cover only resolved lines, expected 10.00 got %.2f", view.Total)
	}
}

func TestViewCart_BookSourceFullyDown(t *testing.T) {
	ctx := context.Background()
	books := &fakeBookSource{books: map[int64]catalog.BookSnapshot{
		knownBook: {ID: knownBook, Title: "T", Author: "A", Price: 5.00, Stock: 10},
	}}
	svc, _ := newTestService(books, nil)

	if _, err := svc.AddItem(ctx, knownCustomer, knownBook, 2); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	// Total outage: every lookup fails from now on
	books.err = fmt.Errorf("%w: connection refused", catalog.ErrSourceUnavailable)

	view, err := svc.ViewCart(ctx, knownCustomer)
	if err != nil {
		t.Fatalf("ViewCart must degrade during a full outage, got error: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("Expected the line to still render, got %d lines", len(view.Items))
	}
	if view.Items[0].Available {
		t.Error("Line should be marked unavailable during outage")
	}
	if view.Total != 0 {
		t.Errorf("Expected total 0 during outage, got %.2f", view.Total)
	}
}

func TestViewCart_CreatesCartOnFirstView(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(nil, nil)

	view, err := svc.ViewCart(ctx, knownCustomer)
	if err != nil {
		t.Fatalf("ViewCart failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("Expected empty cart, got %d items", len(view.Items))
	}
	if view.Total != 0 {
		t.Errorf("Expected total 0, got %.2f", view.Total)
	}
	if repo.CartCount() != 1 {
		t.Errorf("First view should create the cart, got %d carts", repo.CartCount())
	}
}

func TestCatalogBooks(t *testing.T) {
	ctx := context.Background()
	books := &fakeBookSource{books: map[int64]catalog.BookSnapshot{
		1: {ID: 1, Title: "First", Author: "A", Price: 10.00, Stock: 3},
		2: {ID: 2, Title: "Second", Author: "B", Price: 20.00, Stock: 0},
	}}
	svc, _ := newTestService(books, nil)

	list, err := svc.CatalogBooks(ctx)
	if err != nil {
		t.Fatalf("CatalogBooks failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Expected 2 books, got %d", len(list))
	}
}
