package cart

import "time"

// Cart is the per-customer cart row. There is exactly one cart per
// customer; it is created lazily on first use and its identity never
// changes afterwards.
type Cart struct {
	ID         string
	CustomerID int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CartItem is one line of a cart: a reference to a book owned by the book
// service plus a quantity. Title and price are deliberately absent here;
// they are fetched live at read time because another service owns them.
type CartItem struct {
	ID        string
	CartID    string
	BookID    int64
	Quantity  int
	CreatedAt time.Time
}
