package cart

import "time"

// AddItemRequest add-to-cart input.
type AddItemRequest struct {
	BookID   int64 `json:"book_id" binding:"required"`
	Quantity int   `json:"quantity" binding:"required,min=1"`
}

// BookInfo display-only book fields resolved from the book service at
// response time. Never persisted: the book service owns them and stored
// copies would go stale.
type BookInfo struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Price  float64 `json:"price"`
}

// CartItemResponse one cart line enriched with live book data.
// Available is false when the book lookup failed for this render; the
// line then carries no book info and contributes nothing to the total.
type CartItemResponse struct {
	ID        string    `json:"id"`
	BookID    int64     `json:"book_id"`
	Quantity  int       `json:"quantity"`
	Available bool      `json:"available"`
	BookInfo  *BookInfo `json:"book_info,omitempty"`
	LineTotal float64   `json:"line_total"`
	CreatedAt time.Time `json:"created_at"`
}

// CartResponse the cart header without items.
type CartResponse struct {
	ID         string    `json:"id"`
	CustomerID int64     `json:"customer_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CartViewResponse the full cart view: items with live prices plus the
// total over the successfully resolved lines.
type CartViewResponse struct {
	ID         string             `json:"id"`
	CustomerID int64              `json:"customer_id"`
	Items      []CartItemResponse `json:"items"`
	Total      float64            `json:"total"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}
