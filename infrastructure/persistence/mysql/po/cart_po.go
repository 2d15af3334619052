package po

import (
	"time"

	"bookcart/domain/cart"
)

// CartPO carts table. customer_id is a plain integer, not a foreign key:
// customers live in another service.
type CartPO struct {
	ID         string    `gorm:"primaryKey;size:64"`
	CustomerID int64     `gorm:"uniqueIndex;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (CartPO) TableName() string {
	return "carts"
}

func (po *CartPO) ToDomain() *cart.Cart {
	return &cart.Cart{
		ID:         po.ID,
		CustomerID: po.CustomerID,
		CreatedAt:  po.CreatedAt,
		UpdatedAt:  po.UpdatedAt,
	}
}

// CartItemPO cart_items table. The composite unique index on
// (cart_id, book_id) is what guarantees at most one line per book and
// turns concurrent first inserts into a detectable duplicate-key error.
type CartItemPO struct {
	ID        string    `gorm:"primaryKey;size:64"`
	CartID    string    `gorm:"size:64;not null;uniqueIndex:idx_cart_book"`
	BookID    int64     `gorm:"not null;uniqueIndex:idx_cart_book"`
	Quantity  int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (CartItemPO) TableName() string {
	return "cart_items"
}

func (po *CartItemPO) ToDomain() *cart.CartItem {
	return &cart.CartItem{
		ID:        po.ID,
		CartID:    po.CartID,
		BookID:    po.BookID,
		Quantity:  po.Quantity,
		CreatedAt: po.CreatedAt,
	}
}
