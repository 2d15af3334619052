package mysql

import (
	"context"
	"errors"
	"strings"

	"bookcart/domain/cart"
	"bookcart/infrastructure/persistence/mysql/po"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Duplicate entry") ||
		strings.Contains(errStr, "1062")
}

func (r *CartRepository) FindByCustomer(ctx context.Context, customerID int64) (*cart.Cart, error) {
	var cartPO po.CartPO

	result := r.db.WithContext(ctx).First(&cartPO, "customer_id = ?", customerID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, cart.ErrCartNotFound
		}
		return nil, result.Error
	}

	return cartPO.ToDomain(), nil
}

func (r *CartRepository) CreateForCustomer(ctx context.Context, customerID int64) (*cart.Cart, error) {
	cartPO := &po.CartPO{
		ID:         uuid.New().String(),
		CustomerID: customerID,
	}

	if err := r.db.WithContext(ctx).Create(cartPO).Error; err != nil {
		if isDuplicateKeyError(err) {
			// Another request created the cart first; the unique index on
			// customer_id picked the winner, return its row.
			return r.FindByCustomer(ctx, customerID)
		}
		return nil, err
	}

	return cartPO.ToDomain(), nil
}

func (r *CartRepository) FindItem(ctx context.Context, cartID string, bookID int64) (*cart.CartItem, error) {
	var itemPO po.CartItemPO

	result := r.db.WithContext(ctx).First(&itemPO, "cart_id = ? AND book_id = ?", cartID, bookID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, cart.ErrCartItemNotFound
		}
		return nil, result.Error
	}

	return itemPO.ToDomain(), nil
}

func (r *CartRepository) FindItemByID(ctx context.Context, itemID string) (*cart.CartItem, error) {
	var itemPO po.CartItemPO

	result := r.db.WithContext(ctx).First(&itemPO, "id = ?", itemID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, cart.NewCartItemNotFoundError(itemID)
		}
		return nil, result.Error
	}

	return itemPO.ToDomain(), nil
}

func (r *CartRepository) InsertItem(ctx context.Context, cartID string, bookID int64, quantity int) (*cart.CartItem, error) {
	itemPO := &po.CartItemPO{
		ID:       uuid.New().String(),
		CartID:   cartID,
		BookID:   bookID,
		Quantity: quantity,
	}

	if err := r.db.WithContext(ctx).Create(itemPO).Error; err != nil {
		if isDuplicateKeyError(err) {
			// The row appeared between the caller's read and this insert.
			// Surface the conflict so the caller re-reads and merges.
			return nil, cart.NewConcurrentModificationError(cartID, bookID)
		}
		return nil, err
	}

	return itemPO.ToDomain(), nil
}

func (r *CartRepository) UpdateItemQuantity(ctx context.Context, itemID string, expectedQuantity, newQuantity int) error {
	// Strict compare-and-set: the previously read quantity is the update
	// condition, so a concurrent writer's result is never silently overwritten.
	result := r.db.WithContext(ctx).
		Model(&po.CartItemPO{}).
		Where("id = ? AND quantity = ?", itemID, expectedQuantity).
		Update("quantity", newQuantity)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&po.CartItemPO{}).Where("id = ?", itemID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return cart.NewCartItemNotFoundError(itemID)
		}
		return cart.ErrConcurrentModification
	}

	return nil
}

func (r *CartRepository) DeleteItem(ctx context.Context, itemID string) error {
	result := r.db.WithContext(ctx).Delete(&po.CartItemPO{}, "id = ?", itemID)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return cart.NewCartItemNotFoundError(itemID)
	}

	return nil
}

func (r *CartRepository) ListItems(ctx context.Context, cartID string) ([]cart.CartItem, error) {
	var itemPOs []po.CartItemPO

	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&itemPOs).Error; err != nil {
		return nil, err
	}

	items := make([]cart.CartItem, len(itemPOs))
	for i, itemPO := range itemPOs {
		items[i] = *itemPO.ToDomain()
	}

	return items, nil
}

var _ cart.Repository = (*CartRepository)(nil)
