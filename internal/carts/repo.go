package carts

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopcart-backend/pkg/db/models"
	"github.com/angelmondragon/shopcart-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a carts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateCart(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *repository) FindCart(ctx context.Context, cartID int64) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC, cart_items.id ASC")
		}).
		Where("id = ?", cartID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) FindActiveCartByUser(ctx context.Context, userID int64) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC, cart_items.id ASC")
		}).
		Where("user_id = ? AND status = ?", userID, enums.CartStatusActive).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repository) ListCartsByUser(ctx context.Context, userID int64) ([]models.Cart, error) {
	var carts []models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&carts).Error
	if err != nil {
		return nil, err
	}
	return carts, nil
}

func (r *repository) UpdateCartStatus(ctx context.Context, cartID int64, status enums.CartStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		UpdateColumn("status", status).Error
}

func (r *repository) UpdateCartTotal(ctx context.Context, cartID int64, total decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		UpdateColumn("total_price", total).Error
}

func (r *repository) DeleteCart(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).
		Select("Items").
		Delete(&models.Cart{ID: cartID}).Error
}

func (r *repository) FindItem(ctx context.Context, cartID, productID int64) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) UpdateItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"quantity": item.Quantity,
			"subtotal": item.Subtotal,
		}).Error
}

func (r *repository) DeleteItem(ctx context.Context, itemID int64) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", itemID).Error
}

func (r *repository) SumItemSubtotals(ctx context.Context, cartID int64) (decimal.Decimal, error) {
	var raw *string
	err := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ?", cartID).
		Select("CAST(COALESCE(SUM(subtotal), 0) AS TEXT)").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}
