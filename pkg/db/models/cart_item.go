package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem snapshots a catalog product inside a cart. Name and unit price
// are frozen at add-time; later catalog changes do not propagate. One row
// per (cart, product) pair; duplicate adds merge quantities instead.
type CartItem struct {
	ID          int64           `gorm:"column:id;primaryKey" json:"id"`
	CartID      int64           `gorm:"column:cart_id;not null;uniqueIndex:idx_cart_items_cart_product" json:"cart_id"`
	ProductID   int64           `gorm:"column:product_id;not null;uniqueIndex:idx_cart_items_cart_product" json:"product_id"`
	ProductName string          `gorm:"column:product_name;type:varchar(255);not null" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"column:quantity;not null;default:1" json:"quantity"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null" json:"subtotal"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// RecalcSubtotal keeps subtotal = unit price * quantity.
func (i *CartItem) RecalcSubtotal() {
	i.Subtotal = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
