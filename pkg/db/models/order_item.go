package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is a point-in-time copy of a cart item, owned by the order.
type OrderItem struct {
	ID          int64           `gorm:"column:id;primaryKey" json:"id"`
	OrderID     int64           `gorm:"column:order_id;not null;index" json:"order_id"`
	ProductID   int64           `gorm:"column:product_id;not null" json:"product_id"`
	ProductName string          `gorm:"column:product_name;type:varchar(255);not null" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"column:quantity;not null;default:1" json:"quantity"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null" json:"subtotal"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
