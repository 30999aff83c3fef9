package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shopcart-backend/pkg/enums"
)

// Order is an immutable-once-approved snapshot of a completed cart.
// TotalPrice is copied from the cart at creation time and never recomputed.
type Order struct {
	ID              int64               `gorm:"column:id;primaryKey" json:"id"`
	UserID          int64               `gorm:"column:user_id;not null;index" json:"user_id"`
	CartID          int64               `gorm:"column:cart_id;not null;uniqueIndex" json:"cart_id"`
	Status          enums.OrderStatus   `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	TotalPrice      decimal.Decimal     `gorm:"column:total_price;type:numeric(10,2);not null" json:"total_price"`
	ShippingAddress *string             `gorm:"column:shipping_address" json:"shipping_address,omitempty"`
	BillingAddress  *string             `gorm:"column:billing_address" json:"billing_address,omitempty"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
