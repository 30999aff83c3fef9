package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shopcart-backend/pkg/enums"
)

// Cart is the aggregate root for a user's in-progress purchase. TotalPrice
// is derived from the item rows and never written directly by a client.
type Cart struct {
	ID         int64            `gorm:"column:id;primaryKey" json:"id"`
	UserID     int64            `gorm:"column:user_id;not null;index" json:"user_id"`
	Status     enums.CartStatus `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	TotalPrice decimal.Decimal  `gorm:"column:total_price;type:numeric(10,2);not null;default:0" json:"total_price"`
	Items      []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
