package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/shopcart-backend/pkg/db/models"
	"github.com/angelmondragon/shopcart-backend/pkg/enums"
)

// Repository defines persistence operations for order tables, plus the cart
// reads and status writes the creation workflow needs inside one transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrder(ctx context.Context, orderID int64) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error)
	UpdateOrder(ctx context.Context, orderID int64, updates map[string]any) error
	DeleteOrder(ctx context.Context, orderID int64) error
	FindCartWithItems(ctx context.Context, cartID int64) (*models.Cart, error)
	UpdateCartStatus(ctx context.Context, cartID int64, status enums.CartStatus) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
