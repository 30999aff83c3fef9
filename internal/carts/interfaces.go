package carts

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopcart-backend/internal/catalog"
	"github.com/angelmondragon/shopcart-backend/pkg/db/models"
	"github.com/angelmondragon/shopcart-backend/pkg/enums"
)

// Repository defines persistence operations for cart tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateCart(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	FindCart(ctx context.Context, cartID int64) (*models.Cart, error)
	FindActiveCartByUser(ctx context.Context, userID int64) (*models.Cart, error)
	ListCartsByUser(ctx context.Context, userID int64) ([]models.Cart, error)
	UpdateCartStatus(ctx context.Context, cartID int64, status enums.CartStatus) error
	UpdateCartTotal(ctx context.Context, cartID int64, total decimal.Decimal) error
	DeleteCart(ctx context.Context, cartID int64) error
	FindItem(ctx context.Context, cartID, productID int64) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, itemID int64) error
	SumItemSubtotals(ctx context.Context, cartID int64) (decimal.Decimal, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productFetcher interface {
	FetchProduct(ctx context.Context, productID int64) (*catalog.Product, error)
}

type userEnsurer interface {
	Ensure(ctx context.Context, userID int64) error
}

type orderCreator interface {
	CreateFromCart(ctx context.Context, userID, cartID int64) (*models.Order, error)
}
