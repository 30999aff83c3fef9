package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopcart-backend/pkg/db/models"
	"github.com/angelmondragon/shopcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopcart-backend/pkg/errors"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  created_at DATETIME
);`
	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  total_price NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  cart_id INTEGER NOT NULL,
  product_id INTEGER NOT NULL,
  product_name TEXT NOT NULL,
  unit_price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  subtotal NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  cart_id INTEGER NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'pending',
  total_price NUMERIC NOT NULL,
  shipping_address TEXT,
  billing_address TEXT,
  payment_status TEXT NOT NULL DEFAULT 'unpaid',
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL,
  product_id INTEGER NOT NULL,
  product_name TEXT NOT NULL,
  unit_price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  subtotal NUMERIC NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(carts).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

type stubTxRunner struct {
	db *gorm.DB
}

func (r stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(r.db)
}

func newOrdersTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db), stubTxRunner{db: db})
	require.NoError(t, err)
	return svc
}

func seedActiveCart(t *testing.T, db *gorm.DB, userID int64) *models.Cart {
	t.Helper()

	require.NoError(t, db.Create(&models.User{ID: userID}).Error)
	cart := &models.Cart{
		UserID:     userID,
		Status:     enums.CartStatusActive,
		TotalPrice: decimal.RequireFromString("29.97"),
		Items: []models.CartItem{
			{
				ProductID:   5,
				ProductName: "Gold Ring",
				UnitPrice:   decimal.RequireFromString("9.99"),
				Quantity:    3,
				Subtotal:    decimal.RequireFromString("29.97"),
			},
		},
	}
	require.NoError(t, db.Create(cart).Error)
	return cart
}

func TestCreateOrderSnapshotsCartAndFreezesIt(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)
	ctx := context.Background()

	cart := seedActiveCart(t, db, 7)
	shipping := "1 Main St"

	order, err := svc.Create(ctx, CreateInput{
		UserID:          7,
		CartID:          cart.ID,
		ShippingAddress: &shipping,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.PaymentStatusUnpaid, order.PaymentStatus)
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("29.97")),
		"total = %s", order.TotalPrice)
	require.NotNil(t, order.ShippingAddress)
	assert.Equal(t, "1 Main St", *order.ShippingAddress)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Gold Ring", order.Items[0].ProductName)
	assert.Equal(t, 3, order.Items[0].Quantity)

	var frozen models.Cart
	require.NoError(t, db.First(&frozen, "id = ?", cart.ID).Error)
	assert.Equal(t, enums.CartStatusCompleted, frozen.Status)
}

func TestCreateOrderCartNotFound(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)

	_, err := svc.Create(context.Background(), CreateInput{UserID: 7, CartID: 999})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCreateOrderForeignCartForbidden(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)

	cart := seedActiveCart(t, db, 7)

	_, err := svc.Create(context.Background(), CreateInput{UserID: 8, CartID: cart.ID})
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestCreateOrderEmptyCartRejected(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)

	require.NoError(t, db.Create(&models.User{ID: 7}).Error)
	cart := &models.Cart{UserID: 7, Status: enums.CartStatusActive, TotalPrice: decimal.Zero}
	require.NoError(t, db.Create(cart).Error)

	_, err := svc.Create(context.Background(), CreateInput{UserID: 7, CartID: cart.ID})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateOrderInactiveCartRejected(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)

	cart := seedActiveCart(t, db, 7)
	require.NoError(t, db.Model(&models.Cart{}).Where("id = ?", cart.ID).
		UpdateColumn("status", enums.CartStatusInactive).Error)

	_, err := svc.Create(context.Background(), CreateInput{UserID: 7, CartID: cart.ID})
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestUpdateOrderFieldsWhileNonTerminal(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)
	ctx := context.Background()

	cart := seedActiveCart(t, db, 7)
	order, err := svc.Create(ctx, CreateInput{UserID: 7, CartID: cart.ID})
	require.NoError(t, err)

	paid := enums.PaymentStatusPaid
	billing := "2 Side St"
	updated, err := svc.Update(ctx, order.ID, UpdateInput{
		PaymentStatus:  &paid,
		BillingAddress: &billing,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, updated.PaymentStatus)
	require.NotNil(t, updated.BillingAddress)
	assert.Equal(t, "2 Side St", *updated.BillingAddress)
	assert.Equal(t, enums.OrderStatusPending, updated.Status)
}

func TestUpdateApprovedOrderRejected(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)
	ctx := context.Background()

	cart := seedActiveCart(t, db, 7)
	order, err := svc.Create(ctx, CreateInput{UserID: 7, CartID: cart.ID})
	require.NoError(t, err)

	approved := enums.OrderStatusApproved
	_, err = svc.Update(ctx, order.ID, UpdateInput{Status: &approved})
	require.NoError(t, err)

	canceled := enums.OrderStatusCanceled
	_, err = svc.Update(ctx, order.ID, UpdateInput{Status: &canceled})
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestUpdateCancelReleasesCart(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)
	ctx := context.Background()

	cart := seedActiveCart(t, db, 7)
	order, err := svc.Create(ctx, CreateInput{UserID: 7, CartID: cart.ID})
	require.NoError(t, err)

	canceled := enums.OrderStatusCanceled
	updated, err := svc.Update(ctx, order.ID, UpdateInput{Status: &canceled})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCanceled, updated.Status)

	var released models.Cart
	require.NoError(t, db.First(&released, "id = ?", cart.ID).Error)
	assert.Equal(t, enums.CartStatusInactive, released.Status)
}

func TestUpdateOrderNotFound(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)

	paid := enums.PaymentStatusPaid
	_, err := svc.Update(context.Background(), 999, UpdateInput{PaymentStatus: &paid})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)

	bogus := enums.OrderStatus("shipped")
	_, err := svc.Update(context.Background(), 1, UpdateInput{Status: &bogus})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestDeleteOrderRemovesSnapshot(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)
	ctx := context.Background()

	cart := seedActiveCart(t, db, 7)
	order, err := svc.Create(ctx, CreateInput{UserID: 7, CartID: cart.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, order.ID))

	_, err = svc.Get(ctx, order.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	var itemCount int64
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error)
	assert.Equal(t, int64(0), itemCount)
}

func TestDeleteApprovedOrderRejected(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)
	ctx := context.Background()

	cart := seedActiveCart(t, db, 7)
	order, err := svc.Create(ctx, CreateInput{UserID: 7, CartID: cart.ID})
	require.NoError(t, err)

	approved := enums.OrderStatusApproved
	_, err = svc.Update(ctx, order.ID, UpdateInput{Status: &approved})
	require.NoError(t, err)

	err = svc.Delete(ctx, order.ID)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestListUserOrders(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersTestService(t, db)
	ctx := context.Background()

	cart := seedActiveCart(t, db, 7)
	_, err := svc.Create(ctx, CreateInput{UserID: 7, CartID: cart.ID})
	require.NoError(t, err)

	orders, err := svc.ListUserOrders(ctx, 7)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(7), orders[0].UserID)

	none, err := svc.ListUserOrders(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, none)
}
