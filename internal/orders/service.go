package orders

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/shopcart-backend/pkg/db/models"
	"github.com/angelmondragon/shopcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopcart-backend/pkg/errors"
)

// CreateInput captures the data required to turn a cart into an order.
type CreateInput struct {
	UserID          int64
	CartID          int64
	ShippingAddress *string
	BillingAddress  *string
}

// UpdateInput carries the mutable order fields. Nil pointers leave the
// corresponding column untouched.
type UpdateInput struct {
	Status          *enums.OrderStatus
	PaymentStatus   *enums.PaymentStatus
	ShippingAddress *string
	BillingAddress  *string
}

// Service defines the order workflow operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	CreateFromCart(ctx context.Context, userID, cartID int64) (*models.Order, error)
	Get(ctx context.Context, orderID int64) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ListUserOrders(ctx context.Context, userID int64) ([]models.Order, error)
	Update(ctx context.Context, orderID int64, input UpdateInput) (*models.Order, error)
	Delete(ctx context.Context, orderID int64) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Create validates the cart, snapshots its items and total into a new pending
// order, and freezes the cart as completed. All of it runs in one
// transaction so a failure leaves the cart untouched.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id must be positive")
	}
	if input.CartID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id must be positive")
	}

	var out *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindCartWithItems(ctx, input.CartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if cart.UserID != input.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "cart does not belong to user")
		}
		if len(cart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cannot create an order from an empty cart")
		}
		if cart.Status != enums.CartStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cart is %s, expected active", cart.Status))
		}

		order := &models.Order{
			UserID:          cart.UserID,
			CartID:          cart.ID,
			Status:          enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusUnpaid,
			TotalPrice:      cart.TotalPrice,
			ShippingAddress: input.ShippingAddress,
			BillingAddress:  input.BillingAddress,
			Items:           snapshotItems(cart.Items),
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if err := repo.UpdateCartStatus(ctx, cart.ID, enums.CartStatusCompleted); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "freeze cart")
		}

		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateFromCart is the address-less form used when completing a cart
// directly through the cart lifecycle.
func (s *service) CreateFromCart(ctx context.Context, userID, cartID int64) (*models.Order, error) {
	return s.Create(ctx, CreateInput{UserID: userID, CartID: cartID})
}

func (s *service) Get(ctx context.Context, orderID int64) (*models.Order, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id must be positive")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context) ([]models.Order, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id must be positive")
	}
	orders, err := s.repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user orders")
	}
	return orders, nil
}

// Update applies partial changes to a non-terminal order. Canceling an order
// also releases the linked cart back to inactive so its history stays
// readable without being mistaken for an open cart.
func (s *service) Update(ctx context.Context, orderID int64, input UpdateInput) (*models.Order, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id must be positive")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", *input.Status))
	}
	if input.PaymentStatus != nil && !input.PaymentStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment status %q", *input.PaymentStatus))
	}

	var out *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "approved orders cannot be modified")
		}

		updates := map[string]any{}
		if input.Status != nil {
			updates["status"] = *input.Status
		}
		if input.PaymentStatus != nil {
			updates["payment_status"] = *input.PaymentStatus
		}
		if input.ShippingAddress != nil {
			updates["shipping_address"] = *input.ShippingAddress
		}
		if input.BillingAddress != nil {
			updates["billing_address"] = *input.BillingAddress
		}

		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}

		if input.Status != nil && *input.Status == enums.OrderStatusCanceled && order.Status != enums.OrderStatusCanceled {
			if err := repo.UpdateCartStatus(ctx, order.CartID, enums.CartStatusInactive); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release canceled cart")
			}
		}

		out, err = repo.FindOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a non-terminal order together with its item snapshot.
func (s *service) Delete(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id must be positive")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "approved orders cannot be deleted")
		}

		if err := repo.DeleteOrder(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return nil
	})
}

func snapshotItems(items []models.CartItem) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		out = append(out, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal,
		})
	}
	return out
}
