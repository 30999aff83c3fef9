package carts

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopcart-backend/internal/catalog"
	"github.com/angelmondragon/shopcart-backend/pkg/db"
	"github.com/angelmondragon/shopcart-backend/pkg/db/models"
	"github.com/angelmondragon/shopcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopcart-backend/pkg/errors"
)

// uniqueActiveCartIndex backs the one-active-cart-per-user invariant.
const uniqueActiveCartIndex = "uq_carts_user_active"

// uniqueCartItemIndex backs the one-row-per-product invariant on cart items.
const uniqueCartItemIndex = "idx_cart_items_cart_product"

// errItemInsertConflict signals that a concurrent add of the same product won
// the insert; the whole transaction is rerun once so the quantities merge.
var errItemInsertConflict = errors.New("cart item insert lost to a concurrent add")

// AddItemInput captures the data required to put a product into a cart.
type AddItemInput struct {
	CartID    int64
	ProductID int64
	Quantity  int
}

// Service defines cart lifecycle and item operations.
type Service interface {
	GetOrCreateActiveCart(ctx context.Context, userID int64) (*models.Cart, error)
	GetCart(ctx context.Context, cartID int64) (*models.Cart, error)
	ListUserCarts(ctx context.Context, userID int64) ([]models.Cart, error)
	AddItem(ctx context.Context, input AddItemInput) (*models.Cart, error)
	UpdateItemQuantity(ctx context.Context, cartID, productID int64, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, cartID, productID int64) (*models.Cart, error)
	SetStatus(ctx context.Context, cartID int64, status enums.CartStatus) (*models.Cart, error)
	DeleteCart(ctx context.Context, cartID int64) error
}

type service struct {
	repo    Repository
	tx      txRunner
	catalog productFetcher
	users   userEnsurer
	orders  orderCreator
}

// NewService builds a carts service with the required dependencies.
func NewService(repo Repository, tx txRunner, catalog productFetcher, users userEnsurer, orders orderCreator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("carts repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog client required")
	}
	if users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		catalog: catalog,
		users:   users,
		orders:  orders,
	}, nil
}

// GetOrCreateActiveCart returns the user's active cart, creating the user row
// and the cart when either is missing. A concurrent create losing the race on
// the unique active-cart index falls back to reading the winner.
func (s *service) GetOrCreateActiveCart(ctx context.Context, userID int64) (*models.Cart, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id must be positive")
	}

	if err := s.users.Ensure(ctx, userID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure user")
	}

	cart, err := s.repo.FindActiveCartByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active cart")
	}

	fresh := &models.Cart{
		UserID:     userID,
		Status:     enums.CartStatusActive,
		TotalPrice: decimal.Zero,
	}
	if _, err := s.repo.CreateCart(ctx, fresh); err != nil {
		if db.IsUniqueViolation(err, uniqueActiveCartIndex) {
			// another request created the cart first
			existing, findErr := s.repo.FindActiveCartByUser(ctx, userID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load active cart after conflict")
			}
			return existing, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return fresh, nil
}

func (s *service) GetCart(ctx context.Context, cartID int64) (*models.Cart, error) {
	if cartID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id must be positive")
	}
	cart, err := s.repo.FindCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) ListUserCarts(ctx context.Context, userID int64) ([]models.Cart, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id must be positive")
	}
	carts, err := s.repo.ListCartsByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list carts")
	}
	return carts, nil
}

// AddItem snapshots the catalog product into the cart. Adding a product that
// is already present merges the quantities instead of inserting a second row.
func (s *service) AddItem(ctx context.Context, input AddItemInput) (*models.Cart, error) {
	if input.CartID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id must be positive")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	// catalog lookup happens before the transaction so an upstream stall
	// never holds row locks
	product, err := s.catalog.FetchProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	out, err := s.addItemTx(ctx, input, product)
	if errors.Is(err, errItemInsertConflict) {
		// rerun once; the merge branch picks up the winner's row
		out, err = s.addItemTx(ctx, input, product)
		if errors.Is(err, errItemInsertConflict) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
		}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) addItemTx(ctx context.Context, input AddItemInput, product *catalog.Product) (*models.Cart, error) {
	var out *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := s.mutableCart(ctx, repo, input.CartID)
		if err != nil {
			return err
		}

		item, err := repo.FindItem(ctx, cart.ID, product.ID)
		switch {
		case err == nil:
			item.Quantity += input.Quantity
			item.RecalcSubtotal()
			if err := repo.UpdateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge cart item")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			fresh := &models.CartItem{
				CartID:      cart.ID,
				ProductID:   product.ID,
				ProductName: product.Title,
				UnitPrice:   product.Price,
				Quantity:    input.Quantity,
			}
			fresh.RecalcSubtotal()
			if err := repo.CreateItem(ctx, fresh); err != nil {
				if db.IsUniqueViolation(err, uniqueCartItemIndex) {
					return errItemInsertConflict
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}

		if err := s.recomputeTotal(ctx, repo, cart.ID); err != nil {
			return err
		}

		out, err = repo.FindCart(ctx, cart.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) UpdateItemQuantity(ctx context.Context, cartID, productID int64, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var out *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := s.mutableCart(ctx, repo, cartID)
		if err != nil {
			return err
		}

		item, err := repo.FindItem(ctx, cart.ID, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found in cart")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}

		item.Quantity = quantity
		item.RecalcSubtotal()
		if err := repo.UpdateItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}

		if err := s.recomputeTotal(ctx, repo, cart.ID); err != nil {
			return err
		}

		out, err = repo.FindCart(ctx, cart.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) RemoveItem(ctx context.Context, cartID, productID int64) (*models.Cart, error) {
	var out *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := s.mutableCart(ctx, repo, cartID)
		if err != nil {
			return err
		}

		item, err := repo.FindItem(ctx, cart.ID, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found in cart")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}

		if err := repo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}

		if err := s.recomputeTotal(ctx, repo, cart.ID); err != nil {
			return err
		}

		out, err = repo.FindCart(ctx, cart.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetStatus drives the cart lifecycle. The status check and write share one
// transaction so a concurrent completion cannot be overwritten by inactive.
// Completing an active cart refreshes the total, then runs the order creation
// workflow, which freezes the cart inside its own transaction after
// re-checking that the cart is still active.
func (s *service) SetStatus(ctx context.Context, cartID int64, status enums.CartStatus) (*models.Cart, error) {
	if cartID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id must be positive")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid cart status %q", status))
	}

	var out *models.Cart
	var completing bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindCart(ctx, cartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}

		if cart.Status == status {
			out = cart
			return nil
		}
		if cart.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cart is already %s", cart.Status))
		}

		switch status {
		case enums.CartStatusCompleted:
			if err := s.recomputeTotal(ctx, repo, cart.ID); err != nil {
				return err
			}
			completing = true
			out = cart
			return nil
		case enums.CartStatusInactive:
			if err := repo.UpdateCartStatus(ctx, cart.ID, status); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart status")
			}
			return nil
		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot transition cart from %s to %s", cart.Status, status))
		}
	})
	if err != nil {
		return nil, err
	}

	if completing {
		if _, err := s.orders.CreateFromCart(ctx, out.UserID, out.ID); err != nil {
			return nil, err
		}
	} else if out != nil {
		return out, nil
	}

	return s.GetCart(ctx, cartID)
}

func (s *service) DeleteCart(ctx context.Context, cartID int64) error {
	cart, err := s.GetCart(ctx, cartID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteCart(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart")
	}
	return nil
}

// mutableCart loads a cart and rejects item mutations once the cart left the
// active state.
func (s *service) mutableCart(ctx context.Context, repo Repository, cartID int64) (*models.Cart, error) {
	cart, err := repo.FindCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if cart.Status != enums.CartStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cart is %s and cannot be modified", cart.Status))
	}
	return cart, nil
}

// recomputeTotal rewrites total_price from the live item rows inside the
// caller's transaction.
func (s *service) recomputeTotal(ctx context.Context, repo Repository, cartID int64) error {
	total, err := repo.SumItemSubtotals(ctx, cartID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum cart items")
	}
	if err := repo.UpdateCartTotal(ctx, cartID, total); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart total")
	}
	return nil
}
