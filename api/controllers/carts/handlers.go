package carts

import (
	"net/http"

	"github.com/angelmondragon/shopcart-backend/api/responses"
	"github.com/angelmondragon/shopcart-backend/api/validators"
	cartsvc "github.com/angelmondragon/shopcart-backend/internal/carts"
	"github.com/angelmondragon/shopcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopcart-backend/pkg/errors"
	"github.com/angelmondragon/shopcart-backend/pkg/logger"
)

type createCartRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

type updateCartRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive completed"`
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// Create returns the user's active cart, creating it (and the user) when
// absent. The response is 201 either way since the original contract always
// treats this as a create.
func Create(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCartRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithUserID(r.Context(), req.UserID)
		cart, err := svc.GetOrCreateActiveCart(ctx, req.UserID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cart)
	}
}

// Fetch returns a cart with its items.
func Fetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := validators.ParseIDParam(r, "cart_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithCartID(r.Context(), cartID)
		cart, err := svc.GetCart(ctx, cartID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// UpdateStatus drives the cart lifecycle; completing a cart creates its order.
func UpdateStatus(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := validators.ParseIDParam(r, "cart_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateCartRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseCartStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart status"))
			return
		}

		ctx := logg.WithCartID(r.Context(), cartID)
		cart, err := svc.SetStatus(ctx, cartID, status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// Delete removes a cart together with its items.
func Delete(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := validators.ParseIDParam(r, "cart_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithCartID(r.Context(), cartID)
		if err := svc.DeleteCart(ctx, cartID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// AddItem puts a catalog product into the cart, merging duplicates.
func AddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := validators.ParseIDParam(r, "cart_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req addItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithCartID(r.Context(), cartID)
		cart, err := svc.AddItem(ctx, cartsvc.AddItemInput{
			CartID:    cartID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cart)
	}
}

// UpdateItem changes the quantity of a cart line.
func UpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := validators.ParseIDParam(r, "cart_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseIDParam(r, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithCartID(r.Context(), cartID)
		cart, err := svc.UpdateItemQuantity(ctx, cartID, productID, req.Quantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// RemoveItem deletes a cart line.
func RemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := validators.ParseIDParam(r, "cart_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseIDParam(r, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithCartID(r.Context(), cartID)
		if _, err := svc.RemoveItem(ctx, cartID, productID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// ListByUser returns every cart a user has, newest first.
func ListByUser(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParseIDParam(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithUserID(r.Context(), userID)
		carts, err := svc.ListUserCarts(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, carts)
	}
}
