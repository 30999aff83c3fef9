package orders

import (
	"net/http"

	"github.com/angelmondragon/shopcart-backend/api/responses"
	"github.com/angelmondragon/shopcart-backend/api/validators"
	ordersvc "github.com/angelmondragon/shopcart-backend/internal/orders"
	"github.com/angelmondragon/shopcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopcart-backend/pkg/errors"
	"github.com/angelmondragon/shopcart-backend/pkg/logger"
)

type createOrderRequest struct {
	UserID          int64   `json:"user_id" validate:"required,gt=0"`
	CartID          int64   `json:"cart_id" validate:"required,gt=0"`
	ShippingAddress *string `json:"shipping_address,omitempty"`
	BillingAddress  *string `json:"billing_address,omitempty"`
}

type updateOrderRequest struct {
	Status          *string `json:"status,omitempty"`
	PaymentStatus   *string `json:"payment_status,omitempty"`
	ShippingAddress *string `json:"shipping_address,omitempty"`
	BillingAddress  *string `json:"billing_address,omitempty"`
}

// Create runs the cart-to-order workflow.
func Create(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithFields(r.Context(), map[string]any{
			"user_id": req.UserID,
			"cart_id": req.CartID,
		})
		order, err := svc.Create(ctx, ordersvc.CreateInput{
			UserID:          req.UserID,
			CartID:          req.CartID,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// Fetch returns an order with its item snapshot.
func Fetch(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseIDParam(r, "order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// List returns every order, newest first.
func List(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// ListByUser returns a user's orders, newest first.
func ListByUser(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParseIDParam(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithUserID(r.Context(), userID)
		orders, err := svc.ListUserOrders(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// Update applies partial changes to a non-terminal order.
func Update(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseIDParam(r, "order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := ordersvc.UpdateInput{
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
		}
		if req.Status != nil {
			status, err := enums.ParseOrderStatus(*req.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
				return
			}
			input.Status = &status
		}
		if req.PaymentStatus != nil {
			payment, err := enums.ParsePaymentStatus(*req.PaymentStatus)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status"))
				return
			}
			input.PaymentStatus = &payment
		}

		order, err := svc.Update(r.Context(), orderID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// Delete removes a non-terminal order.
func Delete(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseIDParam(r, "order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
