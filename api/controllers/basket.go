package controllers

import (
	"net/http"
	"time"

	"github.com/supplydesk/supplydesk-backend/api/middleware"
	"github.com/supplydesk/supplydesk-backend/api/responses"
	"github.com/supplydesk/supplydesk-backend/api/validators"
	basketsvc "github.com/supplydesk/supplydesk-backend/internal/basket"
	"github.com/supplydesk/supplydesk-backend/pkg/db/models"
	"github.com/supplydesk/supplydesk-backend/pkg/enums"
	pkgerrors "github.com/supplydesk/supplydesk-backend/pkg/errors"
	"github.com/supplydesk/supplydesk-backend/pkg/logger"
)

// BasketView returns the caller's open basket.
func BasketView(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		basket, err := svc.ViewBasket(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(basket))
	}
}

// BasketAddItem puts a listing into the caller's basket.
func BasketAddItem(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload addBasketItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Quantity == 0 {
			payload.Quantity = 1
		}

		basket, err := svc.AddItem(r.Context(), userID, payload.ProductInfoID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(basket))
	}
}

type addBasketItemRequest struct {
	ProductInfoID uint `json:"product_info_id" validate:"required,min=1"`
	Quantity      int  `json:"quantity" validate:"omitempty,min=1"`
}

// BasketRemoveItem drops one position from the caller's basket.
func BasketRemoveItem(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload removeBasketItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveItem(r.Context(), userID, payload.ItemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

type removeBasketItemRequest struct {
	ItemID uint `json:"item_id" validate:"required,min=1"`
}

type orderResponse struct {
	ID        uint                `json:"id"`
	State     string              `json:"state"`
	Contact   *contactResponse    `json:"contact,omitempty"`
	Items     []orderItemResponse `json:"items"`
	Total     int                 `json:"total"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type orderItemResponse struct {
	ID            uint             `json:"id"`
	ProductInfoID *uint            `json:"product_info_id,omitempty"`
	Product       string           `json:"product,omitempty"`
	Shop          *shopRefResponse `json:"shop,omitempty"`
	Quantity      int              `json:"quantity"`
	Price         int              `json:"price"`
	Subtotal      int              `json:"subtotal"`
}

func newOrderResponse(order *models.Order) orderResponse {
	if order == nil {
		// No open basket yet: an empty basket, not an error.
		return orderResponse{State: enums.OrderStateBasket.String(), Items: []orderItemResponse{}}
	}
	resp := orderResponse{
		ID:        order.ID,
		State:     order.State.String(),
		Items:     make([]orderItemResponse, 0, len(order.Items)),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	if order.Contact != nil {
		contact := newContactResponse(order.Contact)
		resp.Contact = &contact
	}
	for _, item := range order.Items {
		entry := orderItemResponse{
			ID:            item.ID,
			ProductInfoID: item.ProductInfoID,
			Quantity:      item.Quantity,
		}
		if info := item.ProductInfo; info != nil {
			entry.Price = info.Price
			entry.Subtotal = info.Price * item.Quantity
			if info.Product != nil {
				entry.Product = info.Product.Name
			}
			if info.Shop != nil {
				entry.Shop = &shopRefResponse{ID: info.Shop.ID, Name: info.Shop.Name, AcceptingOrders: info.Shop.AcceptingOrders}
			}
		}
		resp.Total += entry.Subtotal
		resp.Items = append(resp.Items, entry)
	}
	return resp
}
