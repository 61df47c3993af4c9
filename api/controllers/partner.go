package controllers

import (
	"net/http"

	"github.com/supplydesk/supplydesk-backend/api/middleware"
	"github.com/supplydesk/supplydesk-backend/api/responses"
	"github.com/supplydesk/supplydesk-backend/api/validators"
	basketsvc "github.com/supplydesk/supplydesk-backend/internal/basket"
	catalogsvc "github.com/supplydesk/supplydesk-backend/internal/catalog"
	feedsvc "github.com/supplydesk/supplydesk-backend/internal/feed"
	"github.com/supplydesk/supplydesk-backend/pkg/db/models"
	pkgerrors "github.com/supplydesk/supplydesk-backend/pkg/errors"
	"github.com/supplydesk/supplydesk-backend/pkg/logger"
)

// PartnerUpdate triggers a price-list ingest from the supplier's feed URL.
func PartnerUpdate(svc feedsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feed service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload partnerUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.IngestFromURL(r.Context(), userID, payload.URL)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

type partnerUpdateRequest struct {
	URL string `json:"url" validate:"required"`
}

// PartnerShop returns the supplier's shop including its accepting flag.
func PartnerShop(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		shop, err := svc.GetPartnerShop(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPartnerShopResponse(shop))
	}
}

// PartnerState toggles whether the supplier's shop takes new orders.
func PartnerState(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload partnerStateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.State == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "state is required"))
			return
		}

		shop, err := svc.SetAcceptingOrders(r.Context(), userID, *payload.State)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPartnerShopResponse(shop))
	}
}

type partnerStateRequest struct {
	State *bool `json:"state"`
}

// PartnerOrders lists placed orders that touch the supplier's listings.
func PartnerOrders(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		orders, err := svc.ListSupplierOrders(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(orders))
		for i := range orders {
			out = append(out, newOrderResponse(&orders[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type partnerShopResponse struct {
	ID              uint               `json:"id"`
	Name            string             `json:"name"`
	URL             *string            `json:"url,omitempty"`
	AcceptingOrders bool               `json:"accepting_orders"`
	Categories      []categoryResponse `json:"categories,omitempty"`
}

func newPartnerShopResponse(shop *models.Shop) partnerShopResponse {
	resp := partnerShopResponse{
		ID:              shop.ID,
		Name:            shop.Name,
		URL:             shop.URL,
		AcceptingOrders: shop.AcceptingOrders,
	}
	for _, category := range shop.Categories {
		resp.Categories = append(resp.Categories, categoryResponse{ID: category.ID, Name: category.Name})
	}
	return resp
}
