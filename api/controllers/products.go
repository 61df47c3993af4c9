package controllers

import (
	"net/http"

	"github.com/supplydesk/supplydesk-backend/api/responses"
	"github.com/supplydesk/supplydesk-backend/api/validators"
	catalogsvc "github.com/supplydesk/supplydesk-backend/internal/catalog"
	"github.com/supplydesk/supplydesk-backend/pkg/db/models"
	pkgerrors "github.com/supplydesk/supplydesk-backend/pkg/errors"
	"github.com/supplydesk/supplydesk-backend/pkg/logger"
)

// ListProducts serves the buyer-facing catalog, narrowed by the optional
// category_id and shop_id query parameters.
func ListProducts(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		categoryID, err := validators.ParseQueryUint(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shopID, err := validators.ParseQueryUint(r, "shop_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListProducts(r.Context(), catalogsvc.ProductFilter{CategoryID: categoryID, ShopID: shopID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]listingResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newListingResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// ExportProducts serves the flat feed of every listing on the marketplace.
func ExportProducts(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		rows, err := svc.ExportProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type listingResponse struct {
	ID         uint              `json:"id"`
	Product    string            `json:"product"`
	Category   *categoryResponse `json:"category,omitempty"`
	Shop       *shopRefResponse  `json:"shop,omitempty"`
	Model      string            `json:"model,omitempty"`
	ExternalID uint              `json:"external_id"`
	Quantity   int               `json:"quantity"`
	Price      int               `json:"price"`
	PriceRRC   int               `json:"price_rrc"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

type categoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type shopRefResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	AcceptingOrders bool   `json:"accepting_orders"`
}

func newListingResponse(info *models.ProductInfo) listingResponse {
	resp := listingResponse{
		ID:         info.ID,
		Model:      info.Model,
		ExternalID: info.ExternalID,
		Quantity:   info.Quantity,
		Price:      info.Price,
		PriceRRC:   info.PriceRRC,
	}
	if info.Product != nil {
		resp.Product = info.Product.Name
		if info.Product.Category != nil {
			resp.Category = &categoryResponse{ID: info.Product.Category.ID, Name: info.Product.Category.Name}
		}
	}
	if info.Shop != nil {
		resp.Shop = &shopRefResponse{ID: info.Shop.ID, Name: info.Shop.Name, AcceptingOrders: info.Shop.AcceptingOrders}
	}
	if len(info.Parameters) > 0 {
		resp.Parameters = make(map[string]string, len(info.Parameters))
		for _, param := range info.Parameters {
			if param.Parameter != nil {
				resp.Parameters[param.Parameter.Name] = param.Value
			}
		}
	}
	return resp
}
