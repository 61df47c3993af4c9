package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/supplydesk/supplydesk-backend/pkg/db/models"
	pkgerrors "github.com/supplydesk/supplydesk-backend/pkg/errors"
)

// ExportRow is the flat shape served by the product export feed.
type ExportRow struct {
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

// Service exposes catalog read operations and partner shop management.
type Service interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.ProductInfo, error)
	ExportProducts(ctx context.Context) ([]ExportRow, error)
	GetPartnerShop(ctx context.Context, userID uint) (*models.Shop, error)
	SetAcceptingOrders(ctx context.Context, userID uint, accepting bool) (*models.Shop, error)
}

type service struct {
	repo CatalogRepository
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo CatalogRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// ListProducts returns listings narrowed by the optional category/shop filter.
func (s *service) ListProducts(ctx context.Context, filter ProductFilter) ([]models.ProductInfo, error) {
	rows, err := s.repo.ListListings(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

// ExportProducts flattens every listing into the export feed shape.
func (s *service) ExportProducts(ctx context.Context) ([]ExportRow, error) {
	rows, err := s.repo.ExportListings(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "export products")
	}

	out := make([]ExportRow, 0, len(rows))
	for _, info := range rows {
		row := ExportRow{Price: info.Price, Quantity: info.Quantity}
		if info.Product != nil {
			row.Name = info.Product.Name
		}
		out = append(out, row)
	}
	return out, nil
}

// GetPartnerShop loads the shop owned by the supplier account.
func (s *service) GetPartnerShop(ctx context.Context, userID uint) (*models.Shop, error) {
	if userID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	shop, err := s.repo.FindShopByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	return shop, nil
}

// SetAcceptingOrders toggles whether the supplier's shop takes new orders.
func (s *service) SetAcceptingOrders(ctx context.Context, userID uint, accepting bool) (*models.Shop, error) {
	shop, err := s.GetPartnerShop(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateShopAccepting(ctx, shop.ID, accepting); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shop state")
	}
	shop.AcceptingOrders = accepting
	return shop, nil
}
