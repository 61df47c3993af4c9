package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/supplydesk/supplydesk-backend/pkg/db/models"
)

// ProductFilter narrows the public listing query.
type ProductFilter struct {
	CategoryID *uint
	ShopID     *uint
}

// CatalogRepository defines the persistence surface shared by the catalog and
// feed services. Feed ingest binds it to a transaction via WithTx.
type CatalogRepository interface {
	WithTx(tx *gorm.DB) CatalogRepository

	FindShopByUser(ctx context.Context, userID uint) (*models.Shop, error)
	GetOrCreateShop(ctx context.Context, name string, userID uint) (*models.Shop, error)
	UpdateShopAccepting(ctx context.Context, shopID uint, accepting bool) error

	UpsertCategory(ctx context.Context, id uint, name string) (*models.Category, error)
	LinkShopCategory(ctx context.Context, shop *models.Shop, category *models.Category) error

	GetOrCreateProduct(ctx context.Context, name string, categoryID uint) (*models.Product, error)
	GetOrCreateParameter(ctx context.Context, name string) (*models.Parameter, error)

	DeleteListingsByShop(ctx context.Context, shopID uint) error
	CreateListing(ctx context.Context, info *models.ProductInfo) (*models.ProductInfo, error)
	FindListingByID(ctx context.Context, id uint) (*models.ProductInfo, error)
	ListListings(ctx context.Context, filter ProductFilter) ([]models.ProductInfo, error)
	ExportListings(ctx context.Context) ([]models.ProductInfo, error)
}
