package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	dbpkg "github.com/supplydesk/supplydesk-backend/pkg/db"
	"github.com/supplydesk/supplydesk-backend/pkg/db/models"
)

// Repository exposes persistence operations for the shared product catalog.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CatalogRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindShopByUser loads the shop owned by the user.
func (r *Repository) FindShopByUser(ctx context.Context, userID uint) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&shop).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// GetOrCreateShop returns the shop matching name+owner, creating it if absent.
func (r *Repository) GetOrCreateShop(ctx context.Context, name string, userID uint) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).
		Where("name = ? AND user_id = ?", name, userID).
		First(&shop).Error
	if err == nil {
		return &shop, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	shop = models.Shop{Name: name, UserID: &userID, AcceptingOrders: true}
	if err := r.db.WithContext(ctx).Create(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// UpdateShopAccepting flips whether the shop accepts new orders.
func (r *Repository) UpdateShopAccepting(ctx context.Context, shopID uint, accepting bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", shopID).
		Update("accepting_orders", accepting).Error
}

// UpsertCategory returns the category with the supplier-fed id. The name is
// written only on first creation; a concurrent create loses the race and
// re-fetches.
func (r *Repository) UpsertCategory(ctx context.Context, id uint, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category = models.Category{ID: id, Name: name}
	if err := r.db.WithContext(ctx).Create(&category).Error; err != nil {
		if dbpkg.IsUniqueViolation(err, "categories_pkey") {
			var existing models.Category
			if refetchErr := r.db.WithContext(ctx).Where("id = ?", id).First(&existing).Error; refetchErr != nil {
				return nil, refetchErr
			}
			return &existing, nil
		}
		return nil, err
	}
	return &category, nil
}

// LinkShopCategory associates the category with the shop (idempotent).
func (r *Repository) LinkShopCategory(ctx context.Context, shop *models.Shop, category *models.Category) error {
	return r.db.WithContext(ctx).
		Model(shop).
		Association("Categories").
		Append(category)
}

// GetOrCreateProduct returns the product keyed by name+category.
func (r *Repository) GetOrCreateProduct(ctx context.Context, name string, categoryID uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("name = ? AND category_id = ?", name, categoryID).
		First(&product).Error
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product = models.Product{Name: name, CategoryID: categoryID}
	if err := r.db.WithContext(ctx).Create(&product).Error; err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_products_name_category") {
			var existing models.Product
			if refetchErr := r.db.WithContext(ctx).
				Where("name = ? AND category_id = ?", name, categoryID).
				First(&existing).Error; refetchErr != nil {
				return nil, refetchErr
			}
			return &existing, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetOrCreateParameter returns the attribute-name dictionary entry.
func (r *Repository) GetOrCreateParameter(ctx context.Context, name string) (*models.Parameter, error) {
	var parameter models.Parameter
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&parameter).Error
	if err == nil {
		return &parameter, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	parameter = models.Parameter{Name: name}
	if err := r.db.WithContext(ctx).Create(&parameter).Error; err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_parameters_name") {
			var existing models.Parameter
			if refetchErr := r.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error; refetchErr != nil {
				return nil, refetchErr
			}
			return &existing, nil
		}
		return nil, err
	}
	return &parameter, nil
}

// DeleteListingsByShop drops every listing the shop currently publishes.
// Parameter rows go with them via cascade.
func (r *Repository) DeleteListingsByShop(ctx context.Context, shopID uint) error {
	return r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Delete(&models.ProductInfo{}).Error
}

// CreateListing inserts a listing together with its parameter values.
func (r *Repository) CreateListing(ctx context.Context, info *models.ProductInfo) (*models.ProductInfo, error) {
	if err := r.db.WithContext(ctx).Create(info).Error; err != nil {
		return nil, err
	}
	return info, nil
}

// FindListingByID loads one listing with its product and shop.
func (r *Repository) FindListingByID(ctx context.Context, id uint) (*models.ProductInfo, error) {
	var info models.ProductInfo
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Shop").
		Where("id = ?", id).
		First(&info).Error
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// ListListings returns listings matching the filter with relations eager-loaded.
func (r *Repository) ListListings(ctx context.Context, filter ProductFilter) ([]models.ProductInfo, error) {
	query := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Category").
		Preload("Shop").
		Preload("Parameters").
		Preload("Parameters.Parameter")

	if filter.CategoryID != nil {
		query = query.
			Joins("JOIN products ON products.id = product_infos.product_id").
			Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.ShopID != nil {
		query = query.Where("product_infos.shop_id = ?", *filter.ShopID)
	}

	var rows []models.ProductInfo
	if err := query.Order("product_infos.id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ExportListings returns every listing with its product loaded.
func (r *Repository) ExportListings(ctx context.Context) ([]models.ProductInfo, error) {
	var rows []models.ProductInfo
	err := r.db.WithContext(ctx).
		Preload("Product").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
