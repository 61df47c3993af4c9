package catalog

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/supplydesk/supplydesk-backend/pkg/db/models"
	pkgerrors "github.com/supplydesk/supplydesk-backend/pkg/errors"
)

func TestExportProductsFlattensListings(t *testing.T) {
	t.Parallel()

	repo := &stubCatalogRepo{
		listings: []models.ProductInfo{
			{ID: 1, Price: 1000, Quantity: 5, Product: &models.Product{Name: "Widget"}},
			{ID: 2, Price: 2500, Quantity: 0, Product: &models.Product{Name: "Gadget"}},
		},
	}
	svc := newTestService(t, repo)

	rows, err := svc.ExportProducts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Name != "Widget" || rows[0].Price != 1000 || rows[0].Quantity != 5 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Name != "Gadget" {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestGetPartnerShopNotFound(t *testing.T) {
	t.Parallel()

	repo := &stubCatalogRepo{shopErr: gorm.ErrRecordNotFound}
	svc := newTestService(t, repo)

	_, err := svc.GetPartnerShop(context.Background(), 7)
	if err == nil {
		t.Fatal("expected error for missing shop")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestSetAcceptingOrders(t *testing.T) {
	t.Parallel()

	userID := uint(7)
	repo := &stubCatalogRepo{shop: &models.Shop{ID: 3, Name: "Acme", UserID: &userID, AcceptingOrders: true}}
	svc := newTestService(t, repo)

	shop, err := svc.SetAcceptingOrders(context.Background(), userID, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shop.AcceptingOrders {
		t.Fatal("expected accepting_orders to be false")
	}
	if repo.updatedShopID != 3 || repo.updatedAccepting {
		t.Fatalf("repository not updated as expected: id=%d accepting=%v", repo.updatedShopID, repo.updatedAccepting)
	}
}

func TestListProductsPassesFilter(t *testing.T) {
	t.Parallel()

	repo := &stubCatalogRepo{}
	svc := newTestService(t, repo)

	categoryID := uint(10)
	if _, err := svc.ListProducts(context.Background(), ProductFilter{CategoryID: &categoryID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastFilter.CategoryID == nil || *repo.lastFilter.CategoryID != categoryID {
		t.Fatalf("filter not forwarded: %+v", repo.lastFilter)
	}
}

func newTestService(t *testing.T, repo CatalogRepository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

type stubCatalogRepo struct {
	shop             *models.Shop
	shopErr          error
	listings         []models.ProductInfo
	lastFilter       ProductFilter
	updatedShopID    uint
	updatedAccepting bool
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) CatalogRepository { return s }

func (s *stubCatalogRepo) FindShopByUser(ctx context.Context, userID uint) (*models.Shop, error) {
	if s.shopErr != nil {
		return nil, s.shopErr
	}
	if s.shop == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.shop, nil
}

func (s *stubCatalogRepo) GetOrCreateShop(ctx context.Context, name string, userID uint) (*models.Shop, error) {
	return s.shop, nil
}

func (s *stubCatalogRepo) UpdateShopAccepting(ctx context.Context, shopID uint, accepting bool) error {
	s.updatedShopID = shopID
	s.updatedAccepting = accepting
	return nil
}

func (s *stubCatalogRepo) UpsertCategory(ctx context.Context, id uint, name string) (*models.Category, error) {
	return &models.Category{ID: id, Name: name}, nil
}

func (s *stubCatalogRepo) LinkShopCategory(ctx context.Context, shop *models.Shop, category *models.Category) error {
	return nil
}

func (s *stubCatalogRepo) GetOrCreateProduct(ctx context.Context, name string, categoryID uint) (*models.Product, error) {
	return &models.Product{Name: name, CategoryID: categoryID}, nil
}

func (s *stubCatalogRepo) GetOrCreateParameter(ctx context.Context, name string) (*models.Parameter, error) {
	return &models.Parameter{Name: name}, nil
}

func (s *stubCatalogRepo) DeleteListingsByShop(ctx context.Context, shopID uint) error { return nil }

func (s *stubCatalogRepo) CreateListing(ctx context.Context, info *models.ProductInfo) (*models.ProductInfo, error) {
	return info, nil
}

func (s *stubCatalogRepo) FindListingByID(ctx context.Context, id uint) (*models.ProductInfo, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) ListListings(ctx context.Context, filter ProductFilter) ([]models.ProductInfo, error) {
	s.lastFilter = filter
	return s.listings, nil
}

func (s *stubCatalogRepo) ExportListings(ctx context.Context) ([]models.ProductInfo, error) {
	return s.listings, nil
}
