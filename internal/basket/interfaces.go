package basket

import (
	"context"

	"gorm.io/gorm"

	"github.com/supplydesk/supplydesk-backend/pkg/db/models"
)

// OrderRepository defines the persistence surface required by the basket service.
type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository

	FindBasket(ctx context.Context, userID uint) (*models.Order, error)
	FindBasketForUpdate(ctx context.Context, userID uint) (*models.Order, error)
	CreateBasket(ctx context.Context, userID uint) (*models.Order, error)

	FindItem(ctx context.Context, orderID, productInfoID uint) (*models.OrderItem, error)
	CreateItem(ctx context.Context, item *models.OrderItem) error
	UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error
	DeleteItem(ctx context.Context, orderID, itemID uint) error

	DecrementStock(ctx context.Context, productInfoID uint, quantity int) (int64, error)
	ConfirmOrder(ctx context.Context, orderID, contactID uint) error

	ListOrders(ctx context.Context, userID uint) ([]models.Order, error)
	ListSupplierOrders(ctx context.Context, supplierUserID uint) ([]models.Order, error)
}
