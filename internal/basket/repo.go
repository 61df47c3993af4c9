package basket

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/supplydesk/supplydesk-backend/pkg/db/models"
	"github.com/supplydesk/supplydesk-backend/pkg/enums"
)

// Repository exposes persistence operations for baskets and orders.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an order repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindBasket loads the user's open basket with items and listings.
func (r *Repository) FindBasket(ctx context.Context, userID uint) (*models.Order, error) {
	var order models.Order
	err := r.basketPreloads(r.db.WithContext(ctx)).
		Where("user_id = ? AND state = ?", userID, enums.OrderStateBasket).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindBasketForUpdate loads the basket with the order row locked for the
// duration of the surrounding transaction.
func (r *Repository) FindBasketForUpdate(ctx context.Context, userID uint) (*models.Order, error) {
	var order models.Order
	err := r.basketPreloads(r.db.WithContext(ctx)).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "orders"}}).
		Where("user_id = ? AND state = ?", userID, enums.OrderStateBasket).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateBasket opens a new basket for the user. The partial unique index on
// (user_id) WHERE state='basket' rejects a second open basket.
func (r *Repository) CreateBasket(ctx context.Context, userID uint) (*models.Order, error) {
	order := models.Order{UserID: userID, State: enums.OrderStateBasket}
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindItem loads the basket position for the given listing.
func (r *Repository) FindItem(ctx context.Context, orderID, productInfoID uint) (*models.OrderItem, error) {
	var item models.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND product_info_id = ?", orderID, productInfoID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a basket position.
func (r *Repository) CreateItem(ctx context.Context, item *models.OrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateItemQuantity sets the quantity of an existing position.
func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

// DeleteItem removes a position scoped to the owning order. Deleting a
// position that is not there is a no-op.
func (r *Repository) DeleteItem(ctx context.Context, orderID, itemID uint) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND order_id = ?", itemID, orderID).
		Delete(&models.OrderItem{}).Error
}

// DecrementStock atomically reserves stock for one listing. The guard in the
// WHERE clause makes check and decrement a single statement; zero rows
// affected means insufficient stock.
func (r *Repository) DecrementStock(ctx context.Context, productInfoID uint, quantity int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ProductInfo{}).
		Where("id = ? AND quantity >= ?", productInfoID, quantity).
		Update("quantity", gorm.Expr("quantity - ?", quantity))
	return res.RowsAffected, res.Error
}

// ConfirmOrder moves the basket to the new state and attaches the contact.
func (r *Repository) ConfirmOrder(ctx context.Context, orderID, contactID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"state":      enums.OrderStateNew,
			"contact_id": contactID,
		}).Error
}

// ListOrders returns the user's placed orders, newest first. The open basket
// is not an order yet and stays out of the history.
func (r *Repository) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.basketPreloads(r.db.WithContext(ctx)).
		Preload("Contact").
		Where("user_id = ? AND state <> ?", userID, enums.OrderStateBasket).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListSupplierOrders returns placed orders containing at least one listing
// from the supplier's shop.
func (r *Repository) ListSupplierOrders(ctx context.Context, supplierUserID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.basketPreloads(r.db.WithContext(ctx)).
		Preload("Contact").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Joins("JOIN product_infos ON product_infos.id = order_items.product_info_id").
		Joins("JOIN shops ON shops.id = product_infos.shop_id").
		Where("shops.user_id = ? AND orders.state <> ?", supplierUserID, enums.OrderStateBasket).
		Distinct("orders.*").
		Order("orders.created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *Repository) basketPreloads(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Items").
		Preload("Items.ProductInfo").
		Preload("Items.ProductInfo.Product").
		Preload("Items.ProductInfo.Shop")
}
