package basket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	dbpkg "github.com/supplydesk/supplydesk-backend/pkg/db"
	"github.com/supplydesk/supplydesk-backend/pkg/db/models"
	"github.com/supplydesk/supplydesk-backend/pkg/enums"
	pkgerrors "github.com/supplydesk/supplydesk-backend/pkg/errors"
	"github.com/supplydesk/supplydesk-backend/pkg/logger"
	"github.com/supplydesk/supplydesk-backend/pkg/outbox"
)

// basketLockTTL bounds how long a basket get-or-create can hold its mutex.
const basketLockTTL = 3 * time.Second

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type listingLoader interface {
	FindListingByID(ctx context.Context, id uint) (*models.ProductInfo, error)
}

type contactLoader interface {
	FindByIDAndUser(ctx context.Context, id, userID uint) (*models.Contact, error)
}

type locker interface {
	AcquireLock(ctx context.Context, scope string, ttl time.Duration) (func(), error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ConfirmedItem is one order position snapshot carried by the confirm event.
type ConfirmedItem struct {
	ProductInfoID uint   `json:"product_info_id"`
	Product       string `json:"product"`
	Quantity      int    `json:"quantity"`
	Price         int    `json:"price"`
}

// OrderConfirmedPayload is the outbox payload for a confirmed order.
type OrderConfirmedPayload struct {
	OrderID   uint            `json:"order_id"`
	UserID    uint            `json:"user_id"`
	ContactID uint            `json:"contact_id"`
	Items     []ConfirmedItem `json:"items"`
}

// Service exposes the basket and order lifecycle operations.
type Service interface {
	ViewBasket(ctx context.Context, userID uint) (*models.Order, error)
	AddItem(ctx context.Context, userID, productInfoID uint, quantity int) (*models.Order, error)
	RemoveItem(ctx context.Context, userID, itemID uint) error
	Confirm(ctx context.Context, userID, contactID uint) (*models.Order, error)
	ListOrders(ctx context.Context, userID uint) ([]models.Order, error)
	ListSupplierOrders(ctx context.Context, supplierUserID uint) ([]models.Order, error)
}

type service struct {
	repo     OrderRepository
	tx       txRunner
	listings listingLoader
	contacts contactLoader
	locks    locker
	events   eventEmitter
	logg     *logger.Logger
}

// NewService builds a basket service backed by the provided stack.
func NewService(repo OrderRepository, tx txRunner, listings listingLoader, contacts contactLoader, locks locker, events eventEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if listings == nil {
		return nil, fmt.Errorf("listing loader required")
	}
	if contacts == nil {
		return nil, fmt.Errorf("contact loader required")
	}
	if locks == nil {
		return nil, fmt.Errorf("locker required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		listings: listings,
		contacts: contacts,
		locks:    locks,
		events:   events,
		logg:     logg,
	}, nil
}

// ViewBasket returns the user's open basket, or nil when none exists.
// An absent basket is an empty result, not an error.
func (s *service) ViewBasket(ctx context.Context, userID uint) (*models.Order, error) {
	basket, err := s.repo.FindBasket(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
	}
	return basket, nil
}

// AddItem puts a listing into the user's basket, opening one if needed.
// Adding a listing that is already in the basket merges the quantities.
func (s *service) AddItem(ctx context.Context, userID, productInfoID uint, quantity int) (*models.Order, error) {
	if productInfoID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_info_id is required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	listing, err := s.listings.FindListingByID(ctx, productInfoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	release, err := s.locks.AcquireLock(ctx, fmt.Sprintf("basket:%d", userID), basketLockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire basket lock")
	}
	defer release()

	basket, err := s.getOrCreateBasket(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.upsertItem(ctx, basket.ID, listing.ID, quantity); err != nil {
		return nil, err
	}

	refreshed, err := s.repo.FindBasket(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload basket")
	}
	return refreshed, nil
}

// RemoveItem deletes a basket position. Removing an unknown or foreign
// position, or removing when no basket is open, is a silent no-op so the
// operation stays idempotent.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uint) error {
	if itemID == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "item_id is required")
	}

	basket, err := s.repo.FindBasket(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
	}

	if err := s.repo.DeleteItem(ctx, basket.ID, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete basket item")
	}
	return nil
}

// Confirm validates every position against its shop and stock, reserves the
// stock and moves the basket to the new state. Validation and reservation
// run in one transaction: a single failing position leaves everything as it
// was.
func (s *service) Confirm(ctx context.Context, userID, contactID uint) (*models.Order, error) {
	if contactID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact_id is required")
	}

	contact, err := s.contacts.FindByIDAndUser(ctx, contactID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeContactNotFound, "contact not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contact")
	}

	var confirmed *models.Order
	var payload OrderConfirmedPayload

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		basket, err := txRepo.FindBasketForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNoActiveBasket, "no active basket")
			}
			return err
		}
		if len(basket.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "basket is empty")
		}

		payload = OrderConfirmedPayload{OrderID: basket.ID, UserID: userID, ContactID: contact.ID}

		for _, item := range basket.Items {
			if item.ProductInfoID == nil || item.ProductInfo == nil {
				// A re-ingest nulled this position's listing; treat it like
				// stock that ran out so the buyer fixes the basket.
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, "basket contains a listing that is no longer available")
			}

			info := item.ProductInfo
			if info.Shop != nil && !info.Shop.AcceptingOrders {
				return pkgerrors.New(pkgerrors.CodeShopClosed, fmt.Sprintf("shop %s is not accepting orders", info.Shop.Name))
			}

			affected, err := txRepo.DecrementStock(ctx, info.ID, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				name := fmt.Sprintf("listing %d", info.ID)
				if info.Product != nil {
					name = info.Product.Name
				}
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("insufficient stock for %s", name))
			}

			entry := ConfirmedItem{ProductInfoID: info.ID, Quantity: item.Quantity, Price: info.Price}
			if info.Product != nil {
				entry.Product = info.Product.Name
			}
			payload.Items = append(payload.Items, entry)
		}

		if err := txRepo.ConfirmOrder(ctx, basket.ID, contact.ID); err != nil {
			return err
		}

		basket.State = enums.OrderStateNew
		basket.ContactID = &contact.ID
		basket.Contact = contact
		confirmed = basket

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderConfirmed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   basket.ID,
			Actor:         &outbox.ActorRef{UserID: userID, Type: enums.UserTypeBuyer.String()},
			Data:          payload,
			Version:       1,
			OccurredAt:    time.Now(),
		})
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm order")
	}

	if s.logg != nil {
		fields := map[string]any{"order_id": confirmed.ID, "items": len(payload.Items)}
		s.logg.Info(s.logg.WithFields(ctx, fields), "order confirmed")
	}

	return confirmed, nil
}

// ListOrders returns the user's placed orders, newest first.
func (s *service) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.repo.ListOrders(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

// ListSupplierOrders returns placed orders touching the supplier's shop.
func (s *service) ListSupplierOrders(ctx context.Context, supplierUserID uint) ([]models.Order, error) {
	orders, err := s.repo.ListSupplierOrders(ctx, supplierUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list supplier orders")
	}
	return orders, nil
}

func (s *service) getOrCreateBasket(ctx context.Context, userID uint) (*models.Order, error) {
	basket, err := s.repo.FindBasket(ctx, userID)
	if err == nil {
		return basket, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
	}

	created, err := s.repo.CreateBasket(ctx, userID)
	if err != nil {
		// Lost the race to another request: the partial unique index rejected
		// the second basket, so pick up the winner's row.
		if dbpkg.IsUniqueViolation(err, "ux_orders_user_basket") {
			existing, refetchErr := s.repo.FindBasket(ctx, userID)
			if refetchErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, refetchErr, "reload basket after race")
			}
			return existing, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create basket")
	}
	return created, nil
}

func (s *service) upsertItem(ctx context.Context, orderID, productInfoID uint, quantity int) error {
	existing, err := s.repo.FindItem(ctx, orderID, productInfoID)
	if err == nil {
		if err := s.repo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge basket item")
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket item")
	}

	item := &models.OrderItem{OrderID: orderID, ProductInfoID: &productInfoID, Quantity: quantity}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_order_items_listing") {
			winner, refetchErr := s.repo.FindItem(ctx, orderID, productInfoID)
			if refetchErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, refetchErr, "reload basket item after race")
			}
			if err := s.repo.UpdateItemQuantity(ctx, winner.ID, winner.Quantity+quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge basket item")
			}
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create basket item")
	}
	return nil
}
