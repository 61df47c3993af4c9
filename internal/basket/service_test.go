package basket

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/supplydesk/supplydesk-backend/pkg/db/models"
	"github.com/supplydesk/supplydesk-backend/pkg/enums"
	pkgerrors "github.com/supplydesk/supplydesk-backend/pkg/errors"
	"github.com/supplydesk/supplydesk-backend/pkg/outbox"
)

func TestViewBasketEmptyWhenNoneExists(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	deps.repo.basketErr = gorm.ErrRecordNotFound

	basket, err := svc.ViewBasket(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if basket != nil {
		t.Fatalf("expected empty result, got %+v", basket)
	}
}

func TestAddItemCreatesBasketAndItem(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	deps.repo.basketErr = gorm.ErrRecordNotFound
	deps.listings.listing = &models.ProductInfo{ID: 10, Quantity: 5, Price: 100}

	basket, err := svc.AddItem(context.Background(), 1, 10, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if basket == nil {
		t.Fatal("expected basket")
	}
	if deps.repo.createdBasketUser != 1 {
		t.Fatalf("basket not created for user 1, got %d", deps.repo.createdBasketUser)
	}
	if len(deps.repo.createdItems) != 1 {
		t.Fatalf("expected 1 item created, got %d", len(deps.repo.createdItems))
	}
	item := deps.repo.createdItems[0]
	if item.ProductInfoID == nil || *item.ProductInfoID != 10 || item.Quantity != 2 {
		t.Fatalf("unexpected item: %+v", item)
	}
	if deps.locks.acquired != 1 || deps.locks.released != 1 {
		t.Fatalf("lock not used correctly: acquired=%d released=%d", deps.locks.acquired, deps.locks.released)
	}
}

func TestAddItemMergesDuplicateListing(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	productInfoID := uint(10)
	deps.repo.basket = &models.Order{ID: 5, UserID: 1, State: enums.OrderStateBasket}
	deps.repo.item = &models.OrderItem{ID: 7, OrderID: 5, ProductInfoID: &productInfoID, Quantity: 3}
	deps.listings.listing = &models.ProductInfo{ID: productInfoID}

	if _, err := svc.AddItem(context.Background(), 1, productInfoID, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps.repo.createdItems) != 0 {
		t.Fatal("no new item row expected for a duplicate listing")
	}
	if deps.repo.updatedItemID != 7 || deps.repo.updatedQuantity != 5 {
		t.Fatalf("expected quantity merge to 5 on item 7, got %d on item %d", deps.repo.updatedQuantity, deps.repo.updatedItemID)
	}
}

func TestAddItemBasketRaceRefetches(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	winner := &models.Order{ID: 8, UserID: 1, State: enums.OrderStateBasket}
	deps.repo.basketErr = gorm.ErrRecordNotFound
	deps.repo.createBasketErr = errors.New(`duplicate key value violates unique constraint "ux_orders_user_basket"`)
	deps.repo.basketAfterCreate = winner
	deps.listings.listing = &models.ProductInfo{ID: 10}

	basket, err := svc.AddItem(context.Background(), 1, 10, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if basket.ID != winner.ID {
		t.Fatalf("expected winner basket %d, got %d", winner.ID, basket.ID)
	}
}

func TestAddItemListingNotFound(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	deps.listings.err = gorm.ErrRecordNotFound

	_, err := svc.AddItem(context.Background(), 1, 10, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRemoveItemScopedToOwnBasket(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	deps.repo.basket = &models.Order{ID: 5, UserID: 1, State: enums.OrderStateBasket}

	if err := svc.RemoveItem(context.Background(), 1, 33); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deps.repo.deletedOrderID != 5 || deps.repo.deletedItemID != 33 {
		t.Fatalf("delete not scoped: order=%d item=%d", deps.repo.deletedOrderID, deps.repo.deletedItemID)
	}
}

func TestRemoveItemNoBasketIsNoOp(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	deps.repo.basketErr = gorm.ErrRecordNotFound

	if err := svc.RemoveItem(context.Background(), 1, 33); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deps.repo.deletedOrderID != 0 || deps.repo.deletedItemID != 0 {
		t.Fatalf("no delete expected: order=%d item=%d", deps.repo.deletedOrderID, deps.repo.deletedItemID)
	}
}

func TestConfirmHappyPath(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	deps.contacts.contact = &models.Contact{ID: 4, UserID: 1, City: "Moscow", Street: "Tverskaya", Phone: "+79991234567"}
	deps.repo.basket = basketWithItems(1, []stockedItem{
		{productInfoID: 10, quantity: 2, stock: 5, accepting: true, product: "Widget", price: 100},
		{productInfoID: 11, quantity: 1, stock: 1, accepting: true, product: "Gadget", price: 250},
	})

	order, err := svc.Confirm(context.Background(), 1, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.State != enums.OrderStateNew {
		t.Fatalf("expected state new, got %s", order.State)
	}
	if order.ContactID == nil || *order.ContactID != 4 {
		t.Fatal("contact not attached")
	}
	if len(deps.repo.decrements) != 2 {
		t.Fatalf("expected 2 stock decrements, got %d", len(deps.repo.decrements))
	}
	if deps.repo.confirmedOrderID != order.ID {
		t.Fatalf("order %d not confirmed in repo", order.ID)
	}

	if len(deps.events.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(deps.events.events))
	}
	event := deps.events.events[0]
	if event.EventType != enums.EventOrderConfirmed || event.AggregateID != order.ID {
		t.Fatalf("unexpected event: %+v", event)
	}
	payload, ok := event.Data.(OrderConfirmedPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", event.Data)
	}
	if len(payload.Items) != 2 || payload.Items[0].Product != "Widget" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestConfirmShopClosed(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	deps.contacts.contact = &models.Contact{ID: 4, UserID: 1}
	deps.repo.basket = basketWithItems(1, []stockedItem{
		{productInfoID: 10, quantity: 1, stock: 5, accepting: false, product: "Widget"},
	})

	_, err := svc.Confirm(context.Background(), 1, 4)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeShopClosed {
		t.Fatalf("unexpected error: %v", err)
	}
	if deps.repo.confirmedOrderID != 0 {
		t.Fatal("order must not be confirmed when a shop is closed")
	}
	if len(deps.events.events) != 0 {
		t.Fatal("no event expected on failed confirm")
	}
}

func TestConfirmInsufficientStock(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	deps.contacts.contact = &models.Contact{ID: 4, UserID: 1}
	deps.repo.basket = basketWithItems(1, []stockedItem{
		{productInfoID: 10, quantity: 3, stock: 2, accepting: true, product: "Widget"},
	})

	_, err := svc.Confirm(context.Background(), 1, 4)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}
	if deps.repo.confirmedOrderID != 0 {
		t.Fatal("order must not be confirmed on insufficient stock")
	}
	if len(deps.events.events) != 0 {
		t.Fatal("no event expected on failed confirm")
	}
}

func TestConfirmDanglingListingFailsAsInsufficientStock(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	deps.contacts.contact = &models.Contact{ID: 4, UserID: 1}
	deps.repo.basket = &models.Order{
		ID:     5,
		UserID: 1,
		State:  enums.OrderStateBasket,
		Items:  []models.OrderItem{{ID: 100, OrderID: 5, Quantity: 2}},
	}

	_, err := svc.Confirm(context.Background(), 1, 4)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}
	if deps.repo.confirmedOrderID != 0 {
		t.Fatal("order must not be confirmed with a dangling listing")
	}
	if len(deps.events.events) != 0 {
		t.Fatal("no event expected on failed confirm")
	}
}

func TestConfirmContactNotFound(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	deps.contacts.err = gorm.ErrRecordNotFound

	_, err := svc.Confirm(context.Background(), 1, 4)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeContactNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfirmEmptyBasket(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	deps.contacts.contact = &models.Contact{ID: 4, UserID: 1}
	deps.repo.basket = &models.Order{ID: 5, UserID: 1, State: enums.OrderStateBasket}

	_, err := svc.Confirm(context.Background(), 1, 4)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

type stockedItem struct {
	productInfoID uint
	quantity      int
	stock         int
	accepting     bool
	product       string
	price         int
}

func basketWithItems(userID uint, items []stockedItem) *models.Order {
	order := &models.Order{ID: 5, UserID: userID, State: enums.OrderStateBasket}
	for i, it := range items {
		id := it.productInfoID
		info := &models.ProductInfo{
			ID:       id,
			Quantity: it.stock,
			Price:    it.price,
			Product:  &models.Product{Name: it.product},
			Shop:     &models.Shop{ID: 1, Name: "Connect", AcceptingOrders: it.accepting},
		}
		order.Items = append(order.Items, models.OrderItem{
			ID:            uint(100 + i),
			OrderID:       order.ID,
			ProductInfoID: &id,
			Quantity:      it.quantity,
			ProductInfo:   info,
		})
	}
	return order
}

type testDeps struct {
	repo     *stubOrderRepo
	listings *stubListingLoader
	contacts *stubContactLoader
	locks    *stubLocker
	events   *stubEmitter
}

func newTestService(t *testing.T) (Service, *testDeps) {
	t.Helper()
	deps := &testDeps{
		repo:     &stubOrderRepo{},
		listings: &stubListingLoader{},
		contacts: &stubContactLoader{},
		locks:    &stubLocker{},
		events:   &stubEmitter{},
	}
	svc, err := NewService(deps.repo, stubTxRunner{}, deps.listings, deps.contacts, deps.locks, deps.events, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, deps
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubListingLoader struct {
	listing *models.ProductInfo
	err     error
}

func (s *stubListingLoader) FindListingByID(ctx context.Context, id uint) (*models.ProductInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.listing == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.listing, nil
}

type stubContactLoader struct {
	contact *models.Contact
	err     error
}

func (s *stubContactLoader) FindByIDAndUser(ctx context.Context, id, userID uint) (*models.Contact, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.contact == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.contact, nil
}

type stubLocker struct {
	acquired int
	released int
}

func (s *stubLocker) AcquireLock(ctx context.Context, scope string, ttl time.Duration) (func(), error) {
	s.acquired++
	return func() { s.released++ }, nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubOrderRepo struct {
	basket            *models.Order
	basketErr         error
	basketAfterCreate *models.Order
	createBasketErr   error
	createdBasketUser uint

	item            *models.OrderItem
	createdItems    []models.OrderItem
	updatedItemID   uint
	updatedQuantity int

	deletedOrderID uint
	deletedItemID  uint

	decrements       []uint
	confirmedOrderID uint
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) OrderRepository { return s }

func (s *stubOrderRepo) FindBasket(ctx context.Context, userID uint) (*models.Order, error) {
	if s.basketAfterCreate != nil && s.createdBasketUser != 0 {
		return s.basketAfterCreate, nil
	}
	if s.createdBasketUser != 0 {
		return &models.Order{ID: 99, UserID: userID, State: enums.OrderStateBasket}, nil
	}
	if s.basketErr != nil {
		return nil, s.basketErr
	}
	if s.basket == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.basket, nil
}

func (s *stubOrderRepo) FindBasketForUpdate(ctx context.Context, userID uint) (*models.Order, error) {
	return s.FindBasket(ctx, userID)
}

func (s *stubOrderRepo) CreateBasket(ctx context.Context, userID uint) (*models.Order, error) {
	s.createdBasketUser = userID
	if s.createBasketErr != nil {
		return nil, s.createBasketErr
	}
	return &models.Order{ID: 99, UserID: userID, State: enums.OrderStateBasket}, nil
}

func (s *stubOrderRepo) FindItem(ctx context.Context, orderID, productInfoID uint) (*models.OrderItem, error) {
	if s.item == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.item, nil
}

func (s *stubOrderRepo) CreateItem(ctx context.Context, item *models.OrderItem) error {
	s.createdItems = append(s.createdItems, *item)
	return nil
}

func (s *stubOrderRepo) UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	s.updatedItemID = itemID
	s.updatedQuantity = quantity
	return nil
}

func (s *stubOrderRepo) DeleteItem(ctx context.Context, orderID, itemID uint) error {
	s.deletedOrderID = orderID
	s.deletedItemID = itemID
	return nil
}

func (s *stubOrderRepo) DecrementStock(ctx context.Context, productInfoID uint, quantity int) (int64, error) {
	s.decrements = append(s.decrements, productInfoID)
	for _, item := range s.basket.Items {
		if item.ProductInfo != nil && item.ProductInfo.ID == productInfoID {
			if item.ProductInfo.Quantity < quantity {
				return 0, nil
			}
			item.ProductInfo.Quantity -= quantity
			return 1, nil
		}
	}
	return 0, nil
}

func (s *stubOrderRepo) ConfirmOrder(ctx context.Context, orderID, contactID uint) error {
	s.confirmedOrderID = orderID
	return nil
}

func (s *stubOrderRepo) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) ListSupplierOrders(ctx context.Context, supplierUserID uint) ([]models.Order, error) {
	return nil, nil
}
