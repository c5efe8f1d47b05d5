package checkout

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tradekart/tradekart/app/models"
	"github.com/tradekart/tradekart/internal/pkg/events"
)

type fakeCartRepo struct {
	mu     sync.Mutex
	carts  map[string]*models.Cart
	nextID uint
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: map[string]*models.Cart{}}
}

func (r *fakeCartRepo) GetOrCreate(ownerID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cart, ok := r.carts[ownerID]; ok {
		return cart, nil
	}
	r.nextID++
	cart := &models.Cart{ID: r.nextID, OwnerID: ownerID, Currency: models.DefaultCurrency}
	r.carts[ownerID] = cart
	return cart, nil
}

func (r *fakeCartRepo) Get(ownerID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[ownerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	// Copy so concurrent checkouts read a stable snapshot, like a row fetch.
	cp := *cart
	cp.Items = append([]models.CartItem(nil), cart.Items...)
	return &cp, nil
}

func (r *fakeCartRepo) AddItem(ownerID, productID, name string, unitPrice decimal.Decimal, quantity int) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[ownerID]
	if !ok {
		r.nextID++
		cart = &models.Cart{ID: r.nextID, OwnerID: ownerID, Currency: models.DefaultCurrency}
		r.carts[ownerID] = cart
	}
	if item := cart.FindItem(productID); item != nil {
		item.Quantity += quantity
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: productID,
			Name:      name,
			UnitPrice: unitPrice,
			Quantity:  quantity,
		})
	}
	cart.RecalculateTotal()
	return cart, nil
}

func (r *fakeCartRepo) Clear(ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cart, ok := r.carts[ownerID]; ok {
		cart.Items = nil
		cart.TotalAmount = decimal.Zero
	}
	return nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders []*models.Order
	keys   map[string]bool
	carts  *fakeCartRepo
	nextID uint
}

func newFakeOrderRepo(carts *fakeCartRepo) *fakeOrderRepo {
	return &fakeOrderRepo{keys: map[string]bool{}, carts: carts}
}

func (r *fakeOrderRepo) CreateFromCart(order *models.Order, key *models.IdempotencyKey, cartID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.keys[key.Key] {
		return false, nil
	}
	r.keys[key.Key] = true
	r.nextID++
	order.ID = r.nextID
	order.UUID = key.Key + "-order"
	order.CreatedAt = time.Now().UTC()
	r.orders = append(r.orders, order)

	r.carts.mu.Lock()
	for _, cart := range r.carts.carts {
		if cart.ID == cartID {
			cart.Items = nil
			cart.TotalAmount = decimal.Zero
		}
	}
	r.carts.mu.Unlock()
	return true, nil
}

func (r *fakeOrderRepo) IdempotencyKeyExists(key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys[key], nil
}

func (r *fakeOrderRepo) GetByUUID(uuid string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.UUID == uuid {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) GetByID(id uint) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) ListByOwner(ownerID string) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if o.OwnerID == ownerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatus(orderID uint, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == orderID && o.Status == from {
			o.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrderRepo) CountBetween(start, end time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, o := range r.orders {
		if !o.CreatedAt.Before(start) && o.CreatedAt.Before(end) {
			n++
		}
	}
	return n, nil
}

func (r *fakeOrderRepo) RevenueBetween(start, end time.Time) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, o := range r.orders {
		if !o.CreatedAt.Before(start) && o.CreatedAt.Before(end) {
			total = total.Add(o.TotalAmount)
		}
	}
	return total, nil
}

func (r *fakeOrderRepo) ListBetween(start, end time.Time) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if !o.CreatedAt.Before(start) && o.CreatedAt.Before(end) {
			out = append(out, *o)
		}
	}
	return out, nil
}

type captureEmitter struct {
	mu            sync.Mutex
	orderCreated  []events.OrderCreatedEvent
	orderCreatedC chan struct{}
}

func newCaptureEmitter() *captureEmitter {
	return &captureEmitter{orderCreatedC: make(chan struct{}, 16)}
}

func (e *captureEmitter) EmitOrderCreated(event events.OrderCreatedEvent) error {
	e.mu.Lock()
	e.orderCreated = append(e.orderCreated, event)
	e.mu.Unlock()
	e.orderCreatedC <- struct{}{}
	return nil
}

func (e *captureEmitter) EmitPaymentSucceeded(event events.PaymentSucceededEvent) error {
	return nil
}

func (e *captureEmitter) waitForOrderCreated(t *testing.T) events.OrderCreatedEvent {
	t.Helper()
	select {
	case <-e.orderCreatedC:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for OrderCreated event")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.orderCreated[len(e.orderCreated)-1]
}

func newTestService() (*Service, *fakeCartRepo, *fakeOrderRepo, *captureEmitter) {
	carts := newFakeCartRepo()
	orders := newFakeOrderRepo(carts)
	emitter := newCaptureEmitter()
	return NewService(carts, orders, emitter), carts, orders, emitter
}

func TestAddItemMergesDuplicateProduct(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.AddItem("owner-1", AddItemInput{
		ProductID: "p1", Name: "Widget", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2,
	})
	require.NoError(t, err)

	cart, err := svc.AddItem("owner-1", AddItemInput{
		ProductID: "p1", Name: "Widget", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 1,
	})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.True(t, cart.TotalAmount.Equal(decimal.RequireFromString("30.00")))
}

func TestAddItemValidation(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.AddItem("owner-1", AddItemInput{ProductID: "p1", Name: "Widget", Quantity: 0})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddItem("owner-1", AddItemInput{ProductID: "p1", Name: "Widget", Quantity: -2})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddItem("owner-1", AddItemInput{
		ProductID: "p1", Name: "Widget", UnitPrice: decimal.RequireFromString("-1.00"), Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddItem("", AddItemInput{ProductID: "p1", Name: "Widget", Quantity: 1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCheckoutCreatesOrderAndClearsCart(t *testing.T) {
	svc, carts, _, emitter := newTestService()

	_, err := svc.AddItem("owner-1", AddItemInput{
		ProductID: "p1", Name: "Widget", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2,
	})
	require.NoError(t, err)
	_, err = svc.AddItem("owner-1", AddItemInput{
		ProductID: "p2", Name: "Gadget", UnitPrice: decimal.RequireFromString("5.50"), Quantity: 1,
	})
	require.NoError(t, err)

	order, err := svc.Checkout("owner-1", "key-1", CheckoutInput{ShippingAddress: "Some Street 1"}, []byte(`{}`))
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("25.50")))
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Some Street 1", order.ShippingAddress)

	cart, err := carts.Get("owner-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.TotalAmount.Equal(decimal.Zero))

	event := emitter.waitForOrderCreated(t)
	assert.Equal(t, order.UUID, event.OrderID)
	assert.Len(t, event.Items, 2)
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Checkout("owner-1", "key-1", CheckoutInput{}, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)

	// A cart that exists but was already cleared is just as empty.
	_, err = svc.AddItem("owner-2", AddItemInput{
		ProductID: "p1", Name: "Widget", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 1,
	})
	require.NoError(t, err)
	_, err = svc.Checkout("owner-2", "key-2", CheckoutInput{}, nil)
	require.NoError(t, err)
	_, err = svc.Checkout("owner-2", "key-3", CheckoutInput{}, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutRequiresIdempotencyKey(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Checkout("owner-1", "", CheckoutInput{}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Checkout("owner-1", "   ", CheckoutInput{}, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCheckoutReplayUsedKeyAfterSuccess(t *testing.T) {
	svc, _, orders, _ := newTestService()

	_, err := svc.AddItem("owner-1", AddItemInput{
		ProductID: "p1", Name: "Widget", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 3,
	})
	require.NoError(t, err)

	_, err = svc.Checkout("owner-1", "key-1", CheckoutInput{}, nil)
	require.NoError(t, err)

	// The successful checkout cleared the cart. Replaying the key must still
	// report the duplicate, not the now-empty cart.
	_, err = svc.Checkout("owner-1", "key-1", CheckoutInput{}, nil)
	assert.ErrorIs(t, err, ErrDuplicateRequest)
	assert.NotErrorIs(t, err, ErrEmptyCart)
	assert.Len(t, orders.orders, 1)
}

func TestCheckoutDuplicateKey(t *testing.T) {
	svc, _, orders, _ := newTestService()

	_, err := svc.AddItem("owner-1", AddItemInput{
		ProductID: "p1", Name: "Widget", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 1,
	})
	require.NoError(t, err)

	_, err = svc.Checkout("owner-1", "key-1", CheckoutInput{}, nil)
	require.NoError(t, err)

	// Refill the cart, replay the key.
	_, err = svc.AddItem("owner-1", AddItemInput{
		ProductID: "p2", Name: "Gadget", UnitPrice: decimal.RequireFromString("3.00"), Quantity: 1,
	})
	require.NoError(t, err)

	_, err = svc.Checkout("owner-1", "key-1", CheckoutInput{}, nil)
	assert.ErrorIs(t, err, ErrDuplicateRequest)
	assert.Len(t, orders.orders, 1)
}

func TestCheckoutConcurrentSameKey(t *testing.T) {
	svc, _, orders, _ := newTestService()

	_, err := svc.AddItem("owner-1", AddItemInput{
		ProductID: "p1", Name: "Widget", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 1,
	})
	require.NoError(t, err)

	const n = 16
	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Checkout("owner-1", "key-1", CheckoutInput{}, nil)
		}(i)
	}
	wg.Wait()

	var succeeded, duplicates int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrDuplicateRequest):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Exactly one goroutine wins the key; every other one reports the
	// duplicate, even when it observed the already cleared cart.
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, n-1, duplicates)
	assert.Len(t, orders.orders, 1)
}

func TestDailyProfitCostModel(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.AddItem("owner-1", AddItemInput{
		ProductID: "p1", Name: "Widget", UnitPrice: decimal.RequireFromString("500.00"), Quantity: 2,
	})
	require.NoError(t, err)
	_, err = svc.Checkout("owner-1", "key-1", CheckoutInput{}, nil)
	require.NoError(t, err)

	report, err := svc.DailyProfit()
	require.NoError(t, err)

	// revenue 1000: shipping 50, processing 20, platform 30, operational 100
	assert.True(t, report.Revenue.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, report.Costs["shipping"].Equal(decimal.RequireFromString("50.00")))
	assert.True(t, report.Costs["processing"].Equal(decimal.RequireFromString("20.00")))
	assert.True(t, report.Costs["platform"].Equal(decimal.RequireFromString("30.00")))
	assert.True(t, report.TotalCosts.Equal(decimal.RequireFromString("200.00")))
	assert.True(t, report.GrossProfit.Equal(decimal.RequireFromString("800.00")))
	assert.True(t, report.NetProfit.Equal(decimal.RequireFromString("700.00")))
	assert.True(t, report.ProfitMargin.Equal(decimal.RequireFromString("0.7")))
}

func TestDailyOrdersEmptyDay(t *testing.T) {
	svc, _, _, _ := newTestService()

	report, err := svc.DailyOrders()
	require.NoError(t, err)
	assert.EqualValues(t, 0, report.TotalOrders)
	assert.True(t, report.TotalRevenue.Equal(decimal.Zero))
	assert.Empty(t, report.Orders)
}
