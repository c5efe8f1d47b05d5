package checkout

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradekart/tradekart/app/models"
	"github.com/tradekart/tradekart/app/repository"
	"github.com/tradekart/tradekart/internal/pkg/events"
	"github.com/tradekart/tradekart/internal/pkg/metrics"
)

// Service coordinates cart mutations and the cart-to-order commit.
type Service struct {
	carts   repository.CartRepository
	orders  repository.OrderRepository
	emitter events.Emitter
}

// NewService creates a checkout service from injected dependencies.
func NewService(carts repository.CartRepository, orders repository.OrderRepository, emitter events.Emitter) *Service {
	return &Service{carts: carts, orders: orders, emitter: emitter}
}

// NewServiceFromDB creates a checkout service from a GORM DB handle and the
// global emitter.
func NewServiceFromDB(db *gorm.DB) *Service {
	repos := repository.NewRepositories(db)
	return NewService(repos.Cart, repos.Order, events.GetEmitter())
}

// AddItemInput carries a validated add-to-cart request.
type AddItemInput struct {
	ProductID string `validate:"required,max=36"`
	Name      string `validate:"required,max=255"`
	Quantity  int    `validate:"required,gt=0"`
	UnitPrice decimal.Decimal
}

// CheckoutInput carries the checkout request addresses.
type CheckoutInput struct {
	ShippingAddress string `validate:"max=500"`
	BillingAddress  string `validate:"max=500"`
}

// AddItem merges the product into the owner's cart. Quantity must be
// positive; a product already in the cart gets its quantity incremented.
func (s *Service) AddItem(ownerID string, in AddItemInput) (*models.Cart, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrValidation)
	}
	if err := validator.New().Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if in.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	return s.carts.AddItem(ownerID, in.ProductID, in.Name, in.UnitPrice, in.Quantity)
}

// GetCart returns the owner's cart, creating an empty one lazily.
func (s *Service) GetCart(ownerID string) (*models.Cart, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrValidation)
	}
	return s.carts.GetOrCreate(ownerID)
}

// Checkout commits the owner's cart into an order. The idempotency key insert
// and the order creation are one atomic unit: a reused key is rejected with
// ErrDuplicateRequest before any side effect runs, and a crash between the
// two can never leave an order without its key or a key without its order.
func (s *Service) Checkout(ownerID, idempotencyKey string, in CheckoutInput, requestBody []byte) (*models.Order, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrValidation)
	}
	if strings.TrimSpace(idempotencyKey) == "" {
		return nil, fmt.Errorf("%w: Idempotency-Key header is required", ErrValidation)
	}
	if err := validator.New().Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// The key is consulted before the cart: a replayed key after a
	// successful checkout finds a cleared cart, and it must still answer
	// duplicate, not empty cart.
	used, err := s.orders.IdempotencyKeyExists(idempotencyKey)
	if err != nil {
		return nil, err
	}
	if used {
		metrics.CheckoutDuplicates.Inc()
		return nil, ErrDuplicateRequest
	}

	cart, err := s.carts.Get(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		// A concurrent checkout may have consumed the key and cleared the
		// cart between the two reads. The cleared cart is only visible once
		// that transaction committed, so the key row is visible too.
		used, err := s.orders.IdempotencyKeyExists(idempotencyKey)
		if err != nil {
			return nil, err
		}
		if used {
			metrics.CheckoutDuplicates.Inc()
			return nil, ErrDuplicateRequest
		}
		return nil, ErrEmptyCart
	}

	order := &models.Order{
		OwnerID:         ownerID,
		TotalAmount:     cart.TotalAmount,
		Currency:        cart.Currency,
		Status:          models.OrderStatusPending,
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  in.BillingAddress,
		Items:           snapshotItems(cart.Items),
	}
	key := &models.IdempotencyKey{
		Key:         idempotencyKey,
		RequestHash: hashRequestBody(requestBody),
	}

	created, err := s.orders.CreateFromCart(order, key, cart.ID)
	if err != nil {
		return nil, err
	}
	if !created {
		metrics.CheckoutDuplicates.Inc()
		return nil, ErrDuplicateRequest
	}
	metrics.OrdersCreated.Inc()

	// Fire-and-forget: the client response never waits on the broker, and a
	// publish failure must not fail the checkout.
	go s.publishOrderCreated(order)

	return order, nil
}

// GetOrder loads an order by public id.
func (s *Service) GetOrder(uuid string) (*models.Order, error) {
	return s.orders.GetByUUID(uuid)
}

// ListOrders returns the owner's orders, newest first.
func (s *Service) ListOrders(ownerID string) ([]models.Order, error) {
	return s.orders.ListByOwner(ownerID)
}

// DailyOrdersReport summarizes the current UTC day.
type DailyOrdersReport struct {
	Date         string          `json:"date"`
	TotalOrders  int64           `json:"totalOrders"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	Orders       []DailyOrderRow `json:"orders"`
}

// DailyOrderRow is a single order line in the daily report.
type DailyOrderRow struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
}

// DailyOrders aggregates order count, revenue and rows for today (UTC).
func (s *Service) DailyOrders() (*DailyOrdersReport, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	total, err := s.orders.CountBetween(start, end)
	if err != nil {
		return nil, err
	}
	revenue, err := s.orders.RevenueBetween(start, end)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListBetween(start, end)
	if err != nil {
		return nil, err
	}

	rows := make([]DailyOrderRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, DailyOrderRow{ID: o.UUID, Amount: o.TotalAmount})
	}
	return &DailyOrdersReport{
		Date:         start.Format("2006-01-02"),
		TotalOrders:  total,
		TotalRevenue: revenue,
		Orders:       rows,
	}, nil
}

// DailyProfitReport derives profit figures from today's revenue using the
// platform cost model: 5% shipping, 2% payment processing, 3% platform fee
// and a fixed daily operational cost.
type DailyProfitReport struct {
	Date         string                     `json:"date"`
	Revenue      decimal.Decimal            `json:"revenue"`
	TotalCosts   decimal.Decimal            `json:"totalCosts"`
	GrossProfit  decimal.Decimal            `json:"grossProfit"`
	NetProfit    decimal.Decimal            `json:"netProfit"`
	Costs        map[string]decimal.Decimal `json:"costs"`
	ProfitMargin decimal.Decimal            `json:"profitMargin"`
}

var dailyOperationalCosts = decimal.NewFromInt(100)

// DailyProfit computes the derived profit report for today (UTC).
func (s *Service) DailyProfit() (*DailyProfitReport, error) {
	daily, err := s.DailyOrders()
	if err != nil {
		return nil, err
	}
	revenue := daily.TotalRevenue

	shipping := revenue.Mul(decimal.NewFromFloat(0.05))
	processing := revenue.Mul(decimal.NewFromFloat(0.02))
	platform := revenue.Mul(decimal.NewFromFloat(0.03))

	totalCosts := shipping.Add(processing).Add(platform).Add(dailyOperationalCosts)
	grossProfit := revenue.Sub(totalCosts)
	netProfit := grossProfit.Sub(dailyOperationalCosts)

	margin := decimal.Zero
	if revenue.IsPositive() {
		margin = netProfit.DivRound(revenue, 4)
	}

	return &DailyProfitReport{
		Date:        daily.Date,
		Revenue:     revenue,
		TotalCosts:  totalCosts,
		GrossProfit: grossProfit,
		NetProfit:   netProfit,
		Costs: map[string]decimal.Decimal{
			"shipping":    shipping,
			"processing":  processing,
			"platform":    platform,
			"operational": dailyOperationalCosts,
		},
		ProfitMargin: margin,
	}, nil
}

func (s *Service) publishOrderCreated(order *models.Order) {
	items := make([]events.OrderCreatedItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, events.OrderCreatedItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	err := s.emitter.EmitOrderCreated(events.OrderCreatedEvent{
		OrderID:     order.UUID,
		OwnerID:     order.OwnerID,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		Items:       items,
		Timestamp:   time.Now().UTC(),
	})
	if err != nil {
		// Operational consistency risk: the order exists but downstream
		// consumers were not told. Logged for replay.
		log.Printf("Failed to publish OrderCreated for order %s: %v", order.UUID, err)
	}
}

func snapshotItems(items []models.CartItem) []models.OrderItem {
	snapshot := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		snapshot = append(snapshot, models.OrderItem{
			ProductID:  item.ProductID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}
	return snapshot
}

func hashRequestBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
