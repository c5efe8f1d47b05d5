package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradekart/tradekart/app/models"
)

// CartRepository defines the interface for cart-related database operations.
// AddItem serializes concurrent mutations for the same owner; carts of
// different owners never contend.
type CartRepository interface {
	GetOrCreate(ownerID string) (*models.Cart, error)
	Get(ownerID string) (*models.Cart, error)
	AddItem(ownerID, productID, name string, unitPrice decimal.Decimal, quantity int) (*models.Cart, error)
	Clear(ownerID string) error
}

// OrderRepository defines the interface for order-related database operations.
type OrderRepository interface {
	// CreateFromCart persists the order snapshot, the idempotency key and the
	// cart clear as one atomic unit. It returns (created=false, nil, nil) when
	// the key already exists; no side effects run in that case.
	CreateFromCart(order *models.Order, key *models.IdempotencyKey, cartID uint) (bool, error)
	// IdempotencyKeyExists reports whether a checkout already consumed the
	// key. Advisory fast path; CreateFromCart stays the race-closing check.
	IdempotencyKeyExists(key string) (bool, error)
	GetByUUID(uuid string) (*models.Order, error)
	GetByID(id uint) (*models.Order, error)
	ListByOwner(ownerID string) ([]models.Order, error)
	// UpdateStatus applies a state machine transition as a compare-and-swap on
	// the current status. It returns false when the guard did not match.
	UpdateStatus(orderID uint, from, to string) (bool, error)
	CountBetween(start, end time.Time) (int64, error)
	RevenueBetween(start, end time.Time) (decimal.Decimal, error)
	ListBetween(start, end time.Time) ([]models.Order, error)
}

// PaymentRepository defines the interface for payment-related database
// operations.
type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByOrderUUID(orderUUID string) (*models.Payment, error)
	GetByProcessorPaymentID(processorPaymentID string) (*models.Payment, error)
	SetProcessorIDs(paymentID uint, processorPaymentID, conversationID string) error
	// CompleteAuthorization moves a payment out of PENDING_3DS into a terminal
	// state. The update is guarded on the current status so that concurrent
	// redirect and webhook deliveries apply the transition at most once; the
	// returned bool reports whether this call won.
	CompleteAuthorization(paymentID uint, update PaymentAuthorizationUpdate) (bool, error)
}

// PaymentAuthorizationUpdate carries the terminal transition written by
// CompleteAuthorization.
type PaymentAuthorizationUpdate struct {
	Status          string
	PaidPrice       decimal.Decimal
	AuthCode        string
	FraudStatus     string
	ErrorCode       string
	ErrorMessage    string
	CardFamily      string
	CardAssociation string
	CardType        string
}

// WebhookEventRepository defines the interface for webhook audit rows.
type WebhookEventRepository interface {
	// CreateIfNotExists inserts the event unless its dedup key is already
	// recorded. The returned bool reports whether this call created the row.
	CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Cart         CartRepository
	Order        OrderRepository
	Payment      PaymentRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Cart:         NewCartRepository(db),
		Order:        NewOrderRepository(db),
		Payment:      NewPaymentRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}
