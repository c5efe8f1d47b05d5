package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Topic names, overridable through the environment.
const (
	DefaultOrderCreatedTopic     = "order_created"
	DefaultPaymentSucceededTopic = "payment_succeeded"
)

// OrderCreatedEvent is published after a checkout commits. Consumers (stock
// decrement, notification dispatch) receive it at least once and must be
// idempotent on OrderID.
type OrderCreatedEvent struct {
	OrderID     string             `json:"orderId"`
	OwnerID     string             `json:"ownerId"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	Currency    string             `json:"currency"`
	Items       []OrderCreatedItem `json:"items"`
	Timestamp   time.Time          `json:"timestamp"`
}

// OrderCreatedItem mirrors the order line snapshot inside the event payload.
type OrderCreatedItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
}

// PaymentSucceededEvent is published when a payment reaches SUCCEEDED. It is
// emitted at most once per payment, guarded by the authorization
// compare-and-swap.
type PaymentSucceededEvent struct {
	OrderID         string          `json:"orderId"`
	ConversationID  string          `json:"conversationId"`
	PaymentID       string          `json:"paymentId"`
	PaidPrice       decimal.Decimal `json:"paidPrice"`
	Currency        string          `json:"currency"`
	Installment     int             `json:"installment"`
	CardFamily      string          `json:"cardFamily"`
	CardAssociation string          `json:"cardAssociation"`
	CardType        string          `json:"cardType"`
	AuthCode        string          `json:"authCode"`
	Timestamp       time.Time       `json:"timestamp"`
	Status          string          `json:"status"`
}
