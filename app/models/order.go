package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order status values. The machine only moves forward:
// PENDING -> CONFIRMED -> PAID -> SHIPPED -> DELIVERED, with CANCELLED as the
// single escape hatch from any state before DELIVERED.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusPaid      = "PAID"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

var orderStatusRank = map[string]int{
	OrderStatusPending:   0,
	OrderStatusConfirmed: 1,
	OrderStatusPaid:      2,
	OrderStatusShipped:   3,
	OrderStatusDelivered: 4,
}

// Order is a durable record of an accepted checkout. Line items and total are
// frozen at creation time and never change afterwards.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UUID            string          `gorm:"type:char(36);uniqueIndex;not null" json:"uuid"`
	OwnerID         string          `gorm:"type:char(36);not null;index" json:"owner_id"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Currency        string          `gorm:"type:varchar(3);not null" json:"currency"`
	Status          string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	ShippingAddress string          `gorm:"type:varchar(500)" json:"shipping_address"`
	BillingAddress  string          `gorm:"type:varchar(500)" json:"billing_address"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// OrderItem is an immutable snapshot of a cart line taken when the order was
// created.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"not null;index" json:"-"`
	ProductID  string          `gorm:"type:char(36);not null" json:"product_id"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.UUID == "" {
		o.UUID = uuid.New().String()
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	return nil
}

// CanTransitionTo reports whether the order may move to the given status.
// Forward transitions go one step at a time; CANCELLED is reachable from every
// state except DELIVERED (and from CANCELLED itself, which is terminal).
func (o *Order) CanTransitionTo(next string) bool {
	if o.Status == OrderStatusCancelled || o.Status == OrderStatusDelivered {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	curRank, ok := orderStatusRank[o.Status]
	if !ok {
		return false
	}
	nextRank, ok := orderStatusRank[next]
	if !ok {
		return false
	}
	return nextRank == curRank+1
}

// IsValidOrderStatus reports whether s is a known order status.
func IsValidOrderStatus(s string) bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := orderStatusRank[s]
	return ok
}
