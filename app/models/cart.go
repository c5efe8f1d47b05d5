package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultCurrency is applied to carts created without an explicit currency.
const DefaultCurrency = "TRY"

// Cart is the per-owner mutable line item list with a running total.
// A cart is created lazily on first access and cleared (not deleted) when a
// checkout succeeds.
type Cart struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UUID        string          `gorm:"type:char(36);uniqueIndex;not null" json:"uuid"`
	OwnerID     string          `gorm:"type:char(36);uniqueIndex;not null" json:"owner_id"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'TRY'" json:"currency"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	Items       []CartItem      `gorm:"foreignKey:CartID" json:"items"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// CartItem is a single product line inside a cart. A product appears at most
// once per cart; adding it again increments the quantity.
type CartItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	CartID     uint            `gorm:"not null;index:ux_cart_items_cart_product,unique,priority:1" json:"-"`
	ProductID  string          `gorm:"type:char(36);not null;index:ux_cart_items_cart_product,unique,priority:2" json:"product_id"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = uuid.New().String()
	}
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	return nil
}

// RecalculateTotal recomputes the running total from the item lines. Must be
// called after every mutation so that TotalAmount == sum of item totals.
func (c *Cart) RecalculateTotal() {
	total := decimal.Zero
	for i := range c.Items {
		c.Items[i].TotalPrice = c.Items[i].UnitPrice.Mul(decimal.NewFromInt(int64(c.Items[i].Quantity)))
		total = total.Add(c.Items[i].TotalPrice)
	}
	c.TotalAmount = total
}

// ItemCount returns the total unit count across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// FindItem returns the line for a product or nil.
func (c *Cart) FindItem(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}
