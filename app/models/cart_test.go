package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCartRecalculateTotal(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			{ProductID: "p1", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 3},
			{ProductID: "p2", UnitPrice: decimal.RequireFromString("4.50"), Quantity: 2},
		},
	}

	cart.RecalculateTotal()

	assert.True(t, cart.Items[0].TotalPrice.Equal(decimal.RequireFromString("30.00")))
	assert.True(t, cart.Items[1].TotalPrice.Equal(decimal.RequireFromString("9.00")))
	assert.True(t, cart.TotalAmount.Equal(decimal.RequireFromString("39.00")))
	assert.Equal(t, 5, cart.ItemCount())
}

func TestCartRecalculateTotalEmpty(t *testing.T) {
	cart := &Cart{}
	cart.RecalculateTotal()
	assert.True(t, cart.TotalAmount.Equal(decimal.Zero))
	assert.Equal(t, 0, cart.ItemCount())
}

func TestCartFindItem(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 2},
		},
	}

	item := cart.FindItem("p2")
	assert.NotNil(t, item)
	assert.Equal(t, 2, item.Quantity)

	// Returned pointer aliases the slice element so callers can mutate it.
	item.Quantity = 7
	assert.Equal(t, 7, cart.Items[1].Quantity)

	assert.Nil(t, cart.FindItem("missing"))
}
