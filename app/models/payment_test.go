package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminalPaymentStatus(t *testing.T) {
	assert.False(t, IsTerminalPaymentStatus(PaymentStatusPending3DS))
	assert.False(t, IsTerminalPaymentStatus(PaymentStatusAuthorized))
	assert.True(t, IsTerminalPaymentStatus(PaymentStatusSucceeded))
	assert.True(t, IsTerminalPaymentStatus(PaymentStatusFailed))
	assert.True(t, IsTerminalPaymentStatus(PaymentStatusCancelled))
	assert.False(t, IsTerminalPaymentStatus(""))
}

func TestPaymentIsTerminal(t *testing.T) {
	p := &Payment{Status: PaymentStatusPending3DS}
	assert.False(t, p.IsTerminal())

	p.Status = PaymentStatusSucceeded
	assert.True(t, p.IsTerminal())

	p.Status = PaymentStatusFailed
	assert.True(t, p.IsTerminal())
}
