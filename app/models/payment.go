package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment status values. SUCCEEDED, FAILED and CANCELLED are terminal; a
// payment never leaves a terminal state. AUTHORIZED exists for processors with
// a separate authorize/capture step and is not used by the 3DS flow.
const (
	PaymentStatusPending3DS = "PENDING_3DS"
	PaymentStatusAuthorized = "AUTHORIZED"
	PaymentStatusSucceeded  = "SUCCEEDED"
	PaymentStatusFailed     = "FAILED"
	PaymentStatusCancelled  = "CANCELLED"
)

// Payment is the one-per-order durable payment record. It is written in
// PENDING_3DS before the outbound processor call so a crash mid-call still
// leaves a traceable row.
type Payment struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	UUID               string          `gorm:"type:char(36);uniqueIndex;not null" json:"uuid"`
	OrderID            uint            `gorm:"not null;uniqueIndex" json:"order_id"`
	OrderUUID          string          `gorm:"type:char(36);not null;index" json:"order_uuid"`
	Status             string          `gorm:"type:varchar(20);not null;default:'PENDING_3DS';index" json:"status"`
	Price              decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	PaidPrice          decimal.Decimal `gorm:"type:decimal(12,2)" json:"paid_price"`
	Currency           string          `gorm:"type:varchar(3);not null" json:"currency"`
	Installment        int             `gorm:"not null;default:1" json:"installment"`
	ConversationID     string          `gorm:"type:varchar(100);index" json:"conversation_id"`
	ProcessorPaymentID string          `gorm:"type:varchar(100);index" json:"processor_payment_id"`
	AuthCode           string          `gorm:"type:varchar(50)" json:"auth_code"`
	FraudStatus        string          `gorm:"type:varchar(20)" json:"fraud_status"`
	ErrorCode          string          `gorm:"type:varchar(50)" json:"error_code"`
	ErrorMessage       string          `gorm:"type:varchar(255)" json:"error_message"`
	CardFamily         string          `gorm:"type:varchar(50)" json:"card_family"`
	CardAssociation    string          `gorm:"type:varchar(50)" json:"card_association"`
	CardType           string          `gorm:"type:varchar(50)" json:"card_type"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = PaymentStatusPending3DS
	}
	return nil
}

// IsTerminal reports whether the payment has reached a final state.
func (p *Payment) IsTerminal() bool {
	return IsTerminalPaymentStatus(p.Status)
}

// IsTerminalPaymentStatus reports whether s is a terminal payment status.
func IsTerminalPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}
