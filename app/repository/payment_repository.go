package repository

import (
	"gorm.io/gorm"

	"github.com/tradekart/tradekart/app/models"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create persists a payment row. The unique index on order_id enforces the
// one-payment-per-order invariant at the schema level.
func (r *paymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// GetByOrderUUID retrieves the payment for an order
func (r *paymentRepository) GetByOrderUUID(orderUUID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("order_uuid = ?", orderUUID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByProcessorPaymentID retrieves a payment by the processor's correlation id
func (r *paymentRepository) GetByProcessorPaymentID(processorPaymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("processor_payment_id = ?", processorPaymentID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// SetProcessorIDs stores the processor correlation ids returned by the init call
func (r *paymentRepository) SetProcessorIDs(paymentID uint, processorPaymentID, conversationID string) error {
	return r.db.Model(&models.Payment{}).Where("id = ?", paymentID).
		Updates(map[string]interface{}{
			"processor_payment_id": processorPaymentID,
			"conversation_id":      conversationID,
		}).Error
}

// CompleteAuthorization writes the terminal transition guarded on the row
// still being PENDING_3DS. A concurrent redirect callback and webhook racing
// on the same payment resolve here: exactly one caller sees RowsAffected > 0.
func (r *paymentRepository) CompleteAuthorization(paymentID uint, update PaymentAuthorizationUpdate) (bool, error) {
	res := r.db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", paymentID, models.PaymentStatusPending3DS).
		Updates(map[string]interface{}{
			"status":           update.Status,
			"paid_price":       update.PaidPrice,
			"auth_code":        update.AuthCode,
			"fraud_status":     update.FraudStatus,
			"error_code":       update.ErrorCode,
			"error_message":    update.ErrorMessage,
			"card_family":      update.CardFamily,
			"card_association": update.CardAssociation,
			"card_type":        update.CardType,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
