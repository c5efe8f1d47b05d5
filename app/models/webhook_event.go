package models

import "time"

// Payment provider constants used across payment-related models.
const (
	PaymentProviderIyzico = "iyzico"
)

// WebhookEvent stores processor webhook deliveries with deduplication metadata.
// The unique index on (provider, event_type, processor_payment_id) turns the
// processor's at-least-once delivery into at-most-once effectful processing:
// the insert either lands and entitles the caller to apply side effects, or
// conflicts and the delivery is a recorded no-op.
type WebhookEvent struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Provider           string     `gorm:"type:varchar(20);not null;index:ux_webhook_events_dedup,unique,priority:1" json:"provider"`
	EventType          string     `gorm:"type:varchar(50);not null;index:ux_webhook_events_dedup,unique,priority:2" json:"event_type"`
	ProcessorPaymentID string     `gorm:"type:varchar(100);not null;index:ux_webhook_events_dedup,unique,priority:3" json:"processor_payment_id"`
	ConversationID     string     `gorm:"type:varchar(100)" json:"conversation_id"`
	PayloadJSON        string     `gorm:"type:longtext;not null" json:"payload_json"`
	Signature          string     `gorm:"type:varchar(255);not null" json:"signature"`
	Verified           bool       `gorm:"default:false;index" json:"verified"`
	ProcessedAt        *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError    string     `gorm:"type:text" json:"processing_error"`
	RetryCount         int        `gorm:"not null;default:0" json:"retry_count"`
	CreatedAt          time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
