package models

import "time"

// IdempotencyKey records an accepted checkout token. The primary key makes the
// check-and-insert a single atomic operation: a second checkout bearing a known
// key fails the insert and is rejected, never reprocessed or merged.
//
// RequestHash stores a SHA-256 of the request body for auditing. It is not
// compared against reused keys; see DESIGN.md.
type IdempotencyKey struct {
	Key         string    `gorm:"type:varchar(191);primaryKey" json:"key"`
	RequestHash string    `gorm:"type:char(64);not null" json:"request_hash"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName keeps the plural table name used by the schema.
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}
