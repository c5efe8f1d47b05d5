package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tradekart/tradekart/app/models"
)

// orderRepository implements the OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateFromCart commits a checkout: the idempotency key insert, the order
// snapshot and the cart clear happen in one transaction. The key insert uses
// an OnConflict-DoNothing clause so the duplicate check is a single atomic
// compare-and-insert; N identical concurrent checkouts produce exactly one
// order and N-1 rejections.
func (r *orderRepository) CreateFromCart(order *models.Order, key *models.IdempotencyKey, cartID uint) (bool, error) {
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).Create(key)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Key already recorded; roll back without touching the cart.
			return nil
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Cart{}).Where("id = ?", cartID).
			Update("total_amount", decimal.Zero).Error; err != nil {
			return err
		}

		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// IdempotencyKeyExists checks whether a key row was already recorded
func (r *orderRepository) IdempotencyKeyExists(key string) (bool, error) {
	var count int64
	err := r.db.Model(&models.IdempotencyKey{}).Where("`key` = ?", key).Count(&count).Error
	return count > 0, err
}

// GetByUUID retrieves an order by its public identifier
func (r *orderRepository) GetByUUID(uuid string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Where("uuid = ?", uuid).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByID retrieves an order by its internal ID
func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByOwner returns the owner's orders, newest first
func (r *orderRepository) ListByOwner(ownerID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// UpdateStatus applies a guarded status transition.
func (r *orderRepository) UpdateStatus(orderID uint, from, to string) (bool, error) {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountBetween counts orders created in [start, end)
func (r *orderRepository) CountBetween(start, end time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}

// RevenueBetween sums order totals created in [start, end)
func (r *orderRepository) RevenueBetween(start, end time.Time) (decimal.Decimal, error) {
	var revenue decimal.NullDecimal
	err := r.db.Model(&models.Order{}).
		Select("SUM(total_amount)").
		Where("created_at >= ? AND created_at < ?", start, end).
		Scan(&revenue).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !revenue.Valid {
		return decimal.Zero, nil
	}
	return revenue.Decimal, nil
}

// ListBetween returns orders created in [start, end)
func (r *orderRepository) ListBetween(start, end time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").Find(&orders).Error
	return orders, err
}
