package repository

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tradekart/tradekart/app/models"
)

// cartRepository implements the CartRepository interface
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new cart repository instance
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// GetOrCreate returns the owner's cart, creating an empty one lazily.
func (r *cartRepository) GetOrCreate(ownerID string) (*models.Cart, error) {
	cart, err := r.Get(ownerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := &models.Cart{OwnerID: ownerID}
	if err := r.db.Create(fresh).Error; err != nil {
		// Lost a creation race on the owner unique index; the winner's cart
		// is the one we want.
		if existing, lookupErr := r.Get(ownerID); lookupErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return fresh, nil
}

// Get loads the owner's cart with its items.
func (r *cartRepository) Get(ownerID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items").Where("owner_id = ?", ownerID).First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem merges the product into the owner's cart and recomputes the total.
// The cart row is locked for the duration of the transaction so that two
// concurrent adds for the same owner serialize instead of losing an update.
func (r *cartRepository) AddItem(ownerID, productID, name string, unitPrice decimal.Decimal, quantity int) (*models.Cart, error) {
	if _, err := r.GetOrCreate(ownerID); err != nil {
		return nil, err
	}

	var result *models.Cart
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner_id = ?", ownerID).First(&cart).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Find(&cart.Items).Error; err != nil {
			return err
		}

		if existing := cart.FindItem(productID); existing != nil {
			existing.Quantity += quantity
		} else {
			cart.Items = append(cart.Items, models.CartItem{
				CartID:    cart.ID,
				ProductID: productID,
				Name:      name,
				UnitPrice: unitPrice,
				Quantity:  quantity,
			})
		}
		cart.RecalculateTotal()

		for i := range cart.Items {
			if err := tx.Save(&cart.Items[i]).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Cart{}).Where("id = ?", cart.ID).
			Update("total_amount", cart.TotalAmount).Error; err != nil {
			return err
		}

		result = &cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Clear empties the cart and zeroes the total. The cart row itself survives.
func (r *cartRepository) Clear(ownerID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner_id = ?", ownerID).First(&cart).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Cart{}).Where("id = ?", cart.ID).
			Update("total_amount", decimal.Zero).Error
	})
}
