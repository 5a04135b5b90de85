// internal/services/cart_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openmall/shop-backend/internal/models"
)

type CartService struct {
	db *gorm.DB
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// AddItem creates the (user, product) line or bumps its quantity. The cart
// stores no price; prices are read live from the product at checkout.
func (s *CartService) AddItem(userID uuid.UUID, req *AddCartItemRequest) (*models.CartItem, error) {
	if err := validateQuantity(req.Quantity); err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.db.First(&product, "id = ? AND active = ?", req.ProductID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var item models.CartItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{
				UserID:    userID,
				ProductID: req.ProductID,
				Quantity:  req.Quantity,
			}
			return tx.Create(&item).Error
		case err != nil:
			return fmt.Errorf("database error: %w", err)
		default:
			newQty := item.Quantity + req.Quantity
			if err := validateQuantity(newQty); err != nil {
				return err
			}
			item.Quantity = newQty
			return tx.Model(&item).Update("quantity", newQty).Error
		}
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Product").First(&item, item.ID)
	return &item, nil
}

func (s *CartService) UpdateQuantity(userID, itemID uuid.UUID, req *UpdateCartItemRequest) (*models.CartItem, error) {
	if err := validateQuantity(req.Quantity); err != nil {
		return nil, err
	}

	var item models.CartItem
	if err := s.db.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Model(&item).Update("quantity", req.Quantity).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	s.db.Preload("Product").First(&item, item.ID)
	return &item, nil
}

// RemoveItem hard-deletes the line. Cart rows must not be soft-deleted:
// a tombstone would collide with the (user, product) unique index when
// the shopper re-adds the same product.
func (s *CartService) RemoveItem(userID, itemID uuid.UUID) error {
	result := s.db.Unscoped().Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// List returns the cart joined with live product data for display.
func (s *CartService) List(userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := s.db.Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return items, nil
}

// Snapshot is the checkout read: all cart lines joined with their current
// product rows, taken once inside the coordinator's transaction so that
// prices, stock and the active flag are evaluated consistently.
func (s *CartService) Snapshot(tx *gorm.DB, userID uuid.UUID) ([]models.CartItem, error) {
	if tx == nil {
		tx = s.db
	}

	var items []models.CartItem
	err := tx.Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return items, nil
}

// Clear deletes every cart row for the user. Checkout always clears the
// whole cart; partial-cart checkout is not supported.
func (s *CartService) Clear(tx *gorm.DB, userID uuid.UUID) error {
	if tx == nil {
		tx = s.db
	}

	if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func validateQuantity(qty int) error {
	if qty < 1 {
		return ErrQuantityInvalid
	}
	if qty > models.MaxQuantityPerLine {
		return ErrQuantityTooLarge
	}
	return nil
}
