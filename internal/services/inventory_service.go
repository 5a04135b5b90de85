// internal/services/inventory_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openmall/shop-backend/internal/models"
)

// InventoryService is the authoritative stock ledger. Every mutation is a
// single SQL arithmetic expression so that concurrent checkouts can never
// drive stock below zero, regardless of what the caller validated earlier.
type InventoryService struct {
	db *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

// CheckAvailable reports whether the product is active with at least qty in
// stock. Read-only; the transactional guard is Decrement.
func (s *InventoryService) CheckAvailable(tx *gorm.DB, productID uuid.UUID, qty int) (bool, error) {
	if tx == nil {
		tx = s.db
	}

	var product models.Product
	if err := tx.Select("active", "stock").First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrProductNotFound
		}
		return false, fmt.Errorf("database error: %w", err)
	}

	return product.Available(qty), nil
}

// Decrement reduces stock by qty in one atomic statement. The WHERE guard
// keeps stock >= 0 even if a concurrent checkout raced past validation;
// zero rows affected means the product vanished or the stock floor held.
func (s *InventoryService) Decrement(tx *gorm.DB, productID uuid.UUID, productName string, qty int) error {
	if tx == nil {
		tx = s.db
	}

	result := tx.Model(&models.Product{}).
		Where("id = ? AND active = ? AND stock >= ?", productID, true, qty).
		UpdateColumns(map[string]interface{}{
			"stock":       gorm.Expr("stock - ?", qty),
			"sales_count": gorm.Expr("sales_count + ?", qty),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to decrement stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return &InsufficientStockError{ProductName: productName}
	}

	return nil
}

// Restore adds qty back, used when a pending order is cancelled.
func (s *InventoryService) Restore(tx *gorm.DB, productID uuid.UUID, qty int) error {
	if tx == nil {
		tx = s.db
	}

	err := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumns(map[string]interface{}{
			"stock":       gorm.Expr("stock + ?", qty),
			"sales_count": gorm.Expr("sales_count - ?", qty),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	return nil
}

// SetStock is the admin absolute-set path. It runs outside the checkout hot
// path; no ordering guarantee relative to concurrent checkouts beyond the
// storage isolation level.
func (s *InventoryService) SetStock(productID uuid.UUID, stock int) error {
	if stock < 0 {
		return fmt.Errorf("stock must be non-negative")
	}

	result := s.db.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", stock)
	if result.Error != nil {
		return fmt.Errorf("failed to set stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}
