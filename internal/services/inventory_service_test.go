// internal/services/inventory_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmall/shop-backend/internal/models"
)

func TestDecrementFloor(t *testing.T) {
	db := newTestDB(t)
	inventory := NewInventoryService(db)
	category := createTestCategory(t, db, "tools")
	product := createTestProduct(t, db, category.ID, "Hammer", "9.99", 1)

	require.NoError(t, inventory.Decrement(nil, product.ID, product.Name, 1))

	// Second decrement hits the floor and names the product.
	err := inventory.Decrement(nil, product.ID, product.Name, 1)
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Hammer", stockErr.ProductName)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 0, reloaded.Stock)
}

func TestDecrementInactiveProduct(t *testing.T) {
	db := newTestDB(t)
	inventory := NewInventoryService(db)
	category := createTestCategory(t, db, "tools")
	product := createTestProduct(t, db, category.ID, "Saw", "19.99", 10)
	require.NoError(t, db.Model(&product).Update("active", false).Error)

	err := inventory.Decrement(nil, product.ID, product.Name, 1)
	assert.True(t, IsInsufficientStock(err))
}

func TestCheckAvailable(t *testing.T) {
	db := newTestDB(t)
	inventory := NewInventoryService(db)
	category := createTestCategory(t, db, "tools")
	product := createTestProduct(t, db, category.ID, "Drill", "49.00", 3)

	ok, err := inventory.CheckAvailable(nil, product.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = inventory.CheckAvailable(nil, product.ID, 4)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRestoreAndSetStock(t *testing.T) {
	db := newTestDB(t)
	inventory := NewInventoryService(db)
	category := createTestCategory(t, db, "tools")
	product := createTestProduct(t, db, category.ID, "Wrench", "5.00", 2)

	require.NoError(t, inventory.Restore(nil, product.ID, 3))
	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 5, reloaded.Stock)

	require.NoError(t, inventory.SetStock(product.ID, 42))
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 42, reloaded.Stock)

	assert.Error(t, inventory.SetStock(product.ID, -1))
}
