// internal/services/service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openmall/shop-backend/internal/events"
	"github.com/openmall/shop-backend/internal/models"
)

// newTestDB opens a fresh in-memory database per test. The pool is pinned
// to a single connection so every session sees the same memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
		&models.Address{},
		&models.Order{},
		&models.OrderItem{},
	))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     models.UserRoleCustomer,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("Secret123!"))
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()

	category := models.Category{Name: name, Slug: name, Active: true}
	require.NoError(t, db.Create(&category).Error)
	return category
}

func createTestProduct(t *testing.T, db *gorm.DB, categoryID uuid.UUID, name, price string, stock int) models.Product {
	t.Helper()

	product := models.Product{
		CategoryID: categoryID,
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		Active:     true,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func createTestAddress(t *testing.T, db *gorm.DB, userID uuid.UUID) models.Address {
	t.Helper()

	address := models.Address{
		UserID:    userID,
		Recipient: "Jane Doe",
		Phone:     "555-0100",
		City:      "Springfield",
		Detail:    "12 Main St",
	}
	require.NoError(t, db.Create(&address).Error)
	return address
}

func addToCart(t *testing.T, db *gorm.DB, userID, productID uuid.UUID, qty int) {
	t.Helper()

	require.NoError(t, db.Create(&models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
	}).Error)
}

// recordingPublisher captures events for assertions.
type recordingPublisher struct {
	events []events.OrderEvent
}

func (p *recordingPublisher) PublishOrderEvent(event events.OrderEvent) error {
	p.events = append(p.events, event)
	return nil
}
