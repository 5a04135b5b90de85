// internal/services/order_service.go
package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/openmall/shop-backend/internal/events"
	"github.com/openmall/shop-backend/internal/models"
)

// OrderEventPublisher decouples the service from the broker. A nil publisher
// disables events; publishing always happens after commit, never inside the
// transaction.
type OrderEventPublisher interface {
	PublishOrderEvent(event events.OrderEvent) error
}

// OrderService drives cart -> order conversion as a single all-or-nothing
// transaction, and owns the order status state machine.
type OrderService struct {
	db        *gorm.DB
	inventory *InventoryService
	carts     *CartService
	publisher OrderEventPublisher

	// beforeCommit is a test seam for fault injection inside the
	// transaction body. Nil outside tests.
	beforeCommit func(tx *gorm.DB) error
}

func NewOrderService(db *gorm.DB, inventory *InventoryService, carts *CartService, publisher OrderEventPublisher) *OrderService {
	return &OrderService{
		db:        db,
		inventory: inventory,
		carts:     carts,
		publisher: publisher,
	}
}

// CreateOrder converts the user's entire cart into a pending order.
//
// Preconditions (checked in order, before any mutation): the user exists,
// the address belongs to them, the cart is non-empty, and every line is
// active with enough stock. Then, atomically: insert the order aggregate,
// decrement stock per line, delete the cart. Any failure rolls everything
// back; the caller can retry from scratch.
func (s *OrderService) CreateOrder(userID, addressID uuid.UUID) (*models.Order, error) {
	var order *models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		var address models.Address
		if err := tx.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAddressNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		snapshot, err := s.carts.Snapshot(tx, userID)
		if err != nil {
			return err
		}
		if len(snapshot) == 0 {
			return ErrEmptyCart
		}

		built, err := assembleOrder(userID, &address, snapshot)
		if err != nil {
			return err
		}

		if err := tx.Create(built).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, line := range snapshot {
			if err := s.inventory.Decrement(tx, line.ProductID, line.Product.Name, line.Quantity); err != nil {
				return err
			}
		}

		if err := s.carts.Clear(tx, userID); err != nil {
			return err
		}

		if s.beforeCommit != nil {
			if err := s.beforeCommit(tx); err != nil {
				return err
			}
		}

		order = built
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(order, "created")
	return order, nil
}

// assembleOrder is the pure step: validated snapshot + address in, order
// aggregate out. No side effects; totals use exact decimal arithmetic.
func assembleOrder(userID uuid.UUID, address *models.Address, snapshot []models.CartItem) (*models.Order, error) {
	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(snapshot))

	for _, line := range snapshot {
		// Backstop: a non-positive quantity would invert the stock
		// decrement, so it must never reach the ledger.
		if line.Quantity < 1 {
			return nil, ErrQuantityInvalid
		}
		if line.Quantity > models.MaxQuantityPerLine {
			return nil, ErrQuantityTooLarge
		}

		product := line.Product
		if product.ID == uuid.Nil || !product.Available(line.Quantity) {
			name := product.Name
			if name == "" {
				name = line.ProductID.String()
			}
			return nil, &InsufficientStockError{ProductName: name}
		}

		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Price:       product.Price,
			Quantity:    line.Quantity,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	orderNo, err := generateOrderNo()
	if err != nil {
		return nil, fmt.Errorf("failed to generate order number: %w", err)
	}

	return &models.Order{
		OrderNo:     orderNo,
		UserID:      userID,
		TotalAmount: total,
		Status:      models.OrderStatusPending,
		Address:     address.Snapshot(),
		Items:       items,
	}, nil
}

// generateOrderNo builds "SO" + UTC timestamp + 6 random hex characters.
// With 24 random bits the scheme can collide for orders created within the
// same second; the unique index on order_no turns such a collision into a
// rolled-back storage failure rather than a silently reused number.
func generateOrderNo() (string, error) {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	return "SO" + time.Now().UTC().Format("20060102150405") + strings.ToUpper(hex.EncodeToString(suffix)), nil
}

// ListOrders returns the user's orders with items, newest first.
func (s *OrderService) ListOrders(userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	var orders []models.Order
	err := query.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	return orders, total, nil
}

func (s *OrderService) GetOrder(userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}

// PayOrder is the payment simulator: it flips pending -> paid if and only if
// the order exists, belongs to the caller and is still pending. The guarded
// UPDATE makes a double payment lose the race atomically. Inventory is not
// touched here; stock was reserved at placement.
func (s *OrderService) PayOrder(userID, orderID uuid.UUID) (*models.Order, error) {
	result := s.db.Model(&models.Order{}).
		Where("id = ? AND user_id = ? AND status = ?", orderID, userID, models.OrderStatusPending).
		Update("status", models.OrderStatusPaid)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update order: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// Distinguish "not yours / missing" from "not pending".
		var order models.Order
		err := s.db.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		return nil, ErrInvalidTransition
	}

	order, err := s.GetOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(order, "paid")
	return order, nil
}

// CancelOrder lets the owner cancel a pending order and releases its
// reserved stock. This is the only path that returns stock; there is no
// background expiry of abandoned pending orders.
func (s *OrderService) CancelOrder(userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Order{}).
			Where("id = ? AND user_id = ? AND status = ?", orderID, userID, models.OrderStatusPending).
			Update("status", models.OrderStatusCancelled)
		if result.Error != nil {
			return fmt.Errorf("failed to update order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			err := tx.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			if err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			return ErrInvalidTransition
		}

		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}

		for _, item := range order.Items {
			if err := s.inventory.Restore(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(&order, "cancelled")
	return &order, nil
}

// UpdateStatus is the admin transition path. Any edge of the state machine
// table is allowed; everything else is rejected before any write.
func (s *OrderService) UpdateStatus(orderID uuid.UUID, target models.OrderStatus) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !order.CanTransitionTo(target) {
		return nil, ErrInvalidTransition
	}

	// Guard on the current status so a racing transition loses cleanly.
	result := s.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, order.Status).
		Update("status", target)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	if err := s.db.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	s.publishEvent(&order, "status_updated")
	return &order, nil
}

func (s *OrderService) publishEvent(order *models.Order, eventType string) {
	if s.publisher == nil || order == nil {
		return
	}

	event := events.OrderEvent{
		OrderID:  order.ID.String(),
		OrderNo:  order.OrderNo,
		UserID:   order.UserID.String(),
		Type:     eventType,
		Status:   string(order.Status),
		Total:    order.TotalAmount.StringFixed(2),
		Occurred: time.Now().UTC(),
	}

	if err := s.publisher.PublishOrderEvent(event); err != nil {
		logrus.WithError(err).WithField("order_no", order.OrderNo).
			Warn("Failed to publish order event")
	}
}
