// internal/models/order.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxQuantityPerLine caps a single order line.
const MaxQuantityPerLine = 99

type Order struct {
	BaseModel
	OrderNo     string          `json:"order_no" gorm:"uniqueIndex;size:32;not null"`
	UserID      uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Status      OrderStatus     `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Address     JSONB           `json:"address" gorm:"type:jsonb"`

	// Relationships
	User  User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem snapshots product identity and price at order time. ProductID is
// a weak reference: the product may be deleted later, the line stays intact.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `json:"product_id" gorm:"type:uuid;not null"`
	ProductName string          `json:"product_name" gorm:"size:255;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
}

// Subtotal is price at order time times quantity, in exact decimal.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// orderTransitions is the full status state machine. Terminal states map to
// empty sets; anything not listed here is rejected.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:      {OrderStatusShipped},
	OrderStatusShipped:   {OrderStatusCompleted},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

// CanTransitionTo reports whether target is a permitted next status.
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	for _, next := range orderTransitions[o.Status] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (o *Order) IsTerminal() bool {
	return len(orderTransitions[o.Status]) == 0
}
