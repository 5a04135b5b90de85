// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Category struct {
	BaseModel
	Name   string `json:"name" gorm:"size:100;not null"`
	Slug   string `json:"slug" gorm:"uniqueIndex;size:100;not null"`
	Active bool   `json:"active" gorm:"default:true"`

	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

type Product struct {
	BaseModel
	CategoryID  uuid.UUID       `json:"category_id" gorm:"type:uuid;not null;index"`
	Name        string          `json:"name" gorm:"size:255;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	Active      bool            `json:"active" gorm:"default:true;index"`
	Images      pq.StringArray  `json:"images" gorm:"type:text[]"`
	SalesCount  int64           `json:"sales_count" gorm:"default:0"`

	// Relationships
	Category Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// Available reports whether a shopper can order qty units right now.
// It is a read-side convenience only; the authoritative guard is the
// atomic decrement in InventoryService.
func (p *Product) Available(qty int) bool {
	return p.Active && p.Stock >= qty
}
