// internal/models/address.go
package models

import (
	"github.com/google/uuid"
)

type Address struct {
	BaseModel
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Recipient string    `json:"recipient" gorm:"size:100;not null"`
	Phone     string    `json:"phone" gorm:"size:30;not null"`
	Province  string    `json:"province" gorm:"size:100"`
	City      string    `json:"city" gorm:"size:100"`
	District  string    `json:"district" gorm:"size:100"`
	Detail    string    `json:"detail" gorm:"size:255;not null"`
	IsDefault bool      `json:"is_default" gorm:"default:false"`
}

// Snapshot freezes the address into the JSON blob embedded in an order.
// Orders must stay readable after the address is edited or deleted.
func (a *Address) Snapshot() JSONB {
	return JSONB{
		"recipient": a.Recipient,
		"phone":     a.Phone,
		"province":  a.Province,
		"city":      a.City,
		"district":  a.District,
		"detail":    a.Detail,
	}
}
