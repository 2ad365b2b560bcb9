package db_models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderItem struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID         uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID       *uuid.UUID `gorm:"type:uuid" json:"product_id,omitempty"`
	NameSnapshot    string     `json:"name_snapshot"`
	UnitAmountCents int64      `json:"unit_amount_cents"`
	Qty             int64      `json:"qty"`
	Currency        string     `gorm:"size:3" json:"currency"`
	CreatedAt       int64      `json:"created_at"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.CreatedAt == 0 {
		i.CreatedAt = time.Now().Unix()
	}
	return nil
}

func (i *OrderItem) LineTotalCents() int64 {
	return i.UnitAmountCents * i.Qty
}
