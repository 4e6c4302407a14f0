package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Earning is a commission ledger row: UserID earned Amount at Level because
// FromUserID made PurchaseID. Rows are append-only, created in the same
// transaction as their purchase, and never updated or deleted.
type Earning struct {
	ID         string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	FromUserID string          `gorm:"type:uuid;not null" json:"from_user_id"`
	Level      int             `gorm:"not null" json:"level"` // 1 or 2
	Amount     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	PurchaseID string          `gorm:"type:uuid;not null;index" json:"purchase_id"`
	CreatedAt  time.Time       `json:"created_at"`

	User     User     `gorm:"foreignKey:UserID" json:"-"`
	FromUser User     `gorm:"foreignKey:FromUserID" json:"-"`
	Purchase Purchase `gorm:"foreignKey:PurchaseID" json:"-"`
}

func (Earning) TableName() string { return "earnings" }

func (e *Earning) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
