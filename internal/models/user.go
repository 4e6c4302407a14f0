package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a node in the referral forest. ReferrerID is set once at signup
// and never updated afterwards; there is no write path that touches it.
type User struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	ReferrerID *string   `gorm:"type:uuid;index" json:"referrer_id"`
	CreatedAt  time.Time `json:"created_at"`

	Referrer *User `gorm:"foreignKey:ReferrerID" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) HasReferrer() bool { return u.ReferrerID != nil && *u.ReferrerID != "" }
