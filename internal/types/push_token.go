package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PushToken keeps one active token per (user, device type). Superseded
// tokens are marked inactive rather than deleted.
type PushToken struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Token      string    `gorm:"not null;index;column:token" json:"-"`
	DeviceType string    `gorm:"not null;column:device_type" json:"device_type"`
	IsActive   bool      `gorm:"not null;default:true;index;column:is_active" json:"is_active"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (PushToken) TableName() string { return "push_token" }

func (t *PushToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
