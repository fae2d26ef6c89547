package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// XPEvent is the append-only XP history.
type XPEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	EventType string    `gorm:"not null;column:event_type" json:"event_type"`
	Amount    int       `gorm:"not null;column:amount" json:"amount"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (XPEvent) TableName() string { return "xp_event" }

func (e *XPEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
