package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserAchievement struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	Achievement   *Achievement `gorm:"constraint:OnDelete:CASCADE;foreignKey:AchievementID;references:ID" json:"achievement,omitempty"`
	EarnedAt      time.Time    `gorm:"not null" json:"earned_at"`
}

func (UserAchievement) TableName() string { return "user_achievement" }

func (a *UserAchievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.EarnedAt.IsZero() {
		a.EarnedAt = time.Now().UTC()
	}
	return nil
}
