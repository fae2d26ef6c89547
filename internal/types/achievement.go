package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ConditionTotalXP           = "total_xp"
	ConditionStreakDays        = "streak_days"
	ConditionStepsCompleted    = "steps_completed"
	ConditionPostsCreated      = "posts_created"
	ConditionRoadmapsCompleted = "roadmaps_completed"
)

// Achievement is a catalog row seeded from the YAML definitions at
// startup. Code is the stable identifier; the rest may be re-seeded.
type Achievement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string    `gorm:"not null;uniqueIndex;column:code" json:"code"`
	Name        string    `gorm:"not null;column:name" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	Icon        string    `gorm:"column:icon" json:"icon"`
	Category    string    `gorm:"column:category" json:"category"`
	Condition   string    `gorm:"not null;column:condition" json:"condition"`
	Threshold   int       `gorm:"not null;column:threshold" json:"threshold"`
	XPReward    int       `gorm:"not null;default:0;column:xp_reward" json:"xp_reward"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (Achievement) TableName() string { return "achievement" }

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
