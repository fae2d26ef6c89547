package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActivityStepCompleted    = "step_completed"
	ActivityStepUncompleted  = "step_uncompleted"
	ActivityPostCreated      = "post_created"
	ActivityReplyCreated     = "reply_created"
	ActivityRoadmapCreated   = "roadmap_created"
	ActivityRoadmapCompleted = "roadmap_completed"
	ActivityStudySession     = "study_session"
)

// UserActivity is an append-only event log. Streaks are derived from it
// by date-bucketing; rows are never updated or deleted.
type UserActivity struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_activity_user_created" json:"user_id"`
	ActivityType string     `gorm:"not null;index;column:activity_type" json:"activity_type"`
	RoadmapID    *uuid.UUID `gorm:"type:uuid;column:roadmap_id" json:"roadmap_id,omitempty"`
	StepID       *uuid.UUID `gorm:"type:uuid;column:step_id" json:"step_id,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;index:idx_activity_user_created" json:"created_at"`
}

func (UserActivity) TableName() string { return "user_activity" }

func (a *UserActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
