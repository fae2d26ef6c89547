package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationDailyReminder  = "daily_reminder"
	NotificationStreakRisk     = "streak_risk"
	NotificationStreakLost     = "streak_lost"
	NotificationStepCompletion = "step_completion"
	NotificationWeeklyProgress = "weekly_progress"

	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

// NotificationLog is the append-only audit trail for dispatched
// notifications. The unique index on (user_id, notification_type,
// sent_date) makes scheduler-driven sends insert-if-absent: at most one
// row per user, type and calendar day, regardless of how many scheduler
// instances are running.
type NotificationLog struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_notification_user_type_day" json:"user_id"`
	NotificationType string     `gorm:"not null;uniqueIndex:idx_notification_user_type_day;column:notification_type" json:"notification_type"`
	SentDate         string     `gorm:"not null;uniqueIndex:idx_notification_user_type_day;column:sent_date" json:"sent_date"`
	Title            string     `gorm:"not null;column:title" json:"title"`
	Body             string     `gorm:"not null;column:body" json:"body"`
	RoadmapID        *uuid.UUID `gorm:"type:uuid;column:roadmap_id" json:"roadmap_id,omitempty"`
	StepID           *uuid.UUID `gorm:"type:uuid;column:step_id" json:"step_id,omitempty"`
	Status           string     `gorm:"not null;default:'sent';column:status" json:"status"`
	SentAt           time.Time  `gorm:"not null;index:,sort:desc" json:"sent_at"`
}

func (NotificationLog) TableName() string { return "notification_log" }

func (l *NotificationLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.SentAt.IsZero() {
		l.SentAt = time.Now().UTC()
	}
	return nil
}
