package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationPreference holds per-user reminder settings. Absence of a
// row means system defaults; the row is created lazily on first read and
// never hard-deleted. Time fields are 24-hour "HH:MM" strings.
type NotificationPreference struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User                  *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	DailyReminderEnabled  bool      `gorm:"not null;default:true;column:daily_reminder_enabled" json:"daily_reminder_enabled"`
	DailyReminderTime     string    `gorm:"not null;default:'09:00';column:daily_reminder_time" json:"daily_reminder_time"`
	StepCompletionEnabled bool      `gorm:"not null;default:true;column:step_completion_enabled" json:"step_completion_enabled"`
	StreakWarningEnabled  bool      `gorm:"not null;default:true;column:streak_warning_enabled" json:"streak_warning_enabled"`
	WeeklyProgressEnabled bool      `gorm:"not null;default:true;column:weekly_progress_enabled" json:"weekly_progress_enabled"`
	DoNotDisturbStart     string    `gorm:"not null;default:'22:00';column:do_not_disturb_start" json:"do_not_disturb_start"`
	DoNotDisturbEnd       string    `gorm:"not null;default:'08:00';column:do_not_disturb_end" json:"do_not_disturb_end"`
	Timezone              string    `gorm:"not null;default:'UTC';column:timezone" json:"timezone"`
	DeviceTimezone        string    `gorm:"column:device_timezone" json:"device_timezone,omitempty"`
	CreatedAt             time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt             time.Time `gorm:"not null" json:"updated_at"`
}

func (NotificationPreference) TableName() string { return "notification_preference" }

// EnabledFor reports whether the user opted in to the given
// notification type. Unknown types are allowed.
func (p *NotificationPreference) EnabledFor(notificationType string) bool {
	switch notificationType {
	case NotificationDailyReminder:
		return p.DailyReminderEnabled
	case NotificationStepCompletion:
		return p.StepCompletionEnabled
	case NotificationStreakRisk, NotificationStreakLost:
		return p.StreakWarningEnabled
	case NotificationWeeklyProgress:
		return p.WeeklyProgressEnabled
	default:
		return true
	}
}

func (p *NotificationPreference) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
