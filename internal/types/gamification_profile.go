package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GamificationProfile struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User              *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	TotalXP           int       `gorm:"not null;default:0;column:total_xp" json:"total_xp"`
	CurrentLevel      int       `gorm:"not null;default:1;column:current_level" json:"current_level"`
	DailyXP           int       `gorm:"not null;default:0;column:daily_xp" json:"daily_xp"`
	DailyXPDate       string    `gorm:"column:daily_xp_date" json:"daily_xp_date"`
	CurrentStreak     int       `gorm:"not null;default:0;column:current_streak" json:"current_streak"`
	LongestStreak     int       `gorm:"not null;default:0;column:longest_streak" json:"longest_streak"`
	LastActivityDate  string    `gorm:"column:last_activity_date" json:"last_activity_date"`
	StepsCompleted    int       `gorm:"not null;default:0;column:steps_completed" json:"steps_completed"`
	PostsCreated      int       `gorm:"not null;default:0;column:posts_created" json:"posts_created"`
	RepliesCreated    int       `gorm:"not null;default:0;column:replies_created" json:"replies_created"`
	RoadmapsCompleted int       `gorm:"not null;default:0;column:roadmaps_completed" json:"roadmaps_completed"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`
}

func (GamificationProfile) TableName() string { return "gamification_profile" }

// MetricFor returns the profile value an achievement condition is
// compared against; unknown conditions report -1 so they never unlock.
func (p *GamificationProfile) MetricFor(condition string) int {
	switch condition {
	case ConditionTotalXP:
		return p.TotalXP
	case ConditionStreakDays:
		return p.CurrentStreak
	case ConditionStepsCompleted:
		return p.StepsCompleted
	case ConditionPostsCreated:
		return p.PostsCreated
	case ConditionRoadmapsCompleted:
		return p.RoadmapsCompleted
	default:
		return -1
	}
}

func (p *GamificationProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
