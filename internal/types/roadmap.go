package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	GenerationSourceAI       = "ai"
	GenerationSourceFallback = "fallback"
)

type Roadmap struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	SkillName       string         `gorm:"not null;index;column:skill_name" json:"skill_name"`
	Title           string         `gorm:"not null;column:title" json:"title"`
	Description     string         `gorm:"column:description" json:"description"`
	TotalWeeks      int            `gorm:"column:total_weeks" json:"total_weeks"`
	DifficultyLevel string         `gorm:"column:difficulty_level" json:"difficulty_level"`
	PlanData        datatypes.JSON `gorm:"column:plan_data;type:jsonb" json:"plan_data"`
	Source          string         `gorm:"not null;default:'fallback';column:source" json:"source"`
	IsActive        bool           `gorm:"not null;default:true;index;column:is_active" json:"is_active"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
}

func (Roadmap) TableName() string { return "roadmap" }

func (r *Roadmap) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
