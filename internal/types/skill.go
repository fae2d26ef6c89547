package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Skill struct {
	ID                      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name                    string    `gorm:"not null;uniqueIndex;column:name" json:"name"`
	Description             string    `gorm:"column:description" json:"description"`
	Category                string    `gorm:"index;column:category" json:"category"`
	DifficultyLevel         string    `gorm:"column:difficulty_level" json:"difficulty_level"`
	EstimatedDurationWeeks  int       `gorm:"column:estimated_duration_weeks" json:"estimated_duration_weeks"`
	IconURL                 string    `gorm:"column:icon_url" json:"icon_url"`
	IsActive                bool      `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt               time.Time `gorm:"not null" json:"created_at"`
}

func (Skill) TableName() string { return "skill" }

func (s *Skill) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
