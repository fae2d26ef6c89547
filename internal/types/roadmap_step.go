package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RoadmapStep struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RoadmapID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"roadmap_id"`
	Roadmap        *Roadmap       `gorm:"constraint:OnDelete:CASCADE;foreignKey:RoadmapID;references:ID" json:"roadmap,omitempty"`
	StepOrder      int            `gorm:"not null;column:step_order" json:"step_order"`
	Title          string         `gorm:"not null;column:title" json:"title"`
	Description    string         `gorm:"column:description" json:"description"`
	EstimatedHours int            `gorm:"column:estimated_hours" json:"estimated_hours"`
	Resources      datatypes.JSON `gorm:"column:resources;type:jsonb" json:"resources"`
	Projects       datatypes.JSON `gorm:"column:projects;type:jsonb" json:"projects"`
	IsCompleted    bool           `gorm:"not null;default:false;column:is_completed" json:"is_completed"`
	CompletedAt    *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
}

func (RoadmapStep) TableName() string { return "roadmap_step" }

func (s *RoadmapStep) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
