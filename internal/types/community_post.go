package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommunityPost struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	SkillName    string    `gorm:"index;column:skill_name" json:"skill_name"`
	Category     string    `gorm:"index;column:category" json:"category"`
	Title        string    `gorm:"not null;column:title" json:"title"`
	Content      string    `gorm:"not null;column:content" json:"content"`
	LikesCount   int       `gorm:"not null;default:0;column:likes_count" json:"likes_count"`
	RepliesCount int       `gorm:"not null;default:0;column:replies_count" json:"replies_count"`
	IsActive     bool      `gorm:"not null;default:true;index;column:is_active" json:"is_active"`
	CreatedAt    time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (CommunityPost) TableName() string { return "community_post" }

func (p *CommunityPost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
