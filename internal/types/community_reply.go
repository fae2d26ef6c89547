package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommunityReply struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PostID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"post_id"`
	Post       *CommunityPost `gorm:"constraint:OnDelete:CASCADE;foreignKey:PostID;references:ID" json:"post,omitempty"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Content    string         `gorm:"not null;column:content" json:"content"`
	LikesCount int            `gorm:"not null;default:0;column:likes_count" json:"likes_count"`
	IsActive   bool           `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
}

func (CommunityReply) TableName() string { return "community_reply" }

func (r *CommunityReply) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
