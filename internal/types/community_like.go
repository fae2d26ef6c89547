package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommunityLike marks either a post or a reply, never both. Uniqueness
// per (user, post) and (user, reply) is enforced by partial indexes.
type CommunityLike struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	PostID    *uuid.UUID `gorm:"type:uuid;index;column:post_id" json:"post_id,omitempty"`
	ReplyID   *uuid.UUID `gorm:"type:uuid;index;column:reply_id" json:"reply_id,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
}

func (CommunityLike) TableName() string { return "community_like" }

func (l *CommunityLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
