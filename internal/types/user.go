package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubscriptionFree    = "free"
	SubscriptionPremium = "premium"
)

type User struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email               string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password            string     `gorm:"not null;column:password" json:"-"`
	Name                string     `gorm:"not null;column:name" json:"name"`
	AvatarBucketKey     string     `gorm:"column:avatar_bucket_key" json:"-"`
	AvatarURL           string     `gorm:"column:avatar_url" json:"avatar_url"`
	SubscriptionType    string     `gorm:"not null;default:'free';column:subscription_type" json:"subscription_type"`
	SubscriptionExpires *time.Time `gorm:"column:subscription_expires" json:"subscription_expires,omitempty"`
	PreferredLanguage   string     `gorm:"not null;default:'en';column:preferred_language" json:"preferred_language"`
	IsActive            bool       `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt           time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "user" }

// IsPremium reports whether the user currently has an unexpired premium
// subscription.
func (u *User) IsPremium(now time.Time) bool {
	if u.SubscriptionType != SubscriptionPremium {
		return false
	}
	if u.SubscriptionExpires == nil {
		return true
	}
	return u.SubscriptionExpires.After(now)
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
