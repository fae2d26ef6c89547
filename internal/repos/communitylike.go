package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/types"
)

type CommunityLikeRepo interface {
	ExistsForPost(ctx context.Context, tx *gorm.DB, userID, postID uuid.UUID) (bool, error)
	CreateForPost(ctx context.Context, tx *gorm.DB, userID, postID uuid.UUID) error
	DeleteForPost(ctx context.Context, tx *gorm.DB, userID, postID uuid.UUID) error
}

type communityLikeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommunityLikeRepo(db *gorm.DB, baseLog *logger.Logger) CommunityLikeRepo {
	return &communityLikeRepo{db: db, log: baseLog.With("repo", "CommunityLikeRepo")}
}

func (r *communityLikeRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *communityLikeRepo) ExistsForPost(ctx context.Context, tx *gorm.DB, userID, postID uuid.UUID) (bool, error) {
	var count int64
	if err := r.handle(tx).WithContext(ctx).
		Model(&types.CommunityLike{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *communityLikeRepo) CreateForPost(ctx context.Context, tx *gorm.DB, userID, postID uuid.UUID) error {
	like := types.CommunityLike{UserID: userID, PostID: &postID}
	return r.handle(tx).WithContext(ctx).Create(&like).Error
}

func (r *communityLikeRepo) DeleteForPost(ctx context.Context, tx *gorm.DB, userID, postID uuid.UUID) error {
	return r.handle(tx).WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&types.CommunityLike{}).Error
}
