package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/types"
)

type CommunityReplyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, reply *types.CommunityReply) (*types.CommunityReply, error)
	GetByID(ctx context.Context, tx *gorm.DB, replyID uuid.UUID) (*types.CommunityReply, error)
	ListByPost(ctx context.Context, tx *gorm.DB, postID uuid.UUID, limit int) ([]*types.CommunityReply, error)
	AddLikes(ctx context.Context, tx *gorm.DB, replyID uuid.UUID, delta int) error
}

type communityReplyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommunityReplyRepo(db *gorm.DB, baseLog *logger.Logger) CommunityReplyRepo {
	return &communityReplyRepo{db: db, log: baseLog.With("repo", "CommunityReplyRepo")}
}

func (r *communityReplyRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *communityReplyRepo) Create(ctx context.Context, tx *gorm.DB, reply *types.CommunityReply) (*types.CommunityReply, error) {
	if err := r.handle(tx).WithContext(ctx).Create(reply).Error; err != nil {
		return nil, err
	}
	return reply, nil
}

func (r *communityReplyRepo) GetByID(ctx context.Context, tx *gorm.DB, replyID uuid.UUID) (*types.CommunityReply, error) {
	var reply types.CommunityReply
	err := r.handle(tx).WithContext(ctx).
		Where("id = ? AND is_active = ?", replyID, true).
		First(&reply).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *communityReplyRepo) ListByPost(ctx context.Context, tx *gorm.DB, postID uuid.UUID, limit int) ([]*types.CommunityReply, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	var results []*types.CommunityReply
	if err := r.handle(tx).WithContext(ctx).
		Preload("User").
		Where("post_id = ? AND is_active = ?", postID, true).
		Order("created_at ASC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *communityReplyRepo) AddLikes(ctx context.Context, tx *gorm.DB, replyID uuid.UUID, delta int) error {
	return r.handle(tx).WithContext(ctx).
		Model(&types.CommunityReply{}).
		Where("id = ?", replyID).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", delta)).Error
}
