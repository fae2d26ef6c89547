package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/types"
)

type PostFilter struct {
	SkillName string
	Category  string
	SortBy    string // "recent", "popular"
	Page      int
	PageSize  int
}

type CommunityStats struct {
	TotalPosts   int64 `json:"total_posts"`
	TotalReplies int64 `json:"total_replies"`
	ActiveUsers  int64 `json:"active_users"`
}

type CommunityPostRepo interface {
	Create(ctx context.Context, tx *gorm.DB, post *types.CommunityPost) (*types.CommunityPost, error)
	GetByID(ctx context.Context, tx *gorm.DB, postID uuid.UUID) (*types.CommunityPost, error)
	List(ctx context.Context, tx *gorm.DB, filter PostFilter) ([]*types.CommunityPost, error)
	AddLikes(ctx context.Context, tx *gorm.DB, postID uuid.UUID, delta int) error
	AddReplies(ctx context.Context, tx *gorm.DB, postID uuid.UUID, delta int) error
	Stats(ctx context.Context, tx *gorm.DB) (CommunityStats, error)
}

type communityPostRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommunityPostRepo(db *gorm.DB, baseLog *logger.Logger) CommunityPostRepo {
	return &communityPostRepo{db: db, log: baseLog.With("repo", "CommunityPostRepo")}
}

func (r *communityPostRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *communityPostRepo) Create(ctx context.Context, tx *gorm.DB, post *types.CommunityPost) (*types.CommunityPost, error) {
	if err := r.handle(tx).WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (r *communityPostRepo) GetByID(ctx context.Context, tx *gorm.DB, postID uuid.UUID) (*types.CommunityPost, error) {
	var post types.CommunityPost
	err := r.handle(tx).WithContext(ctx).
		Preload("User").
		Where("id = ? AND is_active = ?", postID, true).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *communityPostRepo) List(ctx context.Context, tx *gorm.DB, filter PostFilter) ([]*types.CommunityPost, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 15
	}

	q := r.handle(tx).WithContext(ctx).
		Preload("User").
		Where("is_active = ?", true)
	if filter.SkillName != "" {
		q = q.Where("skill_name = ?", filter.SkillName)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	switch filter.SortBy {
	case "popular":
		q = q.Order("likes_count DESC, created_at DESC")
	default:
		q = q.Order("created_at DESC")
	}

	var results []*types.CommunityPost
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *communityPostRepo) AddLikes(ctx context.Context, tx *gorm.DB, postID uuid.UUID, delta int) error {
	return r.handle(tx).WithContext(ctx).
		Model(&types.CommunityPost{}).
		Where("id = ?", postID).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", delta)).Error
}

func (r *communityPostRepo) AddReplies(ctx context.Context, tx *gorm.DB, postID uuid.UUID, delta int) error {
	return r.handle(tx).WithContext(ctx).
		Model(&types.CommunityPost{}).
		Where("id = ?", postID).
		UpdateColumn("replies_count", gorm.Expr("replies_count + ?", delta)).Error
}

func (r *communityPostRepo) Stats(ctx context.Context, tx *gorm.DB) (CommunityStats, error) {
	var stats CommunityStats
	h := r.handle(tx).WithContext(ctx)
	if err := h.Model(&types.CommunityPost{}).Where("is_active = ?", true).Count(&stats.TotalPosts).Error; err != nil {
		return stats, err
	}
	if err := h.Model(&types.CommunityReply{}).Where("is_active = ?", true).Count(&stats.TotalReplies).Error; err != nil {
		return stats, err
	}
	if err := h.Model(&types.CommunityPost{}).
		Where("is_active = ?", true).
		Distinct("user_id").
		Count(&stats.ActiveUsers).Error; err != nil {
		return stats, err
	}
	return stats, nil
}
