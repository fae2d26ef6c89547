package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/types"
)

type RoadmapRepo interface {
	Create(ctx context.Context, tx *gorm.DB, roadmap *types.Roadmap) (*types.Roadmap, error)
	GetByIDForUser(ctx context.Context, tx *gorm.DB, roadmapID, userID uuid.UUID) (*types.Roadmap, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Roadmap, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, activeOnly bool) (int64, error)
	Deactivate(ctx context.Context, tx *gorm.DB, roadmapID, userID uuid.UUID) error
}

type roadmapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapRepo {
	return &roadmapRepo{db: db, log: baseLog.With("repo", "RoadmapRepo")}
}

func (r *roadmapRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *roadmapRepo) Create(ctx context.Context, tx *gorm.DB, roadmap *types.Roadmap) (*types.Roadmap, error) {
	if err := r.handle(tx).WithContext(ctx).Create(roadmap).Error; err != nil {
		return nil, err
	}
	return roadmap, nil
}

func (r *roadmapRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, roadmapID, userID uuid.UUID) (*types.Roadmap, error) {
	var roadmap types.Roadmap
	err := r.handle(tx).WithContext(ctx).
		Where("id = ? AND user_id = ?", roadmapID, userID).
		First(&roadmap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &roadmap, nil
}

func (r *roadmapRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Roadmap, error) {
	var results []*types.Roadmap
	if err := r.handle(tx).WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *roadmapRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, activeOnly bool) (int64, error) {
	q := r.handle(tx).WithContext(ctx).Model(&types.Roadmap{}).Where("user_id = ?", userID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *roadmapRepo) Deactivate(ctx context.Context, tx *gorm.DB, roadmapID, userID uuid.UUID) error {
	return r.handle(tx).WithContext(ctx).
		Model(&types.Roadmap{}).
		Where("id = ? AND user_id = ?", roadmapID, userID).
		Update("is_active", false).Error
}
