package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/types"
)

type StepCounts struct {
	Total     int64
	Completed int64
}

type RoadmapStepRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, steps []*types.RoadmapStep) ([]*types.RoadmapStep, error)
	GetByIDForRoadmap(ctx context.Context, tx *gorm.DB, stepID, roadmapID uuid.UUID) (*types.RoadmapStep, error)
	ListByRoadmap(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID) ([]*types.RoadmapStep, error)
	SetCompleted(ctx context.Context, tx *gorm.DB, stepID uuid.UUID, completed bool, at *time.Time) error
	CountByRoadmap(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID) (StepCounts, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (StepCounts, error)
	SumCompletedHoursByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type roadmapStepRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapStepRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapStepRepo {
	return &roadmapStepRepo{db: db, log: baseLog.With("repo", "RoadmapStepRepo")}
}

func (r *roadmapStepRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *roadmapStepRepo) CreateBatch(ctx context.Context, tx *gorm.DB, steps []*types.RoadmapStep) ([]*types.RoadmapStep, error) {
	if len(steps) == 0 {
		return steps, nil
	}
	if err := r.handle(tx).WithContext(ctx).Create(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

func (r *roadmapStepRepo) GetByIDForRoadmap(ctx context.Context, tx *gorm.DB, stepID, roadmapID uuid.UUID) (*types.RoadmapStep, error) {
	var step types.RoadmapStep
	err := r.handle(tx).WithContext(ctx).
		Where("id = ? AND roadmap_id = ?", stepID, roadmapID).
		First(&step).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *roadmapStepRepo) ListByRoadmap(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID) ([]*types.RoadmapStep, error) {
	var results []*types.RoadmapStep
	if err := r.handle(tx).WithContext(ctx).
		Where("roadmap_id = ?", roadmapID).
		Order("step_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *roadmapStepRepo) SetCompleted(ctx context.Context, tx *gorm.DB, stepID uuid.UUID, completed bool, at *time.Time) error {
	return r.handle(tx).WithContext(ctx).
		Model(&types.RoadmapStep{}).
		Where("id = ?", stepID).
		Updates(map[string]interface{}{
			"is_completed": completed,
			"completed_at": at,
		}).Error
}

func (r *roadmapStepRepo) CountByRoadmap(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID) (StepCounts, error) {
	var counts StepCounts
	h := r.handle(tx).WithContext(ctx).Model(&types.RoadmapStep{})
	if err := h.Where("roadmap_id = ?", roadmapID).Count(&counts.Total).Error; err != nil {
		return counts, err
	}
	h = r.handle(tx).WithContext(ctx).Model(&types.RoadmapStep{})
	if err := h.Where("roadmap_id = ? AND is_completed = ?", roadmapID, true).Count(&counts.Completed).Error; err != nil {
		return counts, err
	}
	return counts, nil
}

func (r *roadmapStepRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (StepCounts, error) {
	var counts StepCounts
	base := `
		SELECT count(*) FROM roadmap_step
		JOIN roadmap ON roadmap.id = roadmap_step.roadmap_id
		WHERE roadmap.user_id = ? AND roadmap.is_active = true`
	if err := r.handle(tx).WithContext(ctx).Raw(base, userID).Scan(&counts.Total).Error; err != nil {
		return counts, err
	}
	if err := r.handle(tx).WithContext(ctx).
		Raw(base+` AND roadmap_step.is_completed = true`, userID).
		Scan(&counts.Completed).Error; err != nil {
		return counts, err
	}
	return counts, nil
}

func (r *roadmapStepRepo) SumCompletedHoursByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var hours int64
	err := r.handle(tx).WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(roadmap_step.estimated_hours), 0) FROM roadmap_step
		JOIN roadmap ON roadmap.id = roadmap_step.roadmap_id
		WHERE roadmap.user_id = ? AND roadmap.is_active = true AND roadmap_step.is_completed = true`, userID).
		Scan(&hours).Error
	if err != nil {
		return 0, err
	}
	return hours, nil
}
