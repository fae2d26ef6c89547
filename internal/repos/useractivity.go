package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/types"
)

type UserActivityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, activity *types.UserActivity) (*types.UserActivity, error)
	ListSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, activityTypes ...string) ([]*types.UserActivity, error)
	TimesSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, activityTypes ...string) ([]time.Time, error)
}

type userActivityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserActivityRepo(db *gorm.DB, baseLog *logger.Logger) UserActivityRepo {
	return &userActivityRepo{db: db, log: baseLog.With("repo", "UserActivityRepo")}
}

func (r *userActivityRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *userActivityRepo) Create(ctx context.Context, tx *gorm.DB, activity *types.UserActivity) (*types.UserActivity, error) {
	if err := r.handle(tx).WithContext(ctx).Create(activity).Error; err != nil {
		return nil, err
	}
	return activity, nil
}

func (r *userActivityRepo) ListSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, activityTypes ...string) ([]*types.UserActivity, error) {
	q := r.handle(tx).WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since)
	if len(activityTypes) > 0 {
		q = q.Where("activity_type IN ?", activityTypes)
	}
	var results []*types.UserActivity
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userActivityRepo) TimesSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, activityTypes ...string) ([]time.Time, error) {
	activities, err := r.ListSince(ctx, tx, userID, since, activityTypes...)
	if err != nil {
		return nil, err
	}
	times := make([]time.Time, 0, len(activities))
	for _, a := range activities {
		times = append(times, a.CreatedAt)
	}
	return times, nil
}
