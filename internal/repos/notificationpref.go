package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/types"
)

type NotificationPrefRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.NotificationPreference, error)
	Create(ctx context.Context, tx *gorm.DB, pref *types.NotificationPreference) (*types.NotificationPreference, error)
	Save(ctx context.Context, tx *gorm.DB, pref *types.NotificationPreference) error
	ListDailyReminderEnabled(ctx context.Context, tx *gorm.DB) ([]*types.NotificationPreference, error)
	ListStreakWarningEnabled(ctx context.Context, tx *gorm.DB) ([]*types.NotificationPreference, error)
	ListWeeklyProgressEnabled(ctx context.Context, tx *gorm.DB) ([]*types.NotificationPreference, error)
}

type notificationPrefRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationPrefRepo(db *gorm.DB, baseLog *logger.Logger) NotificationPrefRepo {
	return &notificationPrefRepo{db: db, log: baseLog.With("repo", "NotificationPrefRepo")}
}

func (r *notificationPrefRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *notificationPrefRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.NotificationPreference, error) {
	var pref types.NotificationPreference
	err := r.handle(tx).WithContext(ctx).Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *notificationPrefRepo) Create(ctx context.Context, tx *gorm.DB, pref *types.NotificationPreference) (*types.NotificationPreference, error) {
	if err := r.handle(tx).WithContext(ctx).Create(pref).Error; err != nil {
		return nil, err
	}
	return pref, nil
}

func (r *notificationPrefRepo) Save(ctx context.Context, tx *gorm.DB, pref *types.NotificationPreference) error {
	return r.handle(tx).WithContext(ctx).Save(pref).Error
}

func (r *notificationPrefRepo) ListDailyReminderEnabled(ctx context.Context, tx *gorm.DB) ([]*types.NotificationPreference, error) {
	var results []*types.NotificationPreference
	if err := r.handle(tx).WithContext(ctx).
		Where("daily_reminder_enabled = ?", true).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *notificationPrefRepo) ListStreakWarningEnabled(ctx context.Context, tx *gorm.DB) ([]*types.NotificationPreference, error) {
	var results []*types.NotificationPreference
	if err := r.handle(tx).WithContext(ctx).
		Where("streak_warning_enabled = ?", true).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *notificationPrefRepo) ListWeeklyProgressEnabled(ctx context.Context, tx *gorm.DB) ([]*types.NotificationPreference, error) {
	var results []*types.NotificationPreference
	if err := r.handle(tx).WithContext(ctx).
		Where("weekly_progress_enabled = ?", true).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
