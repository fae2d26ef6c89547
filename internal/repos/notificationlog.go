package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/types"
)

type NotificationLogRepo interface {
	// InsertIfAbsent writes the log row unless a row with the same
	// (user, type, sent_date) already exists. Returns false when the
	// row was already present, which callers treat as "already sent
	// today".
	InsertIfAbsent(ctx context.Context, tx *gorm.DB, entry *types.NotificationLog) (bool, error)
	Create(ctx context.Context, tx *gorm.DB, entry *types.NotificationLog) (*types.NotificationLog, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.NotificationLog, error)
	SentWithin(ctx context.Context, tx *gorm.DB, userID uuid.UUID, notificationType string, window time.Duration, now time.Time) (bool, error)
	MarkStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error
}

type notificationLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationLogRepo(db *gorm.DB, baseLog *logger.Logger) NotificationLogRepo {
	return &notificationLogRepo{db: db, log: baseLog.With("repo", "NotificationLogRepo")}
}

func (r *notificationLogRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *notificationLogRepo) InsertIfAbsent(ctx context.Context, tx *gorm.DB, entry *types.NotificationLog) (bool, error) {
	res := r.handle(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "notification_type"}, {Name: "sent_date"}},
			DoNothing: true,
		}).
		Create(entry)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *notificationLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.NotificationLog) (*types.NotificationLog, error) {
	if err := r.handle(tx).WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *notificationLogRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.NotificationLog, error) {
	if limit < 1 || limit > 100 {
		limit = 25
	}
	var results []*types.NotificationLog
	if err := r.handle(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sent_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *notificationLogRepo) SentWithin(ctx context.Context, tx *gorm.DB, userID uuid.UUID, notificationType string, window time.Duration, now time.Time) (bool, error) {
	var count int64
	if err := r.handle(tx).WithContext(ctx).
		Model(&types.NotificationLog{}).
		Where("user_id = ? AND notification_type = ? AND sent_at > ?", userID, notificationType, now.Add(-window)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *notificationLogRepo) MarkStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	return r.handle(tx).WithContext(ctx).
		Model(&types.NotificationLog{}).
		Where("id = ?", id).
		Update("status", status).Error
}
