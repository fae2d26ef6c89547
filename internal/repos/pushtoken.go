package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/types"
)

type PushTokenRepo interface {
	// Register deactivates any active token for the same (user, device
	// type) and inserts the new one. History is kept.
	Register(ctx context.Context, tx *gorm.DB, token *types.PushToken) (*types.PushToken, error)
	ListActiveByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PushToken, error)
	DeactivateByToken(ctx context.Context, tx *gorm.DB, token string) error
}

type pushTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPushTokenRepo(db *gorm.DB, baseLog *logger.Logger) PushTokenRepo {
	return &pushTokenRepo{db: db, log: baseLog.With("repo", "PushTokenRepo")}
}

func (r *pushTokenRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *pushTokenRepo) Register(ctx context.Context, tx *gorm.DB, token *types.PushToken) (*types.PushToken, error) {
	h := r.handle(tx).WithContext(ctx)
	if err := h.Model(&types.PushToken{}).
		Where("user_id = ? AND device_type = ? AND is_active = ?", token.UserID, token.DeviceType, true).
		Update("is_active", false).Error; err != nil {
		return nil, err
	}
	token.IsActive = true
	if err := h.Create(token).Error; err != nil {
		return nil, err
	}
	return token, nil
}

func (r *pushTokenRepo) ListActiveByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PushToken, error) {
	var results []*types.PushToken
	if err := r.handle(tx).WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *pushTokenRepo) DeactivateByToken(ctx context.Context, tx *gorm.DB, token string) error {
	return r.handle(tx).WithContext(ctx).
		Model(&types.PushToken{}).
		Where("token = ?", token).
		Update("is_active", false).Error
}
