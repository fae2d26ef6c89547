package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/types"
)

type GamificationRepo interface {
	GetOrCreateByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.GamificationProfile, error)
	Save(ctx context.Context, tx *gorm.DB, profile *types.GamificationProfile) error
	CreateXPEvent(ctx context.Context, tx *gorm.DB, event *types.XPEvent) error
}

type gamificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGamificationRepo(db *gorm.DB, baseLog *logger.Logger) GamificationRepo {
	return &gamificationRepo{db: db, log: baseLog.With("repo", "GamificationRepo")}
}

func (r *gamificationRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *gamificationRepo) GetOrCreateByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.GamificationProfile, error) {
	var profile types.GamificationProfile
	err := r.handle(tx).WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	profile = types.GamificationProfile{UserID: userID, CurrentLevel: 1}
	if err := r.handle(tx).WithContext(ctx).Create(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *gamificationRepo) Save(ctx context.Context, tx *gorm.DB, profile *types.GamificationProfile) error {
	return r.handle(tx).WithContext(ctx).Save(profile).Error
}

func (r *gamificationRepo) CreateXPEvent(ctx context.Context, tx *gorm.DB, event *types.XPEvent) error {
	return r.handle(tx).WithContext(ctx).Create(event).Error
}
