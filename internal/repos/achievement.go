package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/types"
)

type AchievementRepo interface {
	UpsertCatalog(ctx context.Context, tx *gorm.DB, achievements []*types.Achievement) error
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error)
	ListEarnedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserAchievement, error)
	// Unlock inserts the unlock record unless it already exists.
	Unlock(ctx context.Context, tx *gorm.DB, userID, achievementID uuid.UUID) (bool, error)
}

type achievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return &achievementRepo{db: db, log: baseLog.With("repo", "AchievementRepo")}
}

func (r *achievementRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *achievementRepo) UpsertCatalog(ctx context.Context, tx *gorm.DB, achievements []*types.Achievement) error {
	if len(achievements) == 0 {
		return nil
	}
	return r.handle(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "icon", "category", "condition", "threshold", "xp_reward"}),
		}).
		Create(&achievements).Error
}

func (r *achievementRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error) {
	var results []*types.Achievement
	if err := r.handle(tx).WithContext(ctx).Order("threshold ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *achievementRepo) ListEarnedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserAchievement, error) {
	var results []*types.UserAchievement
	if err := r.handle(tx).WithContext(ctx).
		Preload("Achievement").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *achievementRepo) Unlock(ctx context.Context, tx *gorm.DB, userID, achievementID uuid.UUID) (bool, error) {
	ua := types.UserAchievement{UserID: userID, AchievementID: achievementID}
	res := r.handle(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Create(&ua)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
