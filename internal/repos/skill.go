package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/types"
)

type SkillRepo interface {
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Skill, error)
	Upsert(ctx context.Context, tx *gorm.DB, skill *types.Skill) error
	ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Skill, error)
}

type skillRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillRepo(db *gorm.DB, baseLog *logger.Logger) SkillRepo {
	return &skillRepo{db: db, log: baseLog.With("repo", "SkillRepo")}
}

func (r *skillRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *skillRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Skill, error) {
	var skill types.Skill
	err := r.handle(tx).WithContext(ctx).
		Where("LOWER(name) = LOWER(?) AND is_active = ?", name, true).
		First(&skill).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *skillRepo) Upsert(ctx context.Context, tx *gorm.DB, skill *types.Skill) error {
	return r.handle(tx).WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"description", "category", "difficulty_level", "estimated_duration_weeks",
		}),
	}).Create(skill).Error
}

func (r *skillRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Skill, error) {
	var skills []*types.Skill
	err := r.handle(tx).WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&skills).Error
	if err != nil {
		return nil, err
	}
	return skills, nil
}
