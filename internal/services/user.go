package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/skillpath/skillpath-backend/internal/clients/redis"
	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/repos"
	"github.com/skillpath/skillpath-backend/internal/types"
)

type UserService interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	redis         redisclient.Client
}

func NewUserService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	redis redisclient.Client,
) UserService {
	return &userService{
		db:            db,
		log:           log.With("service", "UserService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		redis:         redis,
	}
}

func (us *userService) GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := us.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// DeleteAccount removes the user row; dependent rows go with it via
// ON DELETE CASCADE. Sessions and cached views are cleared explicitly.
func (us *userService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := us.userTokenRepo.DeleteByUserID(ctx, tx, userID); err != nil {
			return fmt.Errorf("failed to delete sessions: %w", err)
		}
		if err := us.userRepo.Delete(ctx, tx, userID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if us.redis != nil {
		if err := us.redis.Delete(ctx, dashboardCacheKey(userID)); err != nil {
			us.log.Warn("failed to clear cached dashboard (ignored)", "error", err)
		}
	}

	us.log.Info("Account deleted", "user_id", userID.String())
	return nil
}
