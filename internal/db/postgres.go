package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/types"
	"github.com/skillpath/skillpath-backend/internal/utils"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewService(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	driver := utils.GetEnv("DB_DRIVER", "postgres", log)

	var (
		gdb *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		// Local development fallback.
		path := utils.GetEnv("SQLITE_PATH", "skillpath.db", log)
		gdb, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	default:
		host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
		port := utils.GetEnv("POSTGRES_PORT", "5432", log)
		user := utils.GetEnv("POSTGRES_USER", "postgres", log)
		password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		name := utils.GetEnv("POSTGRES_NAME", "skillpath", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
		gdb, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
		})
	}
	if err != nil {
		serviceLog.Error("Failed to connect to database", "driver", driver, "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying sql.DB: %w", err)
	}
	poolSize := utils.GetEnvAsInt("DB_POOL_SIZE", 20, log)
	maxOverflow := utils.GetEnvAsInt("DB_MAX_OVERFLOW", 30, log)
	sqlDB.SetMaxIdleConns(poolSize)
	sqlDB.SetMaxOpenConns(poolSize + maxOverflow)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Service{db: gdb, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Skill{},
		&types.Roadmap{},
		&types.RoadmapStep{},
		&types.UserActivity{},
		&types.CommunityPost{},
		&types.CommunityReply{},
		&types.CommunityLike{},
		&types.NotificationPreference{},
		&types.NotificationLog{},
		&types.PushToken{},
		&types.GamificationProfile{},
		&types.XPEvent{},
		&types.Achievement{},
		&types.UserAchievement{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	// One like per user per post / per reply. Partial indexes because a
	// like row references exactly one of the two.
	if err := s.db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_like_user_post
		ON community_like (user_id, post_id) WHERE post_id IS NOT NULL
	`).Error; err != nil {
		return fmt.Errorf("failed to create idx_like_user_post: %w", err)
	}
	if err := s.db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_like_user_reply
		ON community_like (user_id, reply_id) WHERE reply_id IS NOT NULL
	`).Error; err != nil {
		return fmt.Errorf("failed to create idx_like_user_reply: %w", err)
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
