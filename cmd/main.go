package main

import (
	"context"
	"fmt"
	"os"
	"time"

	redisclient "github.com/skillpath/skillpath-backend/internal/clients/redis"
	"github.com/skillpath/skillpath-backend/internal/db"
	httpserver "github.com/skillpath/skillpath-backend/internal/http"
	httpH "github.com/skillpath/skillpath-backend/internal/http/handlers"
	httpMW "github.com/skillpath/skillpath-backend/internal/http/middleware"
	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/observability"
	"github.com/skillpath/skillpath-backend/internal/repos"
	"github.com/skillpath/skillpath-backend/internal/scheduler"
	"github.com/skillpath/skillpath-backend/internal/services"
	"github.com/skillpath/skillpath-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	serverAddr := utils.GetEnv("SERVER_ADDR", ":8080", log)
	achievementsPath := utils.GetEnv("ACHIEVEMENTS_CONFIG_PATH", "configs/achievements.yaml", log)

	// Tracing
	shutdownOtel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "skillpath-backend",
		Environment: utils.GetEnv("ENVIRONMENT", "development", nil),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", nil),
	})
	if shutdownOtel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOtel(ctx)
		}()
	}

	// Database
	dbService, err := db.NewService(log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if err = dbService.AutoMigrateAll(); err != nil {
		log.Fatal("Database migration failed", "error", err)
	}
	gdb := dbService.DB()

	// Redis
	redisClient, err := redisclient.NewClient(log)
	if err != nil {
		log.Warn("Redis init failed, caching and rate limits degrade to pass-through", "error", err)
		redisClient = nil
	}

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(gdb, log)
	userTokenRepo := repos.NewUserTokenRepo(gdb, log)
	roadmapRepo := repos.NewRoadmapRepo(gdb, log)
	roadmapStepRepo := repos.NewRoadmapStepRepo(gdb, log)
	userActivityRepo := repos.NewUserActivityRepo(gdb, log)
	communityPostRepo := repos.NewCommunityPostRepo(gdb, log)
	communityReplyRepo := repos.NewCommunityReplyRepo(gdb, log)
	communityLikeRepo := repos.NewCommunityLikeRepo(gdb, log)
	notificationPrefRepo := repos.NewNotificationPrefRepo(gdb, log)
	notificationLogRepo := repos.NewNotificationLogRepo(gdb, log)
	pushTokenRepo := repos.NewPushTokenRepo(gdb, log)
	gamificationRepo := repos.NewGamificationRepo(gdb, log)
	achievementRepo := repos.NewAchievementRepo(gdb, log)
	skillRepo := repos.NewSkillRepo(gdb, log)

	// Achievement catalog
	if err := services.SeedAchievements(context.Background(), achievementRepo, achievementsPath); err != nil {
		log.Warn("Achievement catalog seeding failed", "error", err)
	}

	// Services
	log.Info("Setting up services from main...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Warn("Could not init BucketService, avatars disabled", "error", err)
	}
	var avatarService services.AvatarService
	if bucketService != nil {
		avatarService, err = services.NewAvatarService(log, userRepo, bucketService)
		if err != nil {
			log.Warn("Could not init AvatarService, avatars disabled", "error", err)
		}
	}
	aiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Warn("Could not init OpenAI client, generation falls back to templates", "error", err)
		aiClient = nil
	}
	pushClient := services.NewExpoPushClient(log)

	authService := services.NewAuthService(
		gdb, log, userRepo, userTokenRepo, avatarService,
		jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second,
		time.Duration(refreshTokenTTL)*time.Second,
	)
	userService := services.NewUserService(gdb, log, userRepo, userTokenRepo, redisClient)
	skillService := services.NewSkillService(log, aiClient, skillRepo)
	gamificationService := services.NewGamificationService(gdb, log, gamificationRepo, achievementRepo)
	roadmapService := services.NewRoadmapService(gdb, log, aiClient, roadmapRepo, roadmapStepRepo, userActivityRepo)
	notificationService := services.NewNotificationService(gdb, log, notificationPrefRepo, notificationLogRepo, pushTokenRepo, pushClient)
	progressService := services.NewProgressService(gdb, log, roadmapRepo, roadmapStepRepo, userActivityRepo, gamificationService, notificationService)
	rateLimitService := services.NewRateLimitService(log, redisClient)
	communityService := services.NewCommunityService(gdb, log, communityPostRepo, communityReplyRepo, communityLikeRepo, userActivityRepo, gamificationService, rateLimitService, redisClient)
	dashboardService := services.NewDashboardService(gdb, log, roadmapRepo, roadmapStepRepo, userActivityRepo, gamificationRepo, redisClient)
	premiumService := services.NewPremiumService(log, userRepo)

	// Scheduler
	reminderScheduler := scheduler.New(log, scheduler.SystemClock(), notificationPrefRepo, notificationLogRepo, gamificationRepo, userActivityRepo, notificationService)
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	go reminderScheduler.Start(schedulerCtx)

	// HTTP
	log.Info("Setting up HTTP server from main...")
	srv := httpserver.NewServer(httpserver.RouterConfig{
		Log:            log,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, authService),

		AuthHandler:         httpH.NewAuthHandler(log, authService, userService),
		UserHandler:         httpH.NewUserHandler(log, userService, dashboardService, roadmapService, gamificationService),
		SkillHandler:        httpH.NewSkillHandler(log, skillService),
		RoadmapHandler:      httpH.NewRoadmapHandler(log, roadmapService, progressService),
		CommunityHandler:    httpH.NewCommunityHandler(log, communityService, userService),
		NotificationHandler: httpH.NewNotificationHandler(log, notificationService),
		PremiumHandler:      httpH.NewPremiumHandler(log, premiumService, userService),
		HealthHandler:       httpH.NewHealthHandler(gdb),

		ServiceName: "skillpath-backend",
	})

	log.Info("Server listening", "addr", serverAddr)
	if err := srv.Run(serverAddr); err != nil {
		log.Fatal("Server stopped", "error", err)
	}
}
