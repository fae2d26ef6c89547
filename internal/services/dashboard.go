package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/skillpath/skillpath-backend/internal/clients/redis"
	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/repos"
	"github.com/skillpath/skillpath-backend/internal/streak"
	"github.com/skillpath/skillpath-backend/internal/types"
)

const (
	dashboardCacheTTL    = 60 * time.Second
	streakLookbackWindow = 30 * 24 * time.Hour
)

func dashboardCacheKey(userID uuid.UUID) string {
	return "dashboard:" + userID.String()
}

// Dashboard is the aggregate view behind GET /user/dashboard.
type Dashboard struct {
	ActiveRoadmaps  int64   `json:"active_roadmaps"`
	TotalRoadmaps   int64   `json:"total_roadmaps"`
	CompletedSteps  int64   `json:"completed_steps"`
	TotalSteps      int64   `json:"total_steps"`
	HoursInvested   int64   `json:"hours_invested"`
	CurrentStreak   int     `json:"current_streak"`
	DaysSinceActive int     `json:"days_since_active"`
	TotalXP         int     `json:"total_xp"`
	CurrentLevel    int     `json:"current_level"`
}

type DashboardService interface {
	GetDashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error)
}

type dashboardService struct {
	db               *gorm.DB
	log              *logger.Logger
	roadmapRepo      repos.RoadmapRepo
	stepRepo         repos.RoadmapStepRepo
	activityRepo     repos.UserActivityRepo
	gamificationRepo repos.GamificationRepo
	redis            redisclient.Client
	now              func() time.Time
}

func NewDashboardService(
	db *gorm.DB,
	log *logger.Logger,
	roadmapRepo repos.RoadmapRepo,
	stepRepo repos.RoadmapStepRepo,
	activityRepo repos.UserActivityRepo,
	gamificationRepo repos.GamificationRepo,
	redis redisclient.Client,
) DashboardService {
	return &dashboardService{
		db:               db,
		log:              log.With("service", "DashboardService"),
		roadmapRepo:      roadmapRepo,
		stepRepo:         stepRepo,
		activityRepo:     activityRepo,
		gamificationRepo: gamificationRepo,
		redis:            redis,
		now:              time.Now,
	}
}

func (ds *dashboardService) GetDashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	cacheKey := dashboardCacheKey(userID)
	if ds.redis != nil {
		var cached Dashboard
		hit, err := ds.redis.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			ds.log.Warn("dashboard cache read failed (ignored)", "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	now := ds.now().UTC()
	dash := &Dashboard{}

	active, err := ds.roadmapRepo.CountByUser(ctx, nil, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to count active roadmaps: %w", err)
	}
	dash.ActiveRoadmaps = active

	total, err := ds.roadmapRepo.CountByUser(ctx, nil, userID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to count roadmaps: %w", err)
	}
	dash.TotalRoadmaps = total

	counts, err := ds.stepRepo.CountByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count steps: %w", err)
	}
	dash.TotalSteps = counts.Total
	dash.CompletedSteps = counts.Completed

	hours, err := ds.stepRepo.SumCompletedHoursByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum invested hours: %w", err)
	}
	dash.HoursInvested = hours

	// Only completed steps count toward the display streak; uncompletes
	// and roadmap creation are logged but do not extend it.
	activityTimes, err := ds.activityRepo.TimesSince(ctx, nil, userID, now.Add(-streakLookbackWindow), types.ActivityStepCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity window: %w", err)
	}
	dash.CurrentStreak = streak.Current(activityTimes, now)
	dash.DaysSinceActive = streak.DaysSinceLast(activityTimes, now)

	profile, err := ds.gamificationRepo.GetOrCreateByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load gamification profile: %w", err)
	}
	dash.TotalXP = profile.TotalXP
	dash.CurrentLevel = profile.CurrentLevel

	if ds.redis != nil {
		if err := ds.redis.SetJSON(ctx, cacheKey, dash, dashboardCacheTTL); err != nil {
			ds.log.Warn("dashboard cache write failed (ignored)", "error", err)
		}
	}
	return dash, nil
}
