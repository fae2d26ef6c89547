package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/repos"
	"github.com/skillpath/skillpath-backend/internal/streak"
	"github.com/skillpath/skillpath-backend/internal/types"
)

// XP awarded per activity type.
const (
	XPStepCompleted    = 50
	XPPostCreated      = 20
	XPReplyCreated     = 10
	XPRoadmapCompleted = 200
	XPStudySession     = 30

	XPLevelUpBonus = 100
)

const (
	xpEventLevelUpBonus      = "level_up_bonus"
	xpEventAchievementReward = "achievement_reward"
)

// levelThresholds maps cumulative XP to levels 1..4.
var levelThresholds = []int{0, 500, 2000, 5000}

// LevelForXP returns the level for a cumulative XP total.
func LevelForXP(totalXP int) int {
	level := 1
	for i, threshold := range levelThresholds {
		if totalXP >= threshold {
			level = i + 1
		}
	}
	return level
}

// xpForActivity maps activity types to their XP award; unknown types
// award nothing.
func xpForActivity(activityType string) int {
	switch activityType {
	case types.ActivityStepCompleted:
		return XPStepCompleted
	case types.ActivityPostCreated:
		return XPPostCreated
	case types.ActivityReplyCreated:
		return XPReplyCreated
	case types.ActivityRoadmapCompleted:
		return XPRoadmapCompleted
	case types.ActivityStudySession:
		return XPStudySession
	default:
		return 0
	}
}

// AwardResult reports what a single XP award changed.
type AwardResult struct {
	XPAwarded            int                  `json:"xp_awarded"`
	TotalXP              int                  `json:"total_xp"`
	Level                int                  `json:"level"`
	LeveledUp            bool                 `json:"leveled_up"`
	CurrentStreak        int                  `json:"current_streak"`
	UnlockedAchievements []*types.Achievement `json:"unlocked_achievements,omitempty"`
}

// ProfileView is the gamification block of the user profile endpoint.
type ProfileView struct {
	TotalXP           int                  `json:"total_xp"`
	CurrentLevel      int                  `json:"current_level"`
	NextLevelXP       int                  `json:"next_level_xp"`
	DailyXP           int                  `json:"daily_xp"`
	CurrentStreak     int                  `json:"current_streak"`
	LongestStreak     int                  `json:"longest_streak"`
	StepsCompleted    int                  `json:"steps_completed"`
	PostsCreated      int                  `json:"posts_created"`
	RepliesCreated    int                  `json:"replies_created"`
	RoadmapsCompleted int                  `json:"roadmaps_completed"`
	Achievements      []*types.Achievement `json:"achievements"`
}

type GamificationService interface {
	AwardForActivity(ctx context.Context, tx *gorm.DB, userID uuid.UUID, activityType string) (*AwardResult, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileView, error)
}

type gamificationService struct {
	db               *gorm.DB
	log              *logger.Logger
	gamificationRepo repos.GamificationRepo
	achievementRepo  repos.AchievementRepo
	now              func() time.Time
}

func NewGamificationService(
	db *gorm.DB,
	log *logger.Logger,
	gamificationRepo repos.GamificationRepo,
	achievementRepo repos.AchievementRepo,
) GamificationService {
	return &gamificationService{
		db:               db,
		log:              log.With("service", "GamificationService"),
		gamificationRepo: gamificationRepo,
		achievementRepo:  achievementRepo,
		now:              time.Now,
	}
}

// AwardForActivity applies the XP for one logged activity: appends an
// XPEvent, bumps totals and counters, advances the streak at most once
// per calendar day and recomputes the level. A level-up grants a flat
// bonus that never cascades into another level-up check.
func (gs *gamificationService) AwardForActivity(ctx context.Context, tx *gorm.DB, userID uuid.UUID, activityType string) (*AwardResult, error) {
	amount := xpForActivity(activityType)
	today := gs.now().UTC()
	todayKey := streak.DayKey(today)

	profile, err := gs.gamificationRepo.GetOrCreateByUser(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load gamification profile: %w", err)
	}

	prevLevel := profile.CurrentLevel

	if profile.DailyXPDate != todayKey {
		profile.DailyXP = 0
		profile.DailyXPDate = todayKey
	}

	profile.TotalXP += amount
	profile.DailyXP += amount

	profile.CurrentStreak = streak.Advance(profile.CurrentStreak, profile.LastActivityDate, today)
	if profile.CurrentStreak > profile.LongestStreak {
		profile.LongestStreak = profile.CurrentStreak
	}
	profile.LastActivityDate = todayKey

	switch activityType {
	case types.ActivityStepCompleted:
		profile.StepsCompleted++
	case types.ActivityPostCreated:
		profile.PostsCreated++
	case types.ActivityReplyCreated:
		profile.RepliesCreated++
	case types.ActivityRoadmapCompleted:
		profile.RoadmapsCompleted++
	}

	if amount > 0 {
		if err := gs.gamificationRepo.CreateXPEvent(ctx, tx, &types.XPEvent{
			UserID:    userID,
			EventType: activityType,
			Amount:    amount,
		}); err != nil {
			return nil, fmt.Errorf("failed to record xp event: %w", err)
		}
	}

	leveledUp := false
	if newLevel := LevelForXP(profile.TotalXP); newLevel > prevLevel {
		leveledUp = true
		profile.CurrentLevel = newLevel
		profile.TotalXP += XPLevelUpBonus
		profile.DailyXP += XPLevelUpBonus
		if err := gs.gamificationRepo.CreateXPEvent(ctx, tx, &types.XPEvent{
			UserID:    userID,
			EventType: xpEventLevelUpBonus,
			Amount:    XPLevelUpBonus,
		}); err != nil {
			return nil, fmt.Errorf("failed to record level-up bonus: %w", err)
		}
	} else {
		profile.CurrentLevel = LevelForXP(profile.TotalXP)
	}

	unlocked, err := gs.checkAchievements(ctx, tx, profile)
	if err != nil {
		return nil, err
	}

	if err := gs.gamificationRepo.Save(ctx, tx, profile); err != nil {
		return nil, fmt.Errorf("failed to save gamification profile: %w", err)
	}

	return &AwardResult{
		XPAwarded:            amount,
		TotalXP:              profile.TotalXP,
		Level:                profile.CurrentLevel,
		LeveledUp:            leveledUp,
		CurrentStreak:        profile.CurrentStreak,
		UnlockedAchievements: unlocked,
	}, nil
}

// checkAchievements unlocks every catalog entry whose condition is now
// met. Reward XP is added to the total but does not trigger another
// level-up bonus.
func (gs *gamificationService) checkAchievements(ctx context.Context, tx *gorm.DB, profile *types.GamificationProfile) ([]*types.Achievement, error) {
	catalog, err := gs.achievementRepo.ListAll(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	var unlocked []*types.Achievement
	for _, a := range catalog {
		if profile.MetricFor(a.Condition) < a.Threshold {
			continue
		}
		fresh, err := gs.achievementRepo.Unlock(ctx, tx, profile.UserID, a.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to unlock achievement %s: %w", a.Code, err)
		}
		if !fresh {
			continue
		}
		unlocked = append(unlocked, a)
		if a.XPReward > 0 {
			profile.TotalXP += a.XPReward
			profile.DailyXP += a.XPReward
			if err := gs.gamificationRepo.CreateXPEvent(ctx, tx, &types.XPEvent{
				UserID:    profile.UserID,
				EventType: xpEventAchievementReward,
				Amount:    a.XPReward,
			}); err != nil {
				return nil, fmt.Errorf("failed to record achievement reward: %w", err)
			}
		}
		gs.log.Info("Achievement unlocked", "user_id", profile.UserID.String(), "code", a.Code)
	}
	if len(unlocked) > 0 {
		profile.CurrentLevel = LevelForXP(profile.TotalXP)
	}
	return unlocked, nil
}

func (gs *gamificationService) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	profile, err := gs.gamificationRepo.GetOrCreateByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load gamification profile: %w", err)
	}

	earned, err := gs.achievementRepo.ListEarnedByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list earned achievements: %w", err)
	}
	achievements := make([]*types.Achievement, 0, len(earned))
	for _, ua := range earned {
		if ua.Achievement != nil {
			achievements = append(achievements, ua.Achievement)
		}
	}

	return &ProfileView{
		TotalXP:           profile.TotalXP,
		CurrentLevel:      profile.CurrentLevel,
		NextLevelXP:       nextLevelXP(profile.CurrentLevel),
		DailyXP:           profile.DailyXP,
		CurrentStreak:     profile.CurrentStreak,
		LongestStreak:     profile.LongestStreak,
		StepsCompleted:    profile.StepsCompleted,
		PostsCreated:      profile.PostsCreated,
		RepliesCreated:    profile.RepliesCreated,
		RoadmapsCompleted: profile.RoadmapsCompleted,
		Achievements:      achievements,
	}, nil
}

// nextLevelXP returns the cumulative XP needed for the next level, or 0
// at the level cap.
func nextLevelXP(level int) int {
	if level >= len(levelThresholds) {
		return 0
	}
	return levelThresholds[level]
}
