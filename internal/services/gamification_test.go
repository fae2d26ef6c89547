package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/types"
)

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{499, 1},
		{500, 2},
		{1999, 2},
		{2000, 3},
		{4999, 3},
		{5000, 4},
		{100000, 4},
	}
	for _, c := range cases {
		if got := LevelForXP(c.xp); got != c.want {
			t.Fatalf("LevelForXP(%d) = %d, want %d", c.xp, got, c.want)
		}
	}
}

type fakeGamificationRepo struct {
	profile *types.GamificationProfile
	events  []*types.XPEvent
}

func (f *fakeGamificationRepo) GetOrCreateByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.GamificationProfile, error) {
	if f.profile == nil {
		f.profile = &types.GamificationProfile{UserID: userID, CurrentLevel: 1}
	}
	return f.profile, nil
}

func (f *fakeGamificationRepo) Save(ctx context.Context, tx *gorm.DB, profile *types.GamificationProfile) error {
	f.profile = profile
	return nil
}

func (f *fakeGamificationRepo) CreateXPEvent(ctx context.Context, tx *gorm.DB, event *types.XPEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeAchievementRepo struct {
	catalog  []*types.Achievement
	unlocked map[uuid.UUID]bool
}

func (f *fakeAchievementRepo) UpsertCatalog(ctx context.Context, tx *gorm.DB, achievements []*types.Achievement) error {
	f.catalog = achievements
	return nil
}

func (f *fakeAchievementRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Achievement, error) {
	return f.catalog, nil
}

func (f *fakeAchievementRepo) ListEarnedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserAchievement, error) {
	return nil, nil
}

func (f *fakeAchievementRepo) Unlock(ctx context.Context, tx *gorm.DB, userID, achievementID uuid.UUID) (bool, error) {
	if f.unlocked == nil {
		f.unlocked = map[uuid.UUID]bool{}
	}
	if f.unlocked[achievementID] {
		return false, nil
	}
	f.unlocked[achievementID] = true
	return true, nil
}

func newTestGamification(t *testing.T, now time.Time) (*gamificationService, *fakeGamificationRepo, *fakeAchievementRepo) {
	t.Helper()
	gr := &fakeGamificationRepo{}
	ar := &fakeAchievementRepo{}
	gs := &gamificationService{
		log:              testLogger(t).With("service", "GamificationService"),
		gamificationRepo: gr,
		achievementRepo:  ar,
		now:              func() time.Time { return now },
	}
	return gs, gr, ar
}

func TestAwardForActivityBumpsTotalsAndStreak(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	gs, gr, _ := newTestGamification(t, now)
	userID := uuid.New()

	res, err := gs.AwardForActivity(context.Background(), nil, userID, types.ActivityStepCompleted)
	if err != nil {
		t.Fatalf("AwardForActivity: %v", err)
	}
	if res.XPAwarded != XPStepCompleted || res.TotalXP != XPStepCompleted {
		t.Fatalf("got awarded=%d total=%d", res.XPAwarded, res.TotalXP)
	}
	if res.CurrentStreak != 1 {
		t.Fatalf("got streak=%d, want 1", res.CurrentStreak)
	}
	if gr.profile.StepsCompleted != 1 {
		t.Fatalf("got steps_completed=%d, want 1", gr.profile.StepsCompleted)
	}
	if gr.profile.LastActivityDate != "2025-03-10" {
		t.Fatalf("got last_activity_date=%q", gr.profile.LastActivityDate)
	}
}

func TestAwardForActivityStreakAdvancesOncePerDay(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	gs, _, _ := newTestGamification(t, now)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		res, err := gs.AwardForActivity(context.Background(), nil, userID, types.ActivityStepCompleted)
		if err != nil {
			t.Fatalf("AwardForActivity: %v", err)
		}
		if res.CurrentStreak != 1 {
			t.Fatalf("iteration %d: got streak=%d, want 1", i, res.CurrentStreak)
		}
	}
}

func TestAwardForActivityStreakContinuesNextDay(t *testing.T) {
	day1 := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	gs, gr, _ := newTestGamification(t, day1)
	userID := uuid.New()

	if _, err := gs.AwardForActivity(context.Background(), nil, userID, types.ActivityStudySession); err != nil {
		t.Fatalf("AwardForActivity day1: %v", err)
	}

	gs.now = func() time.Time { return day1.AddDate(0, 0, 1) }
	res, err := gs.AwardForActivity(context.Background(), nil, userID, types.ActivityStudySession)
	if err != nil {
		t.Fatalf("AwardForActivity day2: %v", err)
	}
	if res.CurrentStreak != 2 {
		t.Fatalf("got streak=%d, want 2", res.CurrentStreak)
	}
	if gr.profile.LongestStreak != 2 {
		t.Fatalf("got longest=%d, want 2", gr.profile.LongestStreak)
	}
}

func TestAwardForActivityDailyXPResetsOnNewDay(t *testing.T) {
	day1 := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	gs, gr, _ := newTestGamification(t, day1)
	userID := uuid.New()

	if _, err := gs.AwardForActivity(context.Background(), nil, userID, types.ActivityPostCreated); err != nil {
		t.Fatalf("AwardForActivity day1: %v", err)
	}
	if gr.profile.DailyXP != XPPostCreated {
		t.Fatalf("got daily=%d, want %d", gr.profile.DailyXP, XPPostCreated)
	}

	gs.now = func() time.Time { return day1.AddDate(0, 0, 1) }
	if _, err := gs.AwardForActivity(context.Background(), nil, userID, types.ActivityReplyCreated); err != nil {
		t.Fatalf("AwardForActivity day2: %v", err)
	}
	if gr.profile.DailyXP != XPReplyCreated {
		t.Fatalf("daily xp did not reset: got %d, want %d", gr.profile.DailyXP, XPReplyCreated)
	}
}

func TestAwardForActivityLevelUpBonusDoesNotCascade(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	gs, gr, _ := newTestGamification(t, now)
	userID := uuid.New()

	// Seed just below the level 2 threshold, then push over it.
	gr.profile = &types.GamificationProfile{UserID: userID, TotalXP: 480, CurrentLevel: 1}

	res, err := gs.AwardForActivity(context.Background(), nil, userID, types.ActivityStepCompleted)
	if err != nil {
		t.Fatalf("AwardForActivity: %v", err)
	}
	if !res.LeveledUp || res.Level != 2 {
		t.Fatalf("got leveledUp=%v level=%d, want true/2", res.LeveledUp, res.Level)
	}
	if res.TotalXP != 480+XPStepCompleted+XPLevelUpBonus {
		t.Fatalf("got total=%d", res.TotalXP)
	}
}

func TestAwardForActivityUnlocksAchievementOnce(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	gs, _, ar := newTestGamification(t, now)
	userID := uuid.New()

	ar.catalog = []*types.Achievement{{
		ID:        uuid.New(),
		Code:      "first_step",
		Name:      "First Step",
		Condition: types.ConditionStepsCompleted,
		Threshold: 1,
		XPReward:  25,
	}}

	res, err := gs.AwardForActivity(context.Background(), nil, userID, types.ActivityStepCompleted)
	if err != nil {
		t.Fatalf("AwardForActivity: %v", err)
	}
	if len(res.UnlockedAchievements) != 1 || res.UnlockedAchievements[0].Code != "first_step" {
		t.Fatalf("got unlocked=%v", res.UnlockedAchievements)
	}
	if res.TotalXP != XPStepCompleted+25 {
		t.Fatalf("got total=%d, want %d", res.TotalXP, XPStepCompleted+25)
	}

	// Second award must not unlock it again.
	res2, err := gs.AwardForActivity(context.Background(), nil, userID, types.ActivityStepCompleted)
	if err != nil {
		t.Fatalf("AwardForActivity second: %v", err)
	}
	if len(res2.UnlockedAchievements) != 0 {
		t.Fatalf("achievement unlocked twice: %v", res2.UnlockedAchievements)
	}
}
