package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/repos"
	"github.com/skillpath/skillpath-backend/internal/types"
)

type fakeRoadmapCounter struct {
	active int64
	total  int64
}

func (f *fakeRoadmapCounter) Create(ctx context.Context, tx *gorm.DB, roadmap *types.Roadmap) (*types.Roadmap, error) {
	return roadmap, nil
}

func (f *fakeRoadmapCounter) GetByIDForUser(ctx context.Context, tx *gorm.DB, roadmapID, userID uuid.UUID) (*types.Roadmap, error) {
	return nil, nil
}

func (f *fakeRoadmapCounter) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Roadmap, error) {
	return nil, nil
}

func (f *fakeRoadmapCounter) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, activeOnly bool) (int64, error) {
	if activeOnly {
		return f.active, nil
	}
	return f.total, nil
}

func (f *fakeRoadmapCounter) Deactivate(ctx context.Context, tx *gorm.DB, roadmapID, userID uuid.UUID) error {
	return nil
}

type fakeStepCounter struct {
	counts repos.StepCounts
	hours  int64
}

func (f *fakeStepCounter) CreateBatch(ctx context.Context, tx *gorm.DB, steps []*types.RoadmapStep) ([]*types.RoadmapStep, error) {
	return steps, nil
}

func (f *fakeStepCounter) GetByIDForRoadmap(ctx context.Context, tx *gorm.DB, stepID, roadmapID uuid.UUID) (*types.RoadmapStep, error) {
	return nil, nil
}

func (f *fakeStepCounter) ListByRoadmap(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID) ([]*types.RoadmapStep, error) {
	return nil, nil
}

func (f *fakeStepCounter) SetCompleted(ctx context.Context, tx *gorm.DB, stepID uuid.UUID, completed bool, at *time.Time) error {
	return nil
}

func (f *fakeStepCounter) CountByRoadmap(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID) (repos.StepCounts, error) {
	return f.counts, nil
}

func (f *fakeStepCounter) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (repos.StepCounts, error) {
	return f.counts, nil
}

func (f *fakeStepCounter) SumCompletedHoursByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	return f.hours, nil
}

// fakeActivityLog filters by activity type the way the SQL repo does.
type fakeActivityLog struct {
	activities []*types.UserActivity
}

func (f *fakeActivityLog) Create(ctx context.Context, tx *gorm.DB, activity *types.UserActivity) (*types.UserActivity, error) {
	f.activities = append(f.activities, activity)
	return activity, nil
}

func (f *fakeActivityLog) ListSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, activityTypes ...string) ([]*types.UserActivity, error) {
	var out []*types.UserActivity
	for _, a := range f.activities {
		if a.UserID != userID || a.CreatedAt.Before(since) {
			continue
		}
		if len(activityTypes) > 0 {
			match := false
			for _, at := range activityTypes {
				if a.ActivityType == at {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeActivityLog) TimesSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, activityTypes ...string) ([]time.Time, error) {
	activities, err := f.ListSince(ctx, tx, userID, since, activityTypes...)
	if err != nil {
		return nil, err
	}
	times := make([]time.Time, 0, len(activities))
	for _, a := range activities {
		times = append(times, a.CreatedAt)
	}
	return times, nil
}

func newTestDashboard(t *testing.T, activities *fakeActivityLog, now time.Time) DashboardService {
	t.Helper()
	return &dashboardService{
		log:              testLogger(t).With("service", "DashboardService"),
		roadmapRepo:      &fakeRoadmapCounter{active: 1, total: 2},
		stepRepo:         &fakeStepCounter{counts: repos.StepCounts{Total: 10, Completed: 4}, hours: 12},
		activityRepo:     activities,
		gamificationRepo: &fakeGamificationRepo{},
		now:              func() time.Time { return now },
	}
}

func TestDashboardStreakIgnoresNonQualifyingActivity(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	userID := uuid.New()

	activities := &fakeActivityLog{activities: []*types.UserActivity{
		{UserID: userID, ActivityType: types.ActivityStepUncompleted, CreatedAt: now.Add(-time.Hour)},
		{UserID: userID, ActivityType: types.ActivityRoadmapCreated, CreatedAt: now.Add(-2 * time.Hour)},
	}}
	ds := newTestDashboard(t, activities, now)

	dash, err := ds.GetDashboard(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if dash.CurrentStreak != 0 {
		t.Fatalf("got streak %d from non-step activity, want 0", dash.CurrentStreak)
	}
}

func TestDashboardStreakCountsCompletedSteps(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	userID := uuid.New()

	activities := &fakeActivityLog{activities: []*types.UserActivity{
		{UserID: userID, ActivityType: types.ActivityStepCompleted, CreatedAt: now.Add(-time.Hour)},
		{UserID: userID, ActivityType: types.ActivityStepCompleted, CreatedAt: now.Add(-25 * time.Hour)},
		{UserID: userID, ActivityType: types.ActivityStepUncompleted, CreatedAt: now.Add(-30 * time.Minute)},
	}}
	ds := newTestDashboard(t, activities, now)

	dash, err := ds.GetDashboard(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if dash.CurrentStreak != 2 {
		t.Fatalf("got streak %d, want 2", dash.CurrentStreak)
	}
	if dash.TotalSteps != 10 || dash.CompletedSteps != 4 || dash.HoursInvested != 12 {
		t.Fatalf("unexpected step aggregates: %+v", dash)
	}
}
