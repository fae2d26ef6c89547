package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/services"
	"github.com/skillpath/skillpath-backend/internal/types"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

type fakePrefRepo struct {
	prefs []*types.NotificationPreference
}

func (f *fakePrefRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.NotificationPreference, error) {
	for _, p := range f.prefs {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePrefRepo) Create(ctx context.Context, tx *gorm.DB, pref *types.NotificationPreference) (*types.NotificationPreference, error) {
	f.prefs = append(f.prefs, pref)
	return pref, nil
}

func (f *fakePrefRepo) Save(ctx context.Context, tx *gorm.DB, pref *types.NotificationPreference) error {
	return nil
}

func (f *fakePrefRepo) ListDailyReminderEnabled(ctx context.Context, tx *gorm.DB) ([]*types.NotificationPreference, error) {
	var out []*types.NotificationPreference
	for _, p := range f.prefs {
		if p.DailyReminderEnabled {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePrefRepo) ListStreakWarningEnabled(ctx context.Context, tx *gorm.DB) ([]*types.NotificationPreference, error) {
	var out []*types.NotificationPreference
	for _, p := range f.prefs {
		if p.StreakWarningEnabled {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePrefRepo) ListWeeklyProgressEnabled(ctx context.Context, tx *gorm.DB) ([]*types.NotificationPreference, error) {
	var out []*types.NotificationPreference
	for _, p := range f.prefs {
		if p.WeeklyProgressEnabled {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeActivityRepo struct {
	activities []*types.UserActivity
}

func (f *fakeActivityRepo) Create(ctx context.Context, tx *gorm.DB, activity *types.UserActivity) (*types.UserActivity, error) {
	f.activities = append(f.activities, activity)
	return activity, nil
}

func (f *fakeActivityRepo) ListSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, activityTypes ...string) ([]*types.UserActivity, error) {
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

func (f *fakeActivityRepo) TimesSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, activityTypes ...string) ([]time.Time, error) {
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

type fakeLogRepo struct {
	recentTypes map[string]bool
}

func (f *fakeLogRepo) InsertIfAbsent(ctx context.Context, tx *gorm.DB, entry *types.NotificationLog) (bool, error) {
	return true, nil
}

func (f *fakeLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.NotificationLog) (*types.NotificationLog, error) {
	return entry, nil
}

func (f *fakeLogRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.NotificationLog, error) {
	return nil, nil
}

func (f *fakeLogRepo) SentWithin(ctx context.Context, tx *gorm.DB, userID uuid.UUID, notificationType string, window time.Duration, now time.Time) (bool, error) {
	return f.recentTypes[notificationType], nil
}

func (f *fakeLogRepo) MarkStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	return nil
}

type fakeGamificationRepo struct {
	profiles map[uuid.UUID]*types.GamificationProfile
}

func (f *fakeGamificationRepo) GetOrCreateByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.GamificationProfile, error) {
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return &types.GamificationProfile{UserID: userID, CurrentLevel: 1}, nil
}

func (f *fakeGamificationRepo) Save(ctx context.Context, tx *gorm.DB, profile *types.GamificationProfile) error {
	return nil
}

func (f *fakeGamificationRepo) CreateXPEvent(ctx context.Context, tx *gorm.DB, event *types.XPEvent) error {
	return nil
}

type sentNotification struct {
	UserID uuid.UUID
	Type   string
	Body   string
}

type fakeNotifier struct {
	reminders []uuid.UUID
	sent      []sentNotification
}

func (f *fakeNotifier) GetPreferences(ctx context.Context, userID uuid.UUID) (*types.NotificationPreference, error) {
	return nil, nil
}

func (f *fakeNotifier) UpdatePreferences(ctx context.Context, userID uuid.UUID, input services.UpdatePreferencesInput) (*types.NotificationPreference, error) {
	return nil, nil
}

func (f *fakeNotifier) RegisterPushToken(ctx context.Context, userID uuid.UUID, token, deviceType string) error {
	return nil
}

func (f *fakeNotifier) History(ctx context.Context, userID uuid.UUID, limit int) ([]*types.NotificationLog, error) {
	return nil, nil
}

func (f *fakeNotifier) TriggerDailyReminder(ctx context.Context, userID uuid.UUID) (bool, error) {
	f.reminders = append(f.reminders, userID)
	return true, nil
}

func (f *fakeNotifier) SendToUser(ctx context.Context, userID uuid.UUID, notificationType, title, body string, roadmapID, stepID *uuid.UUID) error {
	f.sent = append(f.sent, sentNotification{UserID: userID, Type: notificationType, Body: body})
	return nil
}

func newTestScheduler(t *testing.T, now time.Time) (*Scheduler, *fakePrefRepo, *fakeLogRepo, *fakeGamificationRepo, *fakeActivityRepo, *fakeNotifier) {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	pr := &fakePrefRepo{}
	lr := &fakeLogRepo{recentTypes: map[string]bool{}}
	gr := &fakeGamificationRepo{profiles: map[uuid.UUID]*types.GamificationProfile{}}
	ar := &fakeActivityRepo{}
	nf := &fakeNotifier{}
	return New(log, &fakeClock{now: now}, pr, lr, gr, ar, nf), pr, lr, gr, ar, nf
}

func prefWith(userID uuid.UUID) *types.NotificationPreference {
	return &types.NotificationPreference{
		UserID:               userID,
		DailyReminderEnabled: true,
		DailyReminderTime:    "09:00",
		StreakWarningEnabled: true,
		DoNotDisturbStart:    "22:00",
		DoNotDisturbEnd:      "08:00",
		Timezone:             "UTC",
	}
}

func TestTickSendsReminderAtPreferredTime(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s, pr, _, _, _, nf := newTestScheduler(t, now)

	userID := uuid.New()
	pr.prefs = append(pr.prefs, prefWith(userID))

	s.Tick(context.Background())
	if len(nf.reminders) != 1 || nf.reminders[0] != userID {
		t.Fatalf("got reminders=%v, want [%s]", nf.reminders, userID)
	}
}

func TestTickSkipsReminderAtOtherTimes(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 1, 0, 0, time.UTC)
	s, pr, _, _, _, nf := newTestScheduler(t, now)

	pr.prefs = append(pr.prefs, prefWith(uuid.New()))

	s.Tick(context.Background())
	if len(nf.reminders) != 0 {
		t.Fatalf("reminder sent at wrong time: %v", nf.reminders)
	}
}

func TestTickRespectsDoNotDisturb(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	s, pr, _, _, _, nf := newTestScheduler(t, now)

	pref := prefWith(uuid.New())
	pref.DailyReminderTime = "23:30"
	pr.prefs = append(pr.prefs, pref)

	s.Tick(context.Background())
	if len(nf.reminders) != 0 {
		t.Fatalf("reminder sent inside do-not-disturb window")
	}
}

func TestTickUsesUserTimezone(t *testing.T) {
	// 14:00 UTC is 09:00 in New York during EST.
	now := time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC)
	s, pr, _, _, _, nf := newTestScheduler(t, now)

	pref := prefWith(uuid.New())
	pref.Timezone = "America/New_York"
	pr.prefs = append(pr.prefs, pref)

	s.Tick(context.Background())
	if len(nf.reminders) != 1 {
		t.Fatalf("reminder not sent for timezone-local preference time")
	}
}

func TestTickStreakRiskAfterOneIdleDay(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s, pr, _, gr, _, nf := newTestScheduler(t, now)

	userID := uuid.New()
	pref := prefWith(userID)
	pref.DailyReminderEnabled = false
	pr.prefs = append(pr.prefs, pref)
	gr.profiles[userID] = &types.GamificationProfile{
		UserID:           userID,
		CurrentStreak:    5,
		LastActivityDate: "2025-03-09",
	}

	s.Tick(context.Background())
	if len(nf.sent) != 1 || nf.sent[0].Type != types.NotificationStreakRisk {
		t.Fatalf("got sent=%v, want one streak_risk", nf.sent)
	}
}

func TestTickStreakLostAfterTwoIdleDays(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	s, pr, _, gr, _, nf := newTestScheduler(t, now)

	userID := uuid.New()
	pref := prefWith(userID)
	pref.DailyReminderEnabled = false
	pr.prefs = append(pr.prefs, pref)
	gr.profiles[userID] = &types.GamificationProfile{
		UserID:           userID,
		CurrentStreak:    5,
		LastActivityDate: "2025-03-07",
	}

	s.Tick(context.Background())
	if len(nf.sent) != 1 || nf.sent[0].Type != types.NotificationStreakLost {
		t.Fatalf("got sent=%v, want one streak_lost", nf.sent)
	}
}

func TestTickNoStreakWarningWhenActiveToday(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s, pr, _, gr, _, nf := newTestScheduler(t, now)

	userID := uuid.New()
	pref := prefWith(userID)
	pref.DailyReminderEnabled = false
	pr.prefs = append(pr.prefs, pref)
	gr.profiles[userID] = &types.GamificationProfile{
		UserID:           userID,
		CurrentStreak:    5,
		LastActivityDate: "2025-03-10",
	}

	s.Tick(context.Background())
	if len(nf.sent) != 0 {
		t.Fatalf("warning sent for user active today: %v", nf.sent)
	}
}

func TestTickNoStreakWarningWithoutStreak(t *testing.T) {
	now := time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC)
	s, pr, _, gr, _, nf := newTestScheduler(t, now)

	userID := uuid.New()
	pref := prefWith(userID)
	pref.DailyReminderEnabled = false
	pr.prefs = append(pr.prefs, pref)
	gr.profiles[userID] = &types.GamificationProfile{
		UserID:           userID,
		CurrentStreak:    0,
		LastActivityDate: "2025-03-08",
	}

	s.Tick(context.Background())
	if len(nf.sent) != 0 {
		t.Fatalf("warning sent for user with no streak: %v", nf.sent)
	}
}

func TestTickStreakWarningDedupesWithin24h(t *testing.T) {
	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	s, pr, lr, gr, _, nf := newTestScheduler(t, now)

	userID := uuid.New()
	pref := prefWith(userID)
	pref.DailyReminderEnabled = false
	pr.prefs = append(pr.prefs, pref)
	gr.profiles[userID] = &types.GamificationProfile{
		UserID:           userID,
		CurrentStreak:    3,
		LastActivityDate: "2025-03-09",
	}
	lr.recentTypes[types.NotificationStreakRisk] = true

	s.Tick(context.Background())
	if len(nf.sent) != 0 {
		t.Fatalf("duplicate streak warning sent: %v", nf.sent)
	}
}

func weeklyPref(userID uuid.UUID) *types.NotificationPreference {
	pref := prefWith(userID)
	pref.DailyReminderEnabled = false
	pref.StreakWarningEnabled = false
	pref.WeeklyProgressEnabled = true
	return pref
}

func TestTickWeeklyProgressOnSundayEvening(t *testing.T) {
	// 2025-03-09 is a Sunday.
	now := time.Date(2025, 3, 9, 18, 0, 0, 0, time.UTC)
	s, pr, _, _, ar, nf := newTestScheduler(t, now)

	userID := uuid.New()
	pr.prefs = append(pr.prefs, weeklyPref(userID))
	for i := 0; i < 3; i++ {
		ar.activities = append(ar.activities, &types.UserActivity{
			UserID:       userID,
			ActivityType: types.ActivityStepCompleted,
			CreatedAt:    now.Add(-time.Duration(i+1) * 24 * time.Hour),
		})
	}
	ar.activities = append(ar.activities,
		&types.UserActivity{
			UserID:       userID,
			ActivityType: types.ActivityStepUncompleted,
			CreatedAt:    now.Add(-time.Hour),
		},
		&types.UserActivity{
			UserID:       userID,
			ActivityType: types.ActivityStepCompleted,
			CreatedAt:    now.Add(-9 * 24 * time.Hour),
		},
	)

	s.Tick(context.Background())
	if len(nf.sent) != 1 || nf.sent[0].Type != types.NotificationWeeklyProgress {
		t.Fatalf("got sent=%v, want one weekly_progress", nf.sent)
	}
	if want := "You completed 3 steps this week. Keep the momentum going!"; nf.sent[0].Body != want {
		t.Fatalf("got body %q, want %q", nf.sent[0].Body, want)
	}
}

func TestTickWeeklyProgressSkippedOffSchedule(t *testing.T) {
	cases := map[string]time.Time{
		"monday evening":   time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC),
		"sunday afternoon": time.Date(2025, 3, 9, 17, 59, 0, 0, time.UTC),
	}
	for name, now := range cases {
		s, pr, _, _, _, nf := newTestScheduler(t, now)
		pr.prefs = append(pr.prefs, weeklyPref(uuid.New()))

		s.Tick(context.Background())
		if len(nf.sent) != 0 {
			t.Fatalf("%s: weekly summary sent off schedule: %v", name, nf.sent)
		}
	}
}

func TestTickWeeklyProgressUsesUserTimezone(t *testing.T) {
	// 23:00 UTC Sunday is 18:00 in New York during EST.
	now := time.Date(2025, 3, 2, 23, 0, 0, 0, time.UTC)
	s, pr, _, _, _, nf := newTestScheduler(t, now)

	pref := weeklyPref(uuid.New())
	pref.Timezone = "America/New_York"
	pr.prefs = append(pr.prefs, pref)

	s.Tick(context.Background())
	if len(nf.sent) != 1 || nf.sent[0].Type != types.NotificationWeeklyProgress {
		t.Fatalf("got sent=%v, want one weekly_progress", nf.sent)
	}
	if want := "A fresh week starts now. Complete one step to get going."; nf.sent[0].Body != want {
		t.Fatalf("got body %q, want %q", nf.sent[0].Body, want)
	}
}
