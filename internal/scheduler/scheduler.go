package scheduler

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/repos"
	"github.com/skillpath/skillpath-backend/internal/services"
	"github.com/skillpath/skillpath-backend/internal/timewindow"
	"github.com/skillpath/skillpath-backend/internal/types"
)

// streakWarningTimes are the local times at which streak warnings are
// evaluated.
var streakWarningTimes = map[string]bool{
	"12:00": true,
	"18:00": true,
	"21:00": true,
}

const (
	defaultDispatchLimit  = 8
	streakWarningDedupe   = 24 * time.Hour
	daySentinelNoActivity = 9999

	// Weekly summaries go out Sunday evening, local to each user.
	weeklyProgressDay    = time.Sunday
	weeklyProgressTime   = "18:00"
	weeklyProgressWindow = 7 * 24 * time.Hour
)

// Scheduler drives time-based notifications: per-user daily reminders
// at their preferred local time, streak warnings at fixed local hours
// and a weekly progress summary on Sunday evening, all outside the
// user's do-not-disturb window.
type Scheduler struct {
	log              *logger.Logger
	clock            Clock
	interval         time.Duration
	dispatchLimit    int
	prefRepo         repos.NotificationPrefRepo
	logRepo          repos.NotificationLogRepo
	gamificationRepo repos.GamificationRepo
	activityRepo     repos.UserActivityRepo
	notifier         services.NotificationService
}

func New(
	log *logger.Logger,
	clock Clock,
	prefRepo repos.NotificationPrefRepo,
	logRepo repos.NotificationLogRepo,
	gamificationRepo repos.GamificationRepo,
	activityRepo repos.UserActivityRepo,
	notifier services.NotificationService,
) *Scheduler {
	return &Scheduler{
		log:              log.With("component", "Scheduler"),
		clock:            clock,
		interval:         time.Minute,
		dispatchLimit:    defaultDispatchLimit,
		prefRepo:         prefRepo,
		logRepo:          logRepo,
		gamificationRepo: gamificationRepo,
		activityRepo:     activityRepo,
		notifier:         notifier,
	}
}

// Start runs the tick loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("Scheduler started", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick evaluates one scheduling pass at the clock's current time.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock.Now()
	s.runDailyReminders(ctx, now)
	s.runStreakWarnings(ctx, now)
	s.runWeeklyProgress(ctx, now)
}

func (s *Scheduler) runDailyReminders(ctx context.Context, now time.Time) {
	prefs, err := s.prefRepo.ListDailyReminderEnabled(ctx, nil)
	if err != nil {
		s.log.Error("failed to list reminder preferences", "error", err)
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(s.dispatchLimit)
	for _, pref := range prefs {
		pref := pref
		localHHMM := localTimeOfDay(now, pref.Timezone)
		if localHHMM != pref.DailyReminderTime {
			continue
		}
		inDND, err := timewindow.InWindow(localHHMM, pref.DoNotDisturbStart, pref.DoNotDisturbEnd)
		if err != nil {
			s.log.Warn("invalid do-not-disturb window, skipping user", "user_id", pref.UserID.String(), "error", err)
			continue
		}
		if inDND {
			continue
		}
		g.Go(func() error {
			sent, err := s.notifier.TriggerDailyReminder(ctx, pref.UserID)
			if err != nil {
				s.log.Warn("daily reminder failed", "user_id", pref.UserID.String(), "error", err)
				return nil
			}
			if sent {
				s.log.Debug("daily reminder sent", "user_id", pref.UserID.String())
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Scheduler) runStreakWarnings(ctx context.Context, now time.Time) {
	prefs, err := s.prefRepo.ListStreakWarningEnabled(ctx, nil)
	if err != nil {
		s.log.Error("failed to list streak warning preferences", "error", err)
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(s.dispatchLimit)
	for _, pref := range prefs {
		pref := pref
		localHHMM := localTimeOfDay(now, pref.Timezone)
		if !streakWarningTimes[localHHMM] {
			continue
		}
		inDND, err := timewindow.InWindow(localHHMM, pref.DoNotDisturbStart, pref.DoNotDisturbEnd)
		if err != nil || inDND {
			continue
		}
		g.Go(func() error {
			s.evaluateStreakWarning(ctx, pref, now)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Scheduler) evaluateStreakWarning(ctx context.Context, pref *types.NotificationPreference, now time.Time) {
	profile, err := s.gamificationRepo.GetOrCreateByUser(ctx, nil, pref.UserID)
	if err != nil {
		s.log.Warn("failed to load profile for streak warning", "user_id", pref.UserID.String(), "error", err)
		return
	}
	if profile.CurrentStreak <= 0 || profile.LastActivityDate == "" {
		return
	}

	days := daysSince(profile.LastActivityDate, now)
	var (
		warningType string
		title       string
		body        string
	)
	switch {
	case days == 1:
		warningType = types.NotificationStreakRisk
		title = "Your streak is at risk"
		body = fmt.Sprintf("You have a %d-day streak. Do one quick session today to keep it.", profile.CurrentStreak)
	case days >= 2:
		warningType = types.NotificationStreakLost
		title = "Your streak ended"
		body = "Streaks reset, but progress doesn't. Start a new one today."
	default:
		return
	}

	recent, err := s.logRepo.SentWithin(ctx, nil, pref.UserID, warningType, streakWarningDedupe, now)
	if err != nil {
		s.log.Warn("failed to check recent warnings", "user_id", pref.UserID.String(), "error", err)
		return
	}
	if recent {
		return
	}

	if err := s.notifier.SendToUser(ctx, pref.UserID, warningType, title, body, nil, nil); err != nil {
		s.log.Warn("streak warning failed", "user_id", pref.UserID.String(), "error", err)
	}
}

func (s *Scheduler) runWeeklyProgress(ctx context.Context, now time.Time) {
	prefs, err := s.prefRepo.ListWeeklyProgressEnabled(ctx, nil)
	if err != nil {
		s.log.Error("failed to list weekly progress preferences", "error", err)
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(s.dispatchLimit)
	for _, pref := range prefs {
		pref := pref
		local := localAt(now, pref.Timezone)
		localHHMM := timewindow.Format(local)
		if local.Weekday() != weeklyProgressDay || localHHMM != weeklyProgressTime {
			continue
		}
		inDND, err := timewindow.InWindow(localHHMM, pref.DoNotDisturbStart, pref.DoNotDisturbEnd)
		if err != nil || inDND {
			continue
		}
		g.Go(func() error {
			s.sendWeeklyProgress(ctx, pref, now)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Scheduler) sendWeeklyProgress(ctx context.Context, pref *types.NotificationPreference, now time.Time) {
	steps, err := s.activityRepo.ListSince(ctx, nil, pref.UserID, now.Add(-weeklyProgressWindow), types.ActivityStepCompleted)
	if err != nil {
		s.log.Warn("failed to load weekly activity", "user_id", pref.UserID.String(), "error", err)
		return
	}

	title := "Your week on SkillPath"
	var body string
	switch n := len(steps); {
	case n == 0:
		body = "A fresh week starts now. Complete one step to get going."
	case n == 1:
		body = "You completed 1 step this week. Keep the momentum going!"
	default:
		body = fmt.Sprintf("You completed %d steps this week. Keep the momentum going!", n)
	}

	if err := s.notifier.SendToUser(ctx, pref.UserID, types.NotificationWeeklyProgress, title, body, nil, nil); err != nil {
		s.log.Warn("weekly progress failed", "user_id", pref.UserID.String(), "error", err)
	}
}

// localAt converts now into the given zone, falling back to UTC when
// the zone is unknown.
func localAt(now time.Time, zone string) time.Time {
	loc, err := time.LoadLocation(zone)
	if err != nil || zone == "" {
		loc = time.UTC
	}
	return now.In(loc)
}

// localTimeOfDay formats now as "HH:MM" in the given zone, falling back
// to UTC when the zone is unknown.
func localTimeOfDay(now time.Time, zone string) string {
	return timewindow.Format(localAt(now, zone))
}

// daysSince returns whole calendar days between a "2006-01-02" date and
// now (UTC), or the no-activity sentinel when the date does not parse.
func daysSince(dayKey string, now time.Time) int {
	last, err := time.ParseInLocation("2006-01-02", dayKey, time.UTC)
	if err != nil {
		return daySentinelNoActivity
	}
	nowDay := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	return int(nowDay.Sub(last).Hours() / 24)
}
