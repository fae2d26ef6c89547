package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/repos"
	"github.com/skillpath/skillpath-backend/internal/streak"
	"github.com/skillpath/skillpath-backend/internal/timewindow"
	"github.com/skillpath/skillpath-backend/internal/types"
)

// reminderTemplates are the daily reminder messages; one is picked at
// random per send.
var reminderTemplates = []struct {
	Title string
	Body  string
}{
	{"Time to learn", "A few minutes today keeps your streak alive."},
	{"Your roadmap is waiting", "Pick up where you left off and finish one more step."},
	{"Daily practice", "Small consistent sessions beat cramming. Jump back in!"},
	{"Keep the momentum", "You were making great progress. Continue your journey today."},
}

type UpdatePreferencesInput struct {
	DailyReminderEnabled  *bool   `json:"daily_reminder_enabled"`
	DailyReminderTime     *string `json:"daily_reminder_time"`
	StepCompletionEnabled *bool   `json:"step_completion_enabled"`
	StreakWarningEnabled  *bool   `json:"streak_warning_enabled"`
	WeeklyProgressEnabled *bool   `json:"weekly_progress_enabled"`
	DoNotDisturbStart     *string `json:"do_not_disturb_start"`
	DoNotDisturbEnd       *string `json:"do_not_disturb_end"`
	Timezone              *string `json:"timezone"`
	DeviceTimezone        *string `json:"device_timezone"`
}

type NotificationService interface {
	GetPreferences(ctx context.Context, userID uuid.UUID) (*types.NotificationPreference, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) (*types.NotificationPreference, error)
	RegisterPushToken(ctx context.Context, userID uuid.UUID, token, deviceType string) error
	History(ctx context.Context, userID uuid.UUID, limit int) ([]*types.NotificationLog, error)
	TriggerDailyReminder(ctx context.Context, userID uuid.UUID) (bool, error)

	// SendToUser writes the notification log entry (at most one per
	// user, type and day) and dispatches it to the user's active push
	// tokens. A duplicate for the day is a silent no-op.
	SendToUser(ctx context.Context, userID uuid.UUID, notificationType, title, body string, roadmapID, stepID *uuid.UUID) error
}

type notificationService struct {
	db        *gorm.DB
	log       *logger.Logger
	prefRepo  repos.NotificationPrefRepo
	logRepo   repos.NotificationLogRepo
	tokenRepo repos.PushTokenRepo
	push      PushClient
	now       func() time.Time
}

func NewNotificationService(
	db *gorm.DB,
	log *logger.Logger,
	prefRepo repos.NotificationPrefRepo,
	logRepo repos.NotificationLogRepo,
	tokenRepo repos.PushTokenRepo,
	push PushClient,
) NotificationService {
	return &notificationService{
		db:        db,
		log:       log.With("service", "NotificationService"),
		prefRepo:  prefRepo,
		logRepo:   logRepo,
		tokenRepo: tokenRepo,
		push:      push,
		now:       time.Now,
	}
}

// GetPreferences returns the user's row, creating it with defaults on
// first access.
func (ns *notificationService) GetPreferences(ctx context.Context, userID uuid.UUID) (*types.NotificationPreference, error) {
	pref, err := ns.prefRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification preferences: %w", err)
	}
	if pref != nil {
		return pref, nil
	}
	pref = &types.NotificationPreference{
		UserID:                userID,
		DailyReminderEnabled:  true,
		DailyReminderTime:     "09:00",
		StepCompletionEnabled: true,
		StreakWarningEnabled:  true,
		WeeklyProgressEnabled: true,
		DoNotDisturbStart:     "22:00",
		DoNotDisturbEnd:       "08:00",
		Timezone:              "UTC",
	}
	if _, err := ns.prefRepo.Create(ctx, nil, pref); err != nil {
		return nil, fmt.Errorf("failed to create notification preferences: %w", err)
	}
	return pref, nil
}

func (ns *notificationService) UpdatePreferences(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) (*types.NotificationPreference, error) {
	pref, err := ns.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	for name, field := range map[string]*string{
		"daily_reminder_time":  input.DailyReminderTime,
		"do_not_disturb_start": input.DoNotDisturbStart,
		"do_not_disturb_end":   input.DoNotDisturbEnd,
	} {
		if field != nil && !timewindow.Valid(*field) {
			return nil, fmt.Errorf("%w: %s must be HH:MM", ErrInvalidInput, name)
		}
	}
	if input.Timezone != nil {
		if _, err := time.LoadLocation(*input.Timezone); err != nil {
			return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, *input.Timezone)
		}
	}

	if input.DailyReminderEnabled != nil {
		pref.DailyReminderEnabled = *input.DailyReminderEnabled
	}
	if input.DailyReminderTime != nil {
		pref.DailyReminderTime = *input.DailyReminderTime
	}
	if input.StepCompletionEnabled != nil {
		pref.StepCompletionEnabled = *input.StepCompletionEnabled
	}
	if input.StreakWarningEnabled != nil {
		pref.StreakWarningEnabled = *input.StreakWarningEnabled
	}
	if input.WeeklyProgressEnabled != nil {
		pref.WeeklyProgressEnabled = *input.WeeklyProgressEnabled
	}
	if input.DoNotDisturbStart != nil {
		pref.DoNotDisturbStart = *input.DoNotDisturbStart
	}
	if input.DoNotDisturbEnd != nil {
		pref.DoNotDisturbEnd = *input.DoNotDisturbEnd
	}
	if input.Timezone != nil {
		pref.Timezone = *input.Timezone
	}
	if input.DeviceTimezone != nil {
		pref.DeviceTimezone = *input.DeviceTimezone
	}

	if err := ns.prefRepo.Save(ctx, nil, pref); err != nil {
		return nil, fmt.Errorf("failed to save notification preferences: %w", err)
	}
	return pref, nil
}

func (ns *notificationService) RegisterPushToken(ctx context.Context, userID uuid.UUID, token, deviceType string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidInput)
	}
	if deviceType == "" {
		deviceType = "unknown"
	}
	if _, err := ns.tokenRepo.Register(ctx, nil, &types.PushToken{
		UserID:     userID,
		Token:      token,
		DeviceType: deviceType,
		IsActive:   true,
	}); err != nil {
		return fmt.Errorf("failed to register push token: %w", err)
	}
	return nil
}

func (ns *notificationService) History(ctx context.Context, userID uuid.UUID, limit int) ([]*types.NotificationLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	entries, err := ns.logRepo.ListByUser(ctx, nil, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notification history: %w", err)
	}
	return entries, nil
}

// TriggerDailyReminder sends the caller their daily reminder outside the
// scheduler. Returns false when today's reminder was already sent.
func (ns *notificationService) TriggerDailyReminder(ctx context.Context, userID uuid.UUID) (bool, error) {
	tmpl := reminderTemplates[rand.Intn(len(reminderTemplates))]
	entry := &types.NotificationLog{
		UserID:           userID,
		NotificationType: types.NotificationDailyReminder,
		SentDate:         streak.DayKey(ns.now().UTC()),
		Title:            tmpl.Title,
		Body:             tmpl.Body,
		Status:           types.DeliveryStatusSent,
	}
	inserted, err := ns.logRepo.InsertIfAbsent(ctx, nil, entry)
	if err != nil {
		return false, fmt.Errorf("failed to record daily reminder: %w", err)
	}
	if !inserted {
		return false, nil
	}
	ns.dispatch(ctx, entry)
	return true, nil
}

func (ns *notificationService) SendToUser(ctx context.Context, userID uuid.UUID, notificationType, title, body string, roadmapID, stepID *uuid.UUID) error {
	pref, err := ns.GetPreferences(ctx, userID)
	if err != nil {
		return err
	}
	if !pref.EnabledFor(notificationType) {
		return nil
	}

	entry := &types.NotificationLog{
		UserID:           userID,
		NotificationType: notificationType,
		SentDate:         streak.DayKey(ns.now().UTC()),
		Title:            title,
		Body:             body,
		RoadmapID:        roadmapID,
		StepID:           stepID,
		Status:           types.DeliveryStatusSent,
	}
	inserted, err := ns.logRepo.InsertIfAbsent(ctx, nil, entry)
	if err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	if !inserted {
		return nil
	}
	ns.dispatch(ctx, entry)
	return nil
}

// dispatch pushes a logged notification to the user's active tokens.
// Failures mark the log row failed; dead tokens get deactivated.
func (ns *notificationService) dispatch(ctx context.Context, entry *types.NotificationLog) {
	if ns.push == nil {
		return
	}

	tokens, err := ns.tokenRepo.ListActiveByUser(ctx, nil, entry.UserID)
	if err != nil {
		ns.log.Warn("failed to list push tokens", "error", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	messages := make([]PushMessage, 0, len(tokens))
	for _, t := range tokens {
		messages = append(messages, PushMessage{
			To:    t.Token,
			Title: entry.Title,
			Body:  entry.Body,
			Sound: "default",
			Data:  map[string]any{"type": entry.NotificationType},
		})
	}

	tickets, err := ns.push.Send(ctx, messages)
	if err != nil {
		ns.log.Warn("push dispatch failed", "type", entry.NotificationType, "error", err)
		if mErr := ns.logRepo.MarkStatus(ctx, nil, entry.ID, types.DeliveryStatusFailed); mErr != nil {
			ns.log.Warn("failed to mark notification failed", "error", mErr)
		}
		return
	}

	failed := 0
	for i, ticket := range tickets {
		if i >= len(tokens) {
			break
		}
		if ticket.Status == "ok" {
			continue
		}
		failed++
		if ticket.DeviceNotRegistered() {
			if dErr := ns.tokenRepo.DeactivateByToken(ctx, nil, tokens[i].Token); dErr != nil {
				ns.log.Warn("failed to deactivate dead token", "error", dErr)
			}
		}
	}
	if failed == len(tickets) && failed > 0 {
		if mErr := ns.logRepo.MarkStatus(ctx, nil, entry.ID, types.DeliveryStatusFailed); mErr != nil {
			ns.log.Warn("failed to mark notification failed", "error", mErr)
		}
	}
}
