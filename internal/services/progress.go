package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/repos"
	"github.com/skillpath/skillpath-backend/internal/types"
)

// StepCompletionResult is returned by step complete/uncomplete calls.
type StepCompletionResult struct {
	Progress         RoadmapProgress `json:"progress"`
	RoadmapCompleted bool            `json:"roadmap_completed"`
	Award            *AwardResult    `json:"award,omitempty"`
}

type ProgressService interface {
	CompleteStep(ctx context.Context, userID, roadmapID, stepID uuid.UUID) (*StepCompletionResult, error)
	UncompleteStep(ctx context.Context, userID, roadmapID, stepID uuid.UUID) (*StepCompletionResult, error)
}

type progressService struct {
	db                  *gorm.DB
	log                 *logger.Logger
	roadmapRepo         repos.RoadmapRepo
	stepRepo            repos.RoadmapStepRepo
	activityRepo        repos.UserActivityRepo
	gamification        GamificationService
	notificationService NotificationService
	now                 func() time.Time
}

func NewProgressService(
	db *gorm.DB,
	log *logger.Logger,
	roadmapRepo repos.RoadmapRepo,
	stepRepo repos.RoadmapStepRepo,
	activityRepo repos.UserActivityRepo,
	gamification GamificationService,
	notificationService NotificationService,
) ProgressService {
	return &progressService{
		db:                  db,
		log:                 log.With("service", "ProgressService"),
		roadmapRepo:         roadmapRepo,
		stepRepo:            stepRepo,
		activityRepo:        activityRepo,
		gamification:        gamification,
		notificationService: notificationService,
		now:                 time.Now,
	}
}

// CompleteStep marks a step done, logs the activity, awards XP and, when
// it was the last open step, records roadmap completion. Completing an
// already-completed step is a no-op that returns current progress.
func (ps *progressService) CompleteStep(ctx context.Context, userID, roadmapID, stepID uuid.UUID) (*StepCompletionResult, error) {
	var (
		result      StepCompletionResult
		step        *types.RoadmapStep
		alreadyDone bool
	)

	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roadmap, err := ps.roadmapRepo.GetByIDForUser(ctx, tx, roadmapID, userID)
		if err != nil {
			return fmt.Errorf("failed to load roadmap: %w", err)
		}
		if roadmap == nil {
			return ErrNotFound
		}

		step, err = ps.stepRepo.GetByIDForRoadmap(ctx, tx, stepID, roadmapID)
		if err != nil {
			return fmt.Errorf("failed to load step: %w", err)
		}
		if step == nil {
			return ErrNotFound
		}
		if step.IsCompleted {
			alreadyDone = true
			counts, err := ps.stepRepo.CountByRoadmap(ctx, tx, roadmapID)
			if err != nil {
				return fmt.Errorf("failed to count steps: %w", err)
			}
			result.Progress = progressFor(int(counts.Total), int(counts.Completed))
			result.RoadmapCompleted = counts.Total > 0 && counts.Completed == counts.Total
			return nil
		}

		now := ps.now().UTC()
		if err := ps.stepRepo.SetCompleted(ctx, tx, stepID, true, &now); err != nil {
			return fmt.Errorf("failed to complete step: %w", err)
		}

		if _, err := ps.activityRepo.Create(ctx, tx, &types.UserActivity{
			UserID:       userID,
			ActivityType: types.ActivityStepCompleted,
			RoadmapID:    &roadmapID,
			StepID:       &stepID,
		}); err != nil {
			return fmt.Errorf("failed to log step completion: %w", err)
		}

		award, err := ps.gamification.AwardForActivity(ctx, tx, userID, types.ActivityStepCompleted)
		if err != nil {
			return err
		}
		result.Award = award

		counts, err := ps.stepRepo.CountByRoadmap(ctx, tx, roadmapID)
		if err != nil {
			return fmt.Errorf("failed to count steps: %w", err)
		}
		result.Progress = progressFor(int(counts.Total), int(counts.Completed))

		if counts.Total > 0 && counts.Completed == counts.Total {
			result.RoadmapCompleted = true
			if _, err := ps.activityRepo.Create(ctx, tx, &types.UserActivity{
				UserID:       userID,
				ActivityType: types.ActivityRoadmapCompleted,
				RoadmapID:    &roadmapID,
			}); err != nil {
				return fmt.Errorf("failed to log roadmap completion: %w", err)
			}
			if _, err := ps.gamification.AwardForActivity(ctx, tx, userID, types.ActivityRoadmapCompleted); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadyDone && ps.notificationService != nil {
		title := "Step completed"
		body := fmt.Sprintf("Nice work finishing %q. Keep the momentum going!", step.Title)
		if result.RoadmapCompleted {
			title = "Roadmap completed"
			body = "You finished every step of your roadmap. Time to celebrate!"
		}
		if err := ps.notificationService.SendToUser(ctx, userID, types.NotificationStepCompletion, title, body, &roadmapID, &stepID); err != nil {
			ps.log.Warn("step completion push failed (ignored)", "error", err)
		}
	}

	return &result, nil
}

// UncompleteStep reverts a completed step. Earned XP is kept; only the
// step state and activity log change.
func (ps *progressService) UncompleteStep(ctx context.Context, userID, roadmapID, stepID uuid.UUID) (*StepCompletionResult, error) {
	var result StepCompletionResult

	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roadmap, err := ps.roadmapRepo.GetByIDForUser(ctx, tx, roadmapID, userID)
		if err != nil {
			return fmt.Errorf("failed to load roadmap: %w", err)
		}
		if roadmap == nil {
			return ErrNotFound
		}

		step, err := ps.stepRepo.GetByIDForRoadmap(ctx, tx, stepID, roadmapID)
		if err != nil {
			return fmt.Errorf("failed to load step: %w", err)
		}
		if step == nil {
			return ErrNotFound
		}

		if step.IsCompleted {
			if err := ps.stepRepo.SetCompleted(ctx, tx, stepID, false, nil); err != nil {
				return fmt.Errorf("failed to uncomplete step: %w", err)
			}
			if _, err := ps.activityRepo.Create(ctx, tx, &types.UserActivity{
				UserID:       userID,
				ActivityType: types.ActivityStepUncompleted,
				RoadmapID:    &roadmapID,
				StepID:       &stepID,
			}); err != nil {
				return fmt.Errorf("failed to log step uncompletion: %w", err)
			}
		}

		counts, err := ps.stepRepo.CountByRoadmap(ctx, tx, roadmapID)
		if err != nil {
			return fmt.Errorf("failed to count steps: %w", err)
		}
		result.Progress = progressFor(int(counts.Total), int(counts.Completed))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
