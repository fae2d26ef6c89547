package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/repos"
	"github.com/skillpath/skillpath-backend/internal/types"
)

type CreateRoadmapInput struct {
	SkillName       string
	DifficultyLevel string
	WeeklyHours     int
	TargetWeeks     int
}

// RoadmapDetail is a roadmap with its ordered steps and progress.
type RoadmapDetail struct {
	Roadmap  *types.Roadmap       `json:"roadmap"`
	Steps    []*types.RoadmapStep `json:"steps"`
	Progress RoadmapProgress      `json:"progress"`
}

type RoadmapProgress struct {
	TotalSteps      int     `json:"total_steps"`
	CompletedSteps  int     `json:"completed_steps"`
	ProgressPercent float64 `json:"progress_percent"`
}

// planStep is the generated shape persisted into PlanData and expanded
// into RoadmapStep rows.
type planStep struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	EstimatedHours int      `json:"estimated_hours"`
	Resources      []string `json:"resources"`
	Projects       []string `json:"projects"`
}

type roadmapPlan struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TotalWeeks  int        `json:"total_weeks"`
	Steps       []planStep `json:"steps"`
	Source      string     `json:"source"`
}

type RoadmapService interface {
	CreateRoadmap(ctx context.Context, userID uuid.UUID, input CreateRoadmapInput) (*RoadmapDetail, error)
	GetRoadmap(ctx context.Context, userID, roadmapID uuid.UUID) (*RoadmapDetail, error)
	GetProgress(ctx context.Context, userID, roadmapID uuid.UUID) (*RoadmapProgress, error)
	ListRoadmaps(ctx context.Context, userID uuid.UUID) ([]*RoadmapDetail, error)
}

type roadmapService struct {
	db           *gorm.DB
	log          *logger.Logger
	aiClient     AIClient
	roadmapRepo  repos.RoadmapRepo
	stepRepo     repos.RoadmapStepRepo
	activityRepo repos.UserActivityRepo
}

func NewRoadmapService(
	db *gorm.DB,
	log *logger.Logger,
	aiClient AIClient,
	roadmapRepo repos.RoadmapRepo,
	stepRepo repos.RoadmapStepRepo,
	activityRepo repos.UserActivityRepo,
) RoadmapService {
	return &roadmapService{
		db:           db,
		log:          log.With("service", "RoadmapService"),
		aiClient:     aiClient,
		roadmapRepo:  roadmapRepo,
		stepRepo:     stepRepo,
		activityRepo: activityRepo,
	}
}

var roadmapSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":       map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"total_weeks": map[string]any{"type": "integer"},
		"steps": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":           map[string]any{"type": "string"},
					"description":     map[string]any{"type": "string"},
					"estimated_hours": map[string]any{"type": "integer"},
					"resources":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"projects":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required":             []string{"title", "description", "estimated_hours", "resources", "projects"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"title", "description", "total_weeks", "steps"},
	"additionalProperties": false,
}

// CreateRoadmap generates a learning plan (AI first, fixed template on
// failure), persists the roadmap with its steps in one transaction and
// deactivates any previous active roadmap for the same skill.
func (rs *roadmapService) CreateRoadmap(ctx context.Context, userID uuid.UUID, input CreateRoadmapInput) (*RoadmapDetail, error) {
	skillName := strings.TrimSpace(input.SkillName)
	if skillName == "" {
		return nil, fmt.Errorf("skill name must not be empty")
	}
	if input.TargetWeeks <= 0 {
		input.TargetWeeks = 12
	}
	if input.DifficultyLevel == "" {
		input.DifficultyLevel = "beginner"
	}

	plan := rs.generatePlan(ctx, skillName, input)

	planJSON, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan: %w", err)
	}

	roadmap := &types.Roadmap{
		UserID:          userID,
		SkillName:       skillName,
		Title:           plan.Title,
		Description:     plan.Description,
		TotalWeeks:      plan.TotalWeeks,
		DifficultyLevel: input.DifficultyLevel,
		PlanData:        datatypes.JSON(planJSON),
		Source:          plan.Source,
		IsActive:        true,
	}

	var steps []*types.RoadmapStep
	err = rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := rs.roadmapRepo.ListByUser(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("failed to list existing roadmaps: %w", err)
		}
		for _, old := range existing {
			if old.IsActive && strings.EqualFold(old.SkillName, skillName) {
				if err := rs.roadmapRepo.Deactivate(ctx, tx, old.ID, userID); err != nil {
					return fmt.Errorf("failed to deactivate previous roadmap: %w", err)
				}
			}
		}

		if _, err := rs.roadmapRepo.Create(ctx, tx, roadmap); err != nil {
			return fmt.Errorf("failed to create roadmap: %w", err)
		}

		steps = make([]*types.RoadmapStep, 0, len(plan.Steps))
		for i, ps := range plan.Steps {
			resources, _ := json.Marshal(ps.Resources)
			projects, _ := json.Marshal(ps.Projects)
			steps = append(steps, &types.RoadmapStep{
				RoadmapID:      roadmap.ID,
				StepOrder:      i + 1,
				Title:          ps.Title,
				Description:    ps.Description,
				EstimatedHours: ps.EstimatedHours,
				Resources:      datatypes.JSON(resources),
				Projects:       datatypes.JSON(projects),
			})
		}
		if _, err := rs.stepRepo.CreateBatch(ctx, tx, steps); err != nil {
			return fmt.Errorf("failed to create roadmap steps: %w", err)
		}

		if _, err := rs.activityRepo.Create(ctx, tx, &types.UserActivity{
			UserID:       userID,
			ActivityType: types.ActivityRoadmapCreated,
			RoadmapID:    &roadmap.ID,
		}); err != nil {
			return fmt.Errorf("failed to log roadmap creation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rs.log.Info("Roadmap created",
		"user_id", userID.String(),
		"roadmap_id", roadmap.ID.String(),
		"source", roadmap.Source,
		"steps", len(steps))

	return &RoadmapDetail{
		Roadmap:  roadmap,
		Steps:    steps,
		Progress: progressFor(len(steps), 0),
	}, nil
}

func (rs *roadmapService) generatePlan(ctx context.Context, skillName string, input CreateRoadmapInput) *roadmapPlan {
	if rs.aiClient != nil {
		plan, err := rs.planViaAI(ctx, skillName, input)
		if err == nil {
			return plan
		}
		rs.log.Warn("AI roadmap generation failed, using fallback", "error", err)
	}
	return fallbackPlan(skillName, input)
}

func (rs *roadmapService) planViaAI(ctx context.Context, skillName string, input CreateRoadmapInput) (*roadmapPlan, error) {
	system := "You design structured learning roadmaps. Steps are ordered, concrete and sized for the learner's weekly time budget."
	user := fmt.Sprintf(
		"Create a %d-week learning roadmap for %s at %s level, assuming about %d hours per week. Use 5 to 8 steps with resources and a small practice project each.",
		input.TargetWeeks, skillName, input.DifficultyLevel, input.WeeklyHours)

	raw, err := rs.aiClient.GenerateJSON(ctx, system, user, "learning_roadmap", roadmapSchema)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode AI plan: %w", err)
	}
	var plan roadmapPlan
	if err := json.Unmarshal(encoded, &plan); err != nil {
		return nil, fmt.Errorf("failed to decode AI plan: %w", err)
	}

	if plan.Title == "" || len(plan.Steps) == 0 {
		return nil, fmt.Errorf("AI plan missing title or steps")
	}
	for i := range plan.Steps {
		if plan.Steps[i].Title == "" {
			return nil, fmt.Errorf("AI plan step %d missing title", i+1)
		}
		if plan.Steps[i].EstimatedHours <= 0 {
			plan.Steps[i].EstimatedHours = input.WeeklyHours * 2
		}
	}
	if plan.TotalWeeks <= 0 {
		plan.TotalWeeks = input.TargetWeeks
	}
	plan.Source = types.GenerationSourceAI
	return &plan, nil
}

// fallbackPlan is the deterministic template used when generation
// fails: three phases scaled to the requested duration.
func fallbackPlan(skillName string, input CreateRoadmapInput) *roadmapPlan {
	weeks := input.TargetWeeks
	hoursPerPhase := input.WeeklyHours * weeks / 3
	if hoursPerPhase <= 0 {
		hoursPerPhase = weeks * 2
	}
	return &roadmapPlan{
		Title:       fmt.Sprintf("%s Learning Path", skillName),
		Description: fmt.Sprintf("A structured %d-week path to learn %s.", weeks, skillName),
		TotalWeeks:  weeks,
		Source:      types.GenerationSourceFallback,
		Steps: []planStep{
			{
				Title:          fmt.Sprintf("%s Fundamentals", skillName),
				Description:    fmt.Sprintf("Learn the core concepts and vocabulary of %s.", skillName),
				EstimatedHours: hoursPerPhase,
				Resources:      []string{"Introductory course or book", "Official documentation"},
				Projects:       []string{"Small practice exercises"},
			},
			{
				Title:          "Guided Practice",
				Description:    fmt.Sprintf("Apply the fundamentals of %s in guided exercises.", skillName),
				EstimatedHours: hoursPerPhase,
				Resources:      []string{"Tutorial series", "Community examples"},
				Projects:       []string{"Guided mini project"},
			},
			{
				Title:          "Independent Project",
				Description:    fmt.Sprintf("Build and share an independent %s project.", skillName),
				EstimatedHours: hoursPerPhase,
				Resources:      []string{"Reference documentation"},
				Projects:       []string{"Capstone project of your choice"},
			},
		},
	}
}

func (rs *roadmapService) GetRoadmap(ctx context.Context, userID, roadmapID uuid.UUID) (*RoadmapDetail, error) {
	roadmap, err := rs.roadmapRepo.GetByIDForUser(ctx, nil, roadmapID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roadmap: %w", err)
	}
	if roadmap == nil {
		return nil, nil
	}
	steps, err := rs.stepRepo.ListByRoadmap(ctx, nil, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roadmap steps: %w", err)
	}
	completed := 0
	for _, s := range steps {
		if s.IsCompleted {
			completed++
		}
	}
	return &RoadmapDetail{
		Roadmap:  roadmap,
		Steps:    steps,
		Progress: progressFor(len(steps), completed),
	}, nil
}

func (rs *roadmapService) GetProgress(ctx context.Context, userID, roadmapID uuid.UUID) (*RoadmapProgress, error) {
	roadmap, err := rs.roadmapRepo.GetByIDForUser(ctx, nil, roadmapID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roadmap: %w", err)
	}
	if roadmap == nil {
		return nil, nil
	}
	counts, err := rs.stepRepo.CountByRoadmap(ctx, nil, roadmapID)
	if err != nil {
		return nil, fmt.Errorf("failed to count roadmap steps: %w", err)
	}
	progress := progressFor(int(counts.Total), int(counts.Completed))
	return &progress, nil
}

func (rs *roadmapService) ListRoadmaps(ctx context.Context, userID uuid.UUID) ([]*RoadmapDetail, error) {
	roadmaps, err := rs.roadmapRepo.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roadmaps: %w", err)
	}
	out := make([]*RoadmapDetail, 0, len(roadmaps))
	for _, r := range roadmaps {
		counts, err := rs.stepRepo.CountByRoadmap(ctx, nil, r.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count steps for roadmap %s: %w", r.ID, err)
		}
		out = append(out, &RoadmapDetail{
			Roadmap:  r,
			Progress: progressFor(int(counts.Total), int(counts.Completed)),
		})
	}
	return out, nil
}

func progressFor(total, completed int) RoadmapProgress {
	p := RoadmapProgress{TotalSteps: total, CompletedSteps: completed}
	if total > 0 {
		p.ProgressPercent = float64(completed) / float64(total) * 100
	}
	return p
}
