package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillpath/skillpath-backend/internal/http/response"
	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/services"
)

type RoadmapHandler struct {
	log             *logger.Logger
	roadmapService  services.RoadmapService
	progressService services.ProgressService
}

func NewRoadmapHandler(log *logger.Logger, roadmapService services.RoadmapService, progressService services.ProgressService) *RoadmapHandler {
	return &RoadmapHandler{
		log:             log.With("handler", "RoadmapHandler"),
		roadmapService:  roadmapService,
		progressService: progressService,
	}
}

func (rh *RoadmapHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		SkillName       string `json:"skill_name"`
		DifficultyLevel string `json:"difficulty_level"`
		WeeklyHours     int    `json:"weekly_hours"`
		TargetWeeks     int    `json:"target_weeks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	detail, err := rh.roadmapService.CreateRoadmap(c.Request.Context(), userID, services.CreateRoadmapInput{
		SkillName:       req.SkillName,
		DifficultyLevel: req.DifficultyLevel,
		WeeklyHours:     req.WeeklyHours,
		TargetWeeks:     req.TargetWeeks,
	})
	if err != nil {
		respondServiceError(c, rh.log, err)
		return
	}
	response.RespondCreated(c, detail)
}

func (rh *RoadmapHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roadmapID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	detail, err := rh.roadmapService.GetRoadmap(c.Request.Context(), userID, roadmapID)
	if err != nil {
		respondServiceError(c, rh.log, err)
		return
	}
	if detail == nil {
		response.RespondError(c, http.StatusNotFound, "not_found", errors.New("roadmap not found"))
		return
	}
	response.RespondOK(c, detail)
}

func (rh *RoadmapHandler) Progress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roadmapID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	progress, err := rh.roadmapService.GetProgress(c.Request.Context(), userID, roadmapID)
	if err != nil {
		respondServiceError(c, rh.log, err)
		return
	}
	if progress == nil {
		response.RespondError(c, http.StatusNotFound, "not_found", errors.New("roadmap not found"))
		return
	}
	response.RespondOK(c, progress)
}

func (rh *RoadmapHandler) CompleteStep(c *gin.Context) {
	rh.setStepCompletion(c, true)
}

func (rh *RoadmapHandler) UncompleteStep(c *gin.Context) {
	rh.setStepCompletion(c, false)
}

func (rh *RoadmapHandler) setStepCompletion(c *gin.Context, completed bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roadmapID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	stepID, ok := pathUUID(c, "stepID")
	if !ok {
		return
	}

	var (
		result *services.StepCompletionResult
		err    error
	)
	if completed {
		result, err = rh.progressService.CompleteStep(c.Request.Context(), userID, roadmapID, stepID)
	} else {
		result, err = rh.progressService.UncompleteStep(c.Request.Context(), userID, roadmapID, stepID)
	}
	if err != nil {
		respondServiceError(c, rh.log, err)
		return
	}
	response.RespondOK(c, result)
}
