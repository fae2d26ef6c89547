package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillpath/skillpath-backend/internal/http/response"
	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/services"
)

type SkillHandler struct {
	log          *logger.Logger
	skillService services.SkillService
}

func NewSkillHandler(log *logger.Logger, skillService services.SkillService) *SkillHandler {
	return &SkillHandler{
		log:          log.With("handler", "SkillHandler"),
		skillService: skillService,
	}
}

func (sh *SkillHandler) Suggest(c *gin.Context) {
	var req struct {
		Input string `json:"input"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	suggestion, err := sh.skillService.SuggestSkill(c.Request.Context(), req.Input)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "suggestion_failed", err)
		return
	}
	response.RespondOK(c, suggestion)
}

func (sh *SkillHandler) Assessment(c *gin.Context) {
	var req struct {
		SkillName string `json:"skill_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	assessment, err := sh.skillService.GenerateAssessment(c.Request.Context(), req.SkillName)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "assessment_failed", err)
		return
	}
	response.RespondOK(c, assessment)
}
