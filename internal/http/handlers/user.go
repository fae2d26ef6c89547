package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/skillpath/skillpath-backend/internal/http/response"
	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/services"
)

type UserHandler struct {
	log          *logger.Logger
	userService  services.UserService
	dashboard    services.DashboardService
	roadmaps     services.RoadmapService
	gamification services.GamificationService
}

func NewUserHandler(
	log *logger.Logger,
	userService services.UserService,
	dashboard services.DashboardService,
	roadmaps services.RoadmapService,
	gamification services.GamificationService,
) *UserHandler {
	return &UserHandler{
		log:          log.With("handler", "UserHandler"),
		userService:  userService,
		dashboard:    dashboard,
		roadmaps:     roadmaps,
		gamification: gamification,
	}
}

func (uh *UserHandler) Dashboard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	dash, err := uh.dashboard.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, uh.log, err)
		return
	}
	response.RespondOK(c, dash)
}

func (uh *UserHandler) Profile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := uh.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, uh.log, err)
		return
	}
	profile, err := uh.gamification.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, uh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"user": user, "gamification": profile})
}

func (uh *UserHandler) Roadmaps(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roadmaps, err := uh.roadmaps.ListRoadmaps(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, uh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"roadmaps": roadmaps})
}

func (uh *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := uh.userService.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondServiceError(c, uh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
