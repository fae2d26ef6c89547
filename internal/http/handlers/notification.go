package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skillpath/skillpath-backend/internal/http/response"
	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/services"
)

type NotificationHandler struct {
	log                 *logger.Logger
	notificationService services.NotificationService
}

func NewNotificationHandler(log *logger.Logger, notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		log:                 log.With("handler", "NotificationHandler"),
		notificationService: notificationService,
	}
}

func (nh *NotificationHandler) GetPreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	pref, err := nh.notificationService.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, nh.log, err)
		return
	}
	response.RespondOK(c, pref)
}

func (nh *NotificationHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req services.UpdatePreferencesInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	pref, err := nh.notificationService.UpdatePreferences(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, nh.log, err)
		return
	}
	response.RespondOK(c, pref)
}

func (nh *NotificationHandler) RegisterPushToken(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Token      string `json:"token"`
		DeviceType string `json:"device_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := nh.notificationService.RegisterPushToken(c.Request.Context(), userID, req.Token, req.DeviceType); err != nil {
		respondServiceError(c, nh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (nh *NotificationHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := nh.notificationService.History(c.Request.Context(), userID, limit)
	if err != nil {
		respondServiceError(c, nh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"notifications": entries})
}

func (nh *NotificationHandler) TriggerDailyReminder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sent, err := nh.notificationService.TriggerDailyReminder(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, nh.log, err)
		return
	}
	response.RespondOK(c, gin.H{"sent": sent})
}
