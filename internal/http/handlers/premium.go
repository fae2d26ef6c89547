package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillpath/skillpath-backend/internal/http/response"
	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/services"
)

type PremiumHandler struct {
	log            *logger.Logger
	premiumService services.PremiumService
	userService    services.UserService
}

func NewPremiumHandler(log *logger.Logger, premiumService services.PremiumService, userService services.UserService) *PremiumHandler {
	return &PremiumHandler{
		log:            log.With("handler", "PremiumHandler"),
		premiumService: premiumService,
		userService:    userService,
	}
}

func (ph *PremiumHandler) Status(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := ph.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, ph.log, err)
		return
	}
	response.RespondOK(c, ph.premiumService.Status(c.Request.Context(), user))
}

func (ph *PremiumHandler) TrialStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := ph.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, ph.log, err)
		return
	}
	response.RespondOK(c, ph.premiumService.TrialStatus(c.Request.Context(), user))
}

func (ph *PremiumHandler) Restore(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Receipt string `json:"receipt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user, err := ph.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, ph.log, err)
		return
	}
	result, err := ph.premiumService.Restore(c.Request.Context(), user, req.Receipt)
	if err != nil {
		respondServiceError(c, ph.log, err)
		return
	}
	response.RespondOK(c, result)
}

func (ph *PremiumHandler) Purchase(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		ReceiptData string `json:"receipt_data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user, err := ph.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, ph.log, err)
		return
	}
	status, err := ph.premiumService.Purchase(c.Request.Context(), user, req.ReceiptData)
	if err != nil {
		respondServiceError(c, ph.log, err)
		return
	}
	response.RespondOK(c, status)
}
