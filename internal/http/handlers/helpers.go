package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillpath/skillpath-backend/internal/http/response"
	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/requestdata"
	"github.com/skillpath/skillpath-backend/internal/services"
)

// currentUserID pulls the authenticated user from the request context.
// RequireAuth guarantees it is set on protected routes.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps service sentinel errors onto HTTP statuses;
// anything unexpected becomes a logged 500 with a generic message.
func respondServiceError(c *gin.Context, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		response.RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, services.ErrRateLimited):
		response.RespondError(c, http.StatusTooManyRequests, "rate_limited", err)
	case errors.Is(err, services.ErrInvalidInput):
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
	default:
		if log != nil {
			log.Error("request failed", "path", c.FullPath(), "error", err)
		}
		response.RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal server error"))
	}
}
