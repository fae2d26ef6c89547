package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skillpath/skillpath-backend/internal/http/response"
	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/repos"
	"github.com/skillpath/skillpath-backend/internal/services"
)

type CommunityHandler struct {
	log              *logger.Logger
	communityService services.CommunityService
	userService      services.UserService
}

func NewCommunityHandler(log *logger.Logger, communityService services.CommunityService, userService services.UserService) *CommunityHandler {
	return &CommunityHandler{
		log:              log.With("handler", "CommunityHandler"),
		communityService: communityService,
		userService:      userService,
	}
}

func (ch *CommunityHandler) ListPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	posts, err := ch.communityService.ListPosts(c.Request.Context(), repos.PostFilter{
		SkillName: c.Query("skill_name"),
		Category:  c.Query("category"),
		SortBy:    c.DefaultQuery("sort_by", "recent"),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		respondServiceError(c, ch.log, err)
		return
	}
	response.RespondOK(c, gin.H{"posts": posts})
}

func (ch *CommunityHandler) CreatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		SkillName string `json:"skill_name"`
		Category  string `json:"category"`
		Title     string `json:"title"`
		Content   string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user, err := ch.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, ch.log, err)
		return
	}
	post, err := ch.communityService.CreatePost(c.Request.Context(), user, services.CreatePostInput{
		SkillName: req.SkillName,
		Category:  req.Category,
		Title:     req.Title,
		Content:   req.Content,
	})
	if err != nil {
		respondServiceError(c, ch.log, err)
		return
	}
	response.RespondCreated(c, post)
}

func (ch *CommunityHandler) ListReplies(c *gin.Context) {
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	replies, err := ch.communityService.ListReplies(c.Request.Context(), postID, limit)
	if err != nil {
		respondServiceError(c, ch.log, err)
		return
	}
	response.RespondOK(c, gin.H{"replies": replies})
}

func (ch *CommunityHandler) CreateReply(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user, err := ch.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, ch.log, err)
		return
	}
	reply, err := ch.communityService.CreateReply(c.Request.Context(), user, postID, req.Content)
	if err != nil {
		respondServiceError(c, ch.log, err)
		return
	}
	response.RespondCreated(c, reply)
}

func (ch *CommunityHandler) ToggleLike(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := ch.communityService.ToggleLike(c.Request.Context(), userID, postID)
	if err != nil {
		respondServiceError(c, ch.log, err)
		return
	}
	response.RespondOK(c, result)
}

func (ch *CommunityHandler) Stats(c *gin.Context) {
	stats, err := ch.communityService.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, ch.log, err)
		return
	}
	response.RespondOK(c, stats)
}
