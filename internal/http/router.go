package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/skillpath/skillpath-backend/internal/http/handlers"
	httpMW "github.com/skillpath/skillpath-backend/internal/http/middleware"
	"github.com/skillpath/skillpath-backend/internal/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler         *httpH.AuthHandler
	UserHandler         *httpH.UserHandler
	SkillHandler        *httpH.SkillHandler
	RoadmapHandler      *httpH.RoadmapHandler
	CommunityHandler    *httpH.CommunityHandler
	NotificationHandler *httpH.NotificationHandler
	PremiumHandler      *httpH.PremiumHandler
	HealthHandler       *httpH.HealthHandler

	ServiceName string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/auth/register", cfg.AuthHandler.Register)
			api.POST("/auth/login", cfg.AuthHandler.Login)
			api.POST("/auth/social-login", cfg.AuthHandler.SocialLogin)
			api.POST("/auth/refresh", cfg.AuthHandler.Refresh)
		}
		if cfg.CommunityHandler != nil {
			api.GET("/community/posts", cfg.CommunityHandler.ListPosts)
			api.GET("/community/posts/:id/comments", cfg.CommunityHandler.ListReplies)
			api.GET("/community/stats", cfg.CommunityHandler.Stats)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/auth/logout", cfg.AuthHandler.Logout)
			protected.GET("/auth/me", cfg.AuthHandler.Me)
		}

		if cfg.SkillHandler != nil {
			protected.POST("/skills/suggest", cfg.SkillHandler.Suggest)
			protected.POST("/skills/assessment", cfg.SkillHandler.Assessment)
		}

		if cfg.RoadmapHandler != nil {
			protected.POST("/roadmap/create", cfg.RoadmapHandler.Create)
			protected.GET("/roadmap/:id", cfg.RoadmapHandler.Get)
			protected.GET("/roadmap/:id/progress", cfg.RoadmapHandler.Progress)
			protected.POST("/roadmap/:id/step/:stepID/complete", cfg.RoadmapHandler.CompleteStep)
			protected.POST("/roadmap/:id/step/:stepID/uncomplete", cfg.RoadmapHandler.UncompleteStep)
		}

		if cfg.UserHandler != nil {
			protected.GET("/user/dashboard", cfg.UserHandler.Dashboard)
			protected.GET("/user/profile", cfg.UserHandler.Profile)
			protected.GET("/user/roadmaps", cfg.UserHandler.Roadmaps)
			protected.DELETE("/user/delete-account", cfg.UserHandler.DeleteAccount)
		}

		if cfg.CommunityHandler != nil {
			protected.POST("/community/posts", cfg.CommunityHandler.CreatePost)
			protected.POST("/community/posts/:id/comments", cfg.CommunityHandler.CreateReply)
			protected.POST("/community/posts/:id/like", cfg.CommunityHandler.ToggleLike)
		}

		if cfg.NotificationHandler != nil {
			protected.GET("/notifications/preferences", cfg.NotificationHandler.GetPreferences)
			protected.PUT("/notifications/preferences", cfg.NotificationHandler.UpdatePreferences)
			protected.POST("/notifications/push-token", cfg.NotificationHandler.RegisterPushToken)
			protected.GET("/notifications/history", cfg.NotificationHandler.History)
			protected.POST("/notifications/daily-reminder", cfg.NotificationHandler.TriggerDailyReminder)
		}

		if cfg.PremiumHandler != nil {
			protected.GET("/premium/status", cfg.PremiumHandler.Status)
			protected.GET("/premium/trial-status", cfg.PremiumHandler.TrialStatus)
			protected.POST("/premium/purchase", cfg.PremiumHandler.Purchase)
			protected.POST("/premium/restore", cfg.PremiumHandler.Restore)
		}
	}

	return r
}
