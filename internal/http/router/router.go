package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"projecthub.app/server/internal/http/handler"
	"projecthub.app/server/internal/http/handler/webhook"
	"projecthub.app/server/internal/http/middleware"
	"projecthub.app/server/internal/service"
	"projecthub.app/server/internal/sse"
)

type RouterConfig struct {
	DashboardURL  string
	IsProduction  bool
	WebhookSecret string
	PollInterval  time.Duration
	HistoryLimit  int32
}

func SetupRoutes(router *gin.Engine, services *service.Services, registry *sse.Registry, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authHandler := handler.NewAuthHandler(services.Auth(), cfg.DashboardURL, cfg.IsProduction)
	AuthRouter(router.Group("/auth"), authHandler)

	webhookHandler := webhook.NewGitHubWebhookHandler(services.ActivityIngest(), cfg.WebhookSecret)
	router.POST("/webhooks/github", webhookHandler.HandleEvent)

	requireAuth := middleware.RequireAuth(services.Auth())

	projectHandler := handler.NewProjectHandler(services.Projects())
	appHandler := handler.NewApplicationHandler(services.Applications())
	collabHandler := handler.NewCollaboratorHandler(services.Collaborators())
	notifHandler := handler.NewNotificationHandler(services.Notifications())
	userHandler := handler.NewUserHandler(services.Users())
	activityHandler := handler.NewActivityHandler(
		services.Projects(),
		services.Collaborators(),
		services.ActivityIngest(),
		services.ActivityFeed(),
	)
	streamHandler := handler.NewStreamHandler(
		services.Projects(),
		services.Collaborators(),
		services.ActivityIngest(),
		services.RepoWatch(),
		registry,
		cfg.PollInterval,
		cfg.HistoryLimit,
	)

	v1 := router.Group("/api/v1")
	{
		// Public browse endpoints
		v1.GET("/projects", projectHandler.List)
		v1.GET("/projects/slug/:slug", projectHandler.GetBySlug)

		authed := v1.Group("")
		authed.Use(requireAuth)
		{
			UserRouter(authed.Group("/users"), userHandler)
			ProjectRouter(authed.Group("/projects"), projectHandler, collabHandler, appHandler, activityHandler, streamHandler)
			ApplicationRouter(authed.Group("/applications"), appHandler)
			NotificationRouter(authed.Group("/notifications"), notifHandler)
		}
	}
}
