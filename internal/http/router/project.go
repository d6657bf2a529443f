package router

import (
	"github.com/gin-gonic/gin"

	"projecthub.app/server/internal/http/handler"
)

func ProjectRouter(
	rg *gin.RouterGroup,
	projects *handler.ProjectHandler,
	collabs *handler.CollaboratorHandler,
	apps *handler.ApplicationHandler,
	activity *handler.ActivityHandler,
	stream *handler.StreamHandler,
) {
	rg.POST("", projects.Create)
	rg.GET("/mine", projects.ListMine)
	rg.PATCH("/:projectID", projects.Update)
	rg.DELETE("/:projectID", projects.Delete)

	rg.PUT("/:projectID/repo", projects.LinkRepo)
	rg.DELETE("/:projectID/repo", projects.UnlinkRepo)

	rg.GET("/:projectID/collaborators", collabs.List)
	rg.DELETE("/:projectID/collaborators/:userID", collabs.Remove)
	rg.POST("/:projectID/leave", collabs.Leave)

	rg.POST("/:projectID/applications", apps.Apply)
	rg.GET("/:projectID/applications", apps.ListByProject)

	rg.GET("/:projectID/activity", activity.History)
	rg.GET("/:projectID/activity/feed", activity.Feed)
	rg.GET("/:projectID/stream", stream.Stream)
	rg.GET("/:projectID/watch", stream.Watch)
}
