package router

import (
	"github.com/gin-gonic/gin"

	"projecthub.app/server/internal/http/handler"
)

func NotificationRouter(rg *gin.RouterGroup, h *handler.NotificationHandler) {
	rg.GET("", h.List)
	rg.GET("/unread", h.UnreadCount)
	rg.POST("/:notificationID/read", h.MarkRead)
}
