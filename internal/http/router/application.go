package router

import (
	"github.com/gin-gonic/gin"

	"projecthub.app/server/internal/http/handler"
)

func ApplicationRouter(rg *gin.RouterGroup, h *handler.ApplicationHandler) {
	rg.GET("/mine", h.ListMine)
	rg.POST("/:applicationID/withdraw", h.Withdraw)
	rg.POST("/:applicationID/decide", h.Decide)
}
