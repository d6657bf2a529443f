package router

import (
	"github.com/gin-gonic/gin"

	"projecthub.app/server/internal/http/handler"
)

func UserRouter(rg *gin.RouterGroup, h *handler.UserHandler) {
	rg.PATCH("/me", h.UpdateMe)
}
