package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/booking")

	// === Public Routes ===
	group.GET("/availability", h.Availability)

	// === Authenticated Routes ===
	authed := group.Group("", authMiddleware)
	{
		authed.POST("/book", h.Create)
		authed.POST("/cancel/:id", h.Cancel)
		authed.GET("/mine", h.Mine)
	}
}
