package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers resource-related routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/resources")

	// === Public Routes ===
	group.GET("", h.List)
	group.GET("/:id", h.Get)

	// === Admin Routes ===
	group.POST("", authMiddleware, adminMiddleware, h.Create)
	group.PATCH("/:id", authMiddleware, adminMiddleware, h.Update)
}
